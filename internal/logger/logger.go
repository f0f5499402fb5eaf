// Package logger configures the global zerolog logger. Output goes to a
// log file and to a bounded in-memory ring that the logs pane renders;
// stderr stays clean because the terminal is owned by the UI.
package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const ringCapacity = 200

// Ring is a fixed-capacity line buffer. It is written from the worker and
// UI goroutines and read by the logs pane, so it locks.
type Ring struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// NewRing returns an empty ring.
func NewRing() *Ring {
	return &Ring{lines: make([]string, ringCapacity)}
}

// Write stores one log line, evicting the oldest when full. It never
// fails; zerolog requires an io.Writer.
func (r *Ring) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	r.mu.Lock()
	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
	return len(p), nil
}

// Tail returns up to n of the most recent lines, oldest first.
func (r *Ring) Tail(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.lines)
	}
	if n > size {
		n = size
	}
	out := make([]string, 0, n)
	start := r.next - n
	if start < 0 {
		start += len(r.lines)
	}
	for i := range n {
		out = append(out, r.lines[(start+i)%len(r.lines)])
	}
	return out
}

// Setup installs the global logger writing to dir/teamterm.log and to the
// returned ring. level is a zerolog level name; debug forces it down.
func Setup(dir, level string, debug bool) (*Ring, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}
	if debug && parsed > zerolog.DebugLevel {
		parsed = zerolog.DebugLevel
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create log directory %s", dir)
	}
	path := filepath.Join(dir, "teamterm.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", path)
	}

	ring := NewRing()
	console := zerolog.ConsoleWriter{Out: ring, NoColor: true, TimeFormat: "15:04:05"}
	writer := zerolog.MultiLevelWriter(file, console)

	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return ring, nil
}
