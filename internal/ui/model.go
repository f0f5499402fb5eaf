package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/app"
	"github.com/kjeldgaard/teamterm/internal/logger"
	"github.com/kjeldgaard/teamterm/internal/worker"
)

const (
	tickInterval   = 200 * time.Millisecond
	roomsPaneWidth = 32
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the root bubbletea model. It owns no domain state: everything
// it renders lives in the coordinator, which it is the only mutator of.
type Model struct {
	app    *app.App
	ring   *logger.Ring
	styles Styles

	markdown *glamour.TermRenderer

	width  int
	height int
}

// New returns the root model over a coordinator.
func New(a *app.App, ring *logger.Ring, styles Styles) *Model {
	return &Model{app: a, ring: ring, styles: styles}
}

func (m *Model) Init() tea.Cmd {
	m.app.Dispatch(worker.Initialize{})
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Periodic redraw so relative timestamps and the loading
		// indicator stay fresh between mutations.
		return m, tick()
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case worker.Mutation:
		m.app.ApplyMutation(msg)
		if m.app.FatalErr != nil {
			m.app.Shutdown()
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey routes a keystroke. Compose mode bypasses the action table:
// every key feeds the textarea except the three compose controls.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.app.Editor.IsComposing() {
		switch msg.String() {
		case "esc":
			m.app.Editor.StopComposing()
			m.app.ActivePane = app.PaneMessages
			return m, nil
		case "enter":
			m.app.Apply(app.ActionSendMessage)
			return m, nil
		case "alt+enter":
			m.app.Editor.InsertNewline()
			return m, nil
		default:
			return m, m.app.Editor.Update(msg)
		}
	}

	key := msg.String()
	action, ok := m.app.Actions().Find(key)
	if !ok {
		log.Trace().Str("key", key).Msg("unbound key")
		return m, nil
	}
	if action == app.ActionQuit {
		m.app.Shutdown()
		return m, tea.Quit
	}
	m.app.Apply(action)
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.app.Editor.SetWidth(width - 4)

	wrap := width - roomsPaneWidth - 8
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer unavailable, falling back to plain text")
		m.markdown = nil
		return
	}
	m.markdown = renderer
}
