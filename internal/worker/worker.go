// Package worker runs the IO task: it owns the service client and the
// inbound event stream, translates both into cache mutations for the UI
// task, and services on-demand fetch commands.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/api"
)

// State of the worker task.
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateReconnecting
	StateFailed
)

const (
	inboxSize        = 64
	streamBufferSize = 100

	initialBackoff = time.Second
	maxBackoff     = time.Minute
)

// Worker is the long-lived IO task. It never renders and never reads UI
// state; everything flows out through emitted mutations.
type Worker struct {
	client       api.Client
	emit         func(Mutation)
	inbox        chan Command
	historyLimit int

	// state is written by Run and by the stream pump; atomic keeps
	// State() safe from any goroutine.
	state atomic.Int32
}

// New returns a worker ready to Run. Emitted mutations are handed to emit,
// which must be safe to call from the worker goroutine (bubbletea's
// Program.Send is).
func New(client api.Client, emit func(Mutation), historyLimit int) *Worker {
	return &Worker{
		client:       client,
		emit:         emit,
		inbox:        make(chan Command, inboxSize),
		historyLimit: historyLimit,
	}
}

// Inbox is the command channel the coordinator dispatches into.
func (w *Worker) Inbox() chan<- Command {
	return w.inbox
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// Run services the command inbox and the event stream until the context is
// cancelled or the inbox is closed. Closing the inbox drains pending
// commands before stopping. A fatal auth error is returned.
func (w *Worker) Run(ctx context.Context) error {
	events := make(chan api.Event, streamBufferSize)
	streamErrs := make(chan error, 1)
	go w.pumpEvents(ctx, events, streamErrs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-streamErrs:
			w.setState(StateFailed)
			w.emit(Failed{Err: err})
			return err
		case ev := <-events:
			w.handleEvent(ctx, ev)
		case cmd, ok := <-w.inbox:
			if !ok {
				w.drain(ctx)
				return nil
			}
			if err := w.handleCommand(ctx, cmd); err != nil {
				w.setState(StateFailed)
				w.emit(Failed{Err: err})
				return err
			}
		}
	}
}

// drain services whatever was already queued when the inbox closed.
func (w *Worker) drain(ctx context.Context) {
	for cmd := range w.inbox {
		if err := w.handleCommand(ctx, cmd); err != nil {
			log.Error().Err(err).Msg("error draining command inbox")
			return
		}
	}
}

// pumpEvents keeps an event stream open, reconnecting with bounded backoff.
// Only an auth failure is fatal.
func (w *Worker) pumpEvents(ctx context.Context, events chan<- api.Event, fatal chan<- error) {
	backoff := initialBackoff
	for {
		stream, err := w.client.Events(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, api.ErrAuth) {
				fatal <- err
				return
			}
			w.setState(StateReconnecting)
			log.Warn().Err(err).Dur("backoff", backoff).Msg("event stream unavailable, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}

		backoff = initialBackoff
		w.setState(StateRunning)
		for {
			ev, err := stream.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					_ = stream.Close()
					return
				}
				log.Warn().Err(err).Msg("event stream closed, reopening")
				_ = stream.Close()
				break
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				_ = stream.Close()
				return
			}
		}
	}
}

// handleCommand services one command off the inbox, toggling the loading
// flag around it. Only auth errors are returned; everything else is logged
// and dropped, leaving the cache consistent.
func (w *Worker) handleCommand(ctx context.Context, cmd Command) error {
	w.emit(LoadingChanged{Loading: true})
	defer w.emit(LoadingChanged{Loading: false})

	switch cmd := cmd.(type) {
	case Initialize:
		return w.doInitialize(ctx)
	case ListAllRooms:
		rooms, err := w.client.ListRooms(ctx)
		if err != nil {
			return w.report(err, "list rooms")
		}
		for _, room := range rooms {
			w.emit(RoomChanged{Room: room})
		}
		w.emit(RoomsListed{})
	case UpdateRoom:
		room, err := w.client.GetRoom(ctx, cmd.RoomID)
		if err != nil {
			return w.report(err, "get room")
		}
		w.emit(RoomChanged{Room: room})
	case UpdatePerson:
		person, err := w.client.GetPerson(ctx, cmd.PersonID)
		if err != nil {
			return w.report(err, "get person")
		}
		w.emit(PersonChanged{Person: person})
	case UpdateTeam:
		team, err := w.client.GetTeam(ctx, cmd.TeamID)
		if err != nil {
			return w.report(err, "get team")
		}
		w.emit(TeamChanged{Team: team})
	case UpdateMessage:
		msg, err := w.client.GetMessage(ctx, cmd.MsgID)
		if err != nil {
			return w.report(err, "get message")
		}
		w.emit(MessageReceived{Msg: msg})
	case SendMessage:
		msg, err := w.client.SendMessage(ctx, cmd.Out)
		if err != nil {
			return w.report(err, "send message")
		}
		w.emit(MessageSent{Msg: msg})
	case EditMessage:
		msg, err := w.client.EditMessage(ctx, cmd.MsgID, cmd.RoomID, cmd.Text)
		if err != nil {
			return w.report(err, "edit message")
		}
		w.emit(MessageReceived{Msg: msg})
	case DeleteMessage:
		if err := w.client.DeleteMessage(ctx, cmd.MsgID); err != nil {
			return w.report(err, "delete message")
		}
		w.emit(MessageDeleted{MsgID: cmd.MsgID, RoomID: cmd.RoomID})
	case FetchRoomHistory:
		limit := cmd.Limit
		if limit <= 0 {
			limit = w.historyLimit
		}
		msgs, err := w.client.ListMessages(ctx, cmd.RoomID, limit)
		if err != nil {
			return w.report(err, "fetch room history")
		}
		w.emit(MessagesReceived{RoomID: cmd.RoomID, Msgs: msgs})
	case FetchThread:
		msgs, err := w.client.ListReplies(ctx, cmd.ParentID, cmd.RoomID)
		if err != nil {
			return w.report(err, "fetch thread")
		}
		w.emit(MessagesReceived{RoomID: cmd.RoomID, Msgs: msgs})
	default:
		log.Error().Type("command", cmd).Msg("unknown command")
	}
	return nil
}

func (w *Worker) doInitialize(ctx context.Context) error {
	log.Info().Msg("initializing session")
	me, err := w.client.Me(ctx)
	if err != nil {
		return w.report(err, "fetch session identity")
	}
	log.Debug().Str("person", me.DisplayName).Msg("logged in")
	w.setState(StateRunning)
	w.emit(MeSet{Person: me})
	w.emit(Initialized{})
	return nil
}

// report logs a command failure and returns it only when it is fatal.
func (w *Worker) report(err error, what string) error {
	if errors.Is(err, api.ErrAuth) {
		return errors.Wrap(err, what)
	}
	log.Error().Err(err).Msg(what)
	return nil
}

// handleEvent reacts to one inbound service event. Events carry ids only,
// so the referenced entity is fetched before emitting a mutation.
func (w *Worker) handleEvent(ctx context.Context, ev api.Event) {
	log.Trace().Str("type", string(ev.Type)).Str("resource", ev.ResourceID).Msg("service event")
	switch ev.Type {
	case api.MessagePosted:
		msg, err := w.client.GetMessage(ctx, ev.ResourceID)
		if err != nil {
			log.Error().Err(err).Str("message", ev.ResourceID).Msg("fetch posted message")
			return
		}
		w.emit(MessageReceived{Msg: msg, UpdateUnread: true})
	case api.MessageUpdated:
		msg, err := w.client.GetMessage(ctx, ev.ResourceID)
		if err != nil {
			log.Error().Err(err).Str("message", ev.ResourceID).Msg("fetch updated message")
			return
		}
		w.emit(MessageReceived{Msg: msg})
	case api.MessageDeleted:
		w.emit(MessageDeleted{MsgID: ev.ResourceID, RoomID: ev.RoomID})
	case api.RoomCreated, api.RoomUpdated:
		room, err := w.client.GetRoom(ctx, ev.ResourceID)
		if err != nil {
			log.Error().Err(err).Str("room", ev.ResourceID).Msg("fetch changed room")
			return
		}
		w.emit(RoomChanged{Room: room})
	}
}
