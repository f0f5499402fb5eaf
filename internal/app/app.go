// Package app is the coordinator: it owns the cache and all pane state,
// applies user actions, consumes worker mutations, and dispatches commands
// back to the IO task. Everything here runs on the UI goroutine, so no
// locking is needed.
package app

import (
	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/cache"
	"github.com/kjeldgaard/teamterm/internal/worker"
)

// Pane identifies which part of the screen has keyboard focus.
type Pane int

const (
	PaneNone Pane = iota
	PaneRooms
	PaneMessages
	PaneCompose
	PaneLogs
)

func (p Pane) String() string {
	switch p {
	case PaneRooms:
		return "rooms"
	case PaneMessages:
		return "messages"
	case PaneCompose:
		return "compose"
	case PaneLogs:
		return "logs"
	default:
		return "none"
	}
}

// App is the coordinator state. It is mutated only from the UI event loop:
// the worker communicates through mutations, never by touching App.
type App struct {
	Cache    *cache.Cache
	Rooms    RoomsList
	Messages MessagesList
	Editor   Editor

	ActivePane Pane
	Loading    bool
	ShowHelp   bool
	ShowLogs   bool

	inbox    chan<- worker.Command
	shutdown bool

	// requestedParents dedups thread-parent fetches across batches.
	requestedParents map[string]struct{}

	// FatalErr is set when the worker reports an unrecoverable failure.
	FatalErr error

	roomsActions    Actions
	messagesActions Actions
}

// New returns a coordinator wired to the worker command inbox.
func New(inbox chan<- worker.Command) *App {
	return &App{
		Cache:      cache.New(),
		Rooms:      NewRoomsList(),
		Messages:   NewMessagesList(),
		Editor:     NewEditor(),
		ActivePane: PaneNone,
		Loading:    true,
		inbox:      inbox,
		roomsActions: NewActions(
			ActionQuit,
			ActionToggleHelp,
			ActionToggleLogs,
			ActionNextPane,
			ActionNextRoom,
			ActionPrevRoom,
			ActionNextFilter,
			ActionPrevFilter,
			ActionMarkRead,
			ActionEditMessage,
		),
		messagesActions: NewActions(
			ActionQuit,
			ActionToggleHelp,
			ActionToggleLogs,
			ActionNextPane,
			ActionNextMessage,
			ActionPrevMessage,
			ActionDeselectMessage,
			ActionRespondToSelected,
			ActionEditSelected,
			ActionDeleteMessage,
			ActionCopyMessage,
			ActionEditMessage,
		),
	}
}

// Actions returns the action set for the active pane, used both for key
// lookup and for the help pane.
func (a *App) Actions() Actions {
	switch a.ActivePane {
	case PaneMessages:
		return a.messagesActions
	default:
		return a.roomsActions
	}
}

// Shutdown closes the command inbox. The worker drains what is queued and
// stops; later dispatches are dropped.
func (a *App) Shutdown() {
	if a.shutdown {
		return
	}
	a.shutdown = true
	close(a.inbox)
}

// Dispatch queues a command for the IO task without blocking the UI. A
// full inbox drops the command; the user can retrigger the action.
func (a *App) Dispatch(cmd worker.Command) {
	if a.shutdown {
		log.Debug().Type("command", cmd).Msg("dropping command after shutdown")
		return
	}
	select {
	case a.inbox <- cmd:
	default:
		a.Loading = false
		log.Error().Type("command", cmd).Msg("worker inbox full, dropping command")
	}
}

// Apply executes one user action against the current state.
func (a *App) Apply(action Action) {
	log.Trace().Stringer("action", action).Stringer("pane", a.ActivePane).Msg("apply action")
	switch action {
	case ActionToggleHelp:
		a.ShowHelp = !a.ShowHelp
	case ActionToggleLogs:
		a.ShowLogs = !a.ShowLogs
	case ActionNextPane:
		a.nextPane()
	case ActionEditMessage:
		a.Editor.StartComposing()
		a.ActivePane = PaneCompose
	case ActionSendMessage:
		a.sendMessageBuffer()
	case ActionMarkRead:
		if room, ok := a.Rooms.SelectedRoom(a.Cache); ok {
			a.Cache.Rooms.MarkRead(room.ID)
		}
	case ActionNextRoom:
		a.Rooms.SelectNext(a.numVisibleRooms())
		a.activateSelectedRoom()
	case ActionPrevRoom:
		a.Rooms.SelectPrevious(a.numVisibleRooms())
		a.activateSelectedRoom()
	case ActionNextFilter:
		a.Rooms.NextFilter(a.Cache)
		a.activateSelectedRoom()
	case ActionPrevFilter:
		a.Rooms.PreviousFilter(a.Cache)
		a.activateSelectedRoom()
	case ActionNextMessage:
		a.Messages.SelectNext(a.numMessagesInActiveRoom())
	case ActionPrevMessage:
		a.Messages.SelectPrevious(a.numMessagesInActiveRoom())
	case ActionDeselectMessage:
		a.Messages.Deselect()
	case ActionRespondToSelected:
		if msg, ok := a.SelectedMessage(); ok {
			a.Editor.SetRespondTo(msg)
			a.Editor.StartComposing()
			a.ActivePane = PaneCompose
		}
	case ActionEditSelected:
		a.startEditingSelected()
	case ActionDeleteMessage:
		a.deleteSelected()
	case ActionCopyMessage:
		if msg, ok := a.SelectedMessage(); ok {
			if err := clipboard.WriteAll(msg.Text); err != nil {
				log.Error().Err(err).Msg("copy message to clipboard")
			}
		}
	default:
		log.Debug().Stringer("action", action).Msg("action has no handler")
	}
}

// nextPane cycles keyboard focus between the rooms and messages panes.
func (a *App) nextPane() {
	switch a.ActivePane {
	case PaneRooms:
		if a.Rooms.ActiveRoomID() != "" {
			a.ActivePane = PaneMessages
		}
	case PaneMessages:
		a.ActivePane = PaneRooms
	default:
		a.ActivePane = PaneRooms
	}
}

// activateSelectedRoom makes the highlighted room the active one and lazily
// fetches its history the first time it is opened.
func (a *App) activateSelectedRoom() {
	room, ok := a.Rooms.SelectedRoom(a.Cache)
	if !ok {
		a.Rooms.SetActiveRoom("")
		a.Messages.Deselect()
		return
	}
	if room.ID == a.Rooms.ActiveRoomID() {
		return
	}
	a.Rooms.SetActiveRoom(room.ID)
	a.Messages.Deselect()
	a.Messages.SetScroll(0)
	if a.Cache.RoomIsEmpty(room.ID) {
		a.Dispatch(worker.FetchRoomHistory{RoomID: room.ID})
	}
}

func (a *App) numVisibleRooms() int {
	n := 0
	for range a.Cache.Rooms.FilteredBy(a.Rooms.Filter()) {
		n++
	}
	return n
}

func (a *App) numMessagesInActiveRoom() int {
	id := a.Rooms.ActiveRoomID()
	if id == "" {
		return 0
	}
	return a.Cache.NbMessagesInRoom(id)
}

// SelectedMessage returns the message under the cursor in the active room.
func (a *App) SelectedMessage() (cache.Message, bool) {
	id := a.Rooms.ActiveRoomID()
	cursor := a.Messages.Cursor()
	if id == "" || cursor < 0 {
		return cache.Message{}, false
	}
	msg, err := a.Cache.NthMessageInRoom(cursor, id)
	if err != nil {
		return cache.Message{}, false
	}
	return msg, true
}

// sendMessageBuffer turns the compose buffer into a send, reply or edit
// command and leaves compose mode. An all-whitespace buffer is discarded.
func (a *App) sendMessageBuffer() {
	defer func() {
		a.Editor.Reset()
		a.ActivePane = PaneMessages
	}()

	if a.Editor.IsEmpty() {
		return
	}
	text := a.Editor.Text()

	if edited, ok := a.Editor.Editing(); ok {
		a.Dispatch(worker.EditMessage{MsgID: edited.ID, RoomID: edited.RoomID, Text: text})
		return
	}

	roomID := a.Rooms.ActiveRoomID()
	if roomID == "" {
		log.Warn().Msg("no active room, discarding composed message")
		return
	}
	out := cache.MessageOut{RoomID: roomID, Text: text}
	if parent, ok := a.Editor.RespondTo(); ok {
		// Replying to a reply attaches to the thread root.
		if parent.ParentID != "" {
			out.ParentID = parent.ParentID
		} else {
			out.ParentID = parent.ID
		}
	}
	a.Dispatch(worker.SendMessage{Out: out})
}

// startEditingSelected loads the selected message into the editor. Only
// the user's own messages can be edited.
func (a *App) startEditingSelected() {
	msg, ok := a.SelectedMessage()
	if !ok {
		return
	}
	if !a.Cache.IsMe(msg.PersonID) {
		log.Debug().Str("message", msg.ID).Msg("cannot edit someone else's message")
		return
	}
	a.Editor.SetEditing(msg)
	a.Editor.StartComposing()
	a.ActivePane = PaneCompose
}

// deleteSelected asks the service to delete the selected message. Only the
// user's own messages can be deleted; the cache mutates when the deletion
// is confirmed.
func (a *App) deleteSelected() {
	msg, ok := a.SelectedMessage()
	if !ok {
		return
	}
	if !a.Cache.IsMe(msg.PersonID) {
		log.Debug().Str("message", msg.ID).Msg("cannot delete someone else's message")
		return
	}
	a.Dispatch(worker.DeleteMessage{MsgID: msg.ID, RoomID: msg.RoomID})
}
