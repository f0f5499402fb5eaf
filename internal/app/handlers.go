package app

import (
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/cache"
	"github.com/kjeldgaard/teamterm/internal/worker"
)

// ApplyMutation folds one worker mutation into the coordinator state. It
// runs on the UI goroutine between renders, so each mutation is observed
// atomically.
func (a *App) ApplyMutation(m worker.Mutation) {
	switch m := m.(type) {
	case worker.LoadingChanged:
		a.Loading = m.Loading
	case worker.MeSet:
		a.Cache.SetMe(m.Person)
		a.Cache.Persons.Insert(m.Person.ID, m.Person)
	case worker.Initialized:
		a.ActivePane = PaneNone
		a.Dispatch(worker.ListAllRooms{})
	case worker.RoomsListed:
		if a.ActivePane == PaneNone {
			a.ActivePane = PaneRooms
		}
	case worker.RoomChanged:
		a.onRoomChanged(m.Room)
	case worker.TeamChanged:
		a.Cache.Teams.Insert(m.Team.ID, m.Team)
	case worker.PersonChanged:
		a.Cache.Persons.Insert(m.Person.ID, m.Person)
	case worker.MessageReceived:
		a.onMessagesReceived(m.Msg.RoomID, []cache.Message{m.Msg}, m.UpdateUnread)
	case worker.MessageSent:
		a.onMessagesReceived(m.Msg.RoomID, []cache.Message{m.Msg}, false)
	case worker.MessagesReceived:
		// History batches arrive newest first; insert oldest first so the
		// common case appends.
		msgs := make([]cache.Message, 0, len(m.Msgs))
		for i := len(m.Msgs) - 1; i >= 0; i-- {
			msgs = append(msgs, m.Msgs[i])
		}
		a.onMessagesReceived(m.RoomID, msgs, m.UpdateUnread)
	case worker.MessageDeleted:
		a.onMessageDeleted(m.MsgID, m.RoomID)
	case worker.Failed:
		a.FatalErr = m.Err
	default:
		log.Error().Type("mutation", m).Msg("unknown mutation")
	}
}

// onRoomChanged stores a room, keeps the cursor on the active room, and
// lazily resolves the room's team.
func (a *App) onRoomChanged(room cache.Room) {
	a.Cache.Rooms.UpdateWithRoom(room)
	a.Rooms.FollowActiveRoom(a.Cache)
	if room.TeamID != "" && !a.Cache.Teams.ExistsOrRequested(room.TeamID) {
		a.Cache.Teams.AddRequested(room.TeamID)
		a.Dispatch(worker.UpdateTeam{TeamID: room.TeamID})
	}
}

// onMessagesReceived stores a batch of messages for one room and resolves
// whatever the messages reference but the cache lacks: the room itself,
// the authors, and missing thread parents. Each missing entity is fetched
// at most once no matter how often it is referenced.
func (a *App) onMessagesReceived(roomID string, msgs []cache.Message, updateUnread bool) {
	selected, hadSelection := a.SelectedMessage()

	for _, msg := range msgs {
		if updateUnread && !a.Cache.IsMe(msg.PersonID) {
			a.Cache.Rooms.MarkUnread(msg.RoomID)
		}
		if msg.ParentID != "" && !a.Cache.MessageExistsInRoom(msg.ParentID, msg.RoomID) {
			a.requestParent(msg.ParentID, msg.RoomID)
		}
		if err := a.Cache.AddMessage(msg); err != nil {
			log.Warn().Err(err).Str("message", msg.ID).Msg("dropping message")
			continue
		}
		if !a.Cache.Rooms.ExistsOrRequested(msg.RoomID) {
			a.Cache.Rooms.AddRequested(msg.RoomID)
			a.Dispatch(worker.UpdateRoom{RoomID: msg.RoomID})
		}
		if msg.PersonID != "" && !a.Cache.Persons.ExistsOrRequested(msg.PersonID) {
			a.Cache.Persons.AddRequested(msg.PersonID)
			a.Dispatch(worker.UpdatePerson{PersonID: msg.PersonID})
		}
	}

	a.Rooms.FollowActiveRoom(a.Cache)

	// Insertions shift display indices; keep the selection on the same
	// message rather than the same slot.
	if hadSelection && roomID == a.Rooms.ActiveRoomID() {
		if index := a.Cache.IndexOfMessageInRoom(selected.ID, roomID); index >= 0 {
			a.Messages.SelectIndex(index)
		}
	}
}

// requestParent fetches a referenced thread parent that is not cached yet,
// along with the rest of its thread.
func (a *App) requestParent(parentID, roomID string) {
	if a.requestedParents == nil {
		a.requestedParents = make(map[string]struct{})
	}
	if _, ok := a.requestedParents[parentID]; ok {
		return
	}
	a.requestedParents[parentID] = struct{}{}
	a.Dispatch(worker.UpdateMessage{MsgID: parentID})
	a.Dispatch(worker.FetchThread{ParentID: parentID, RoomID: roomID})
}

// onMessageDeleted removes a message and keeps the selection valid.
func (a *App) onMessageDeleted(msgID, roomID string) {
	selected, hadSelection := a.SelectedMessage()

	if err := a.Cache.DeleteMessage(msgID, roomID); err != nil {
		log.Warn().Err(err).Str("message", msgID).Msg("delete message")
		return
	}

	if !hadSelection || roomID != a.Rooms.ActiveRoomID() {
		return
	}
	if selected.ID == msgID {
		a.Messages.Deselect()
		return
	}
	if index := a.Cache.IndexOfMessageInRoom(selected.ID, roomID); index >= 0 {
		a.Messages.SelectIndex(index)
	} else {
		a.Messages.Deselect()
	}
}
