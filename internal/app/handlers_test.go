package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjeldgaard/teamterm/internal/cache"
	"github.com/kjeldgaard/teamterm/internal/worker"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func msgAt(id, roomID, personID string, offset time.Duration) cache.Message {
	return cache.Message{
		ID:       id,
		RoomID:   roomID,
		PersonID: personID,
		Text:     "text " + id,
		Created:  epoch.Add(offset),
	}
}

func roomAt(id, title string, offset time.Duration) cache.Room {
	return cache.Room{
		ID:           id,
		Title:        title,
		Type:         cache.RoomTypeGroup,
		LastActivity: epoch.Add(offset),
	}
}

// newTestApp returns an App with a buffered inbox the test can inspect.
func newTestApp(t *testing.T) (*App, chan worker.Command) {
	t.Helper()
	inbox := make(chan worker.Command, 32)
	a := New(inbox)
	a.Cache.SetMe(cache.Person{ID: "me", DisplayName: "Me"})
	a.Cache.Persons.Insert("me", cache.Person{ID: "me", DisplayName: "Me"})
	return a, inbox
}

// dispatched drains the inbox into a slice.
func dispatched(inbox chan worker.Command) []worker.Command {
	var cmds []worker.Command
	for {
		select {
		case cmd := <-inbox:
			cmds = append(cmds, cmd)
		default:
			return cmds
		}
	}
}

func TestInitializedDispatchesRoomListing(t *testing.T) {
	a, inbox := newTestApp(t)

	a.ApplyMutation(worker.Initialized{})

	cmds := dispatched(inbox)
	require.Len(t, cmds, 1)
	assert.IsType(t, worker.ListAllRooms{}, cmds[0])
}

func TestRoomsListedFocusesRoomsPane(t *testing.T) {
	a, _ := newTestApp(t)
	require.Equal(t, PaneNone, a.ActivePane)

	a.ApplyMutation(worker.RoomsListed{})
	assert.Equal(t, PaneRooms, a.ActivePane)

	// A later listing refresh must not steal focus.
	a.ActivePane = PaneMessages
	a.ApplyMutation(worker.RoomsListed{})
	assert.Equal(t, PaneMessages, a.ActivePane)
}

func TestForeignMessageMarksRoomUnread(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})

	a.ApplyMutation(worker.MessageReceived{
		Msg:          msgAt("m1", "r1", "alice", time.Minute),
		UpdateUnread: true,
	})

	room := a.Cache.Rooms.RoomWithID("r1")
	require.NotNil(t, room)
	assert.True(t, room.Unread)
}

func TestOwnMessageDoesNotMarkUnread(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})

	a.ApplyMutation(worker.MessageReceived{
		Msg:          msgAt("m1", "r1", "me", time.Minute),
		UpdateUnread: true,
	})

	room := a.Cache.Rooms.RoomWithID("r1")
	require.NotNil(t, room)
	assert.False(t, room.Unread)
}

func TestHistoryBatchDoesNotMarkUnread(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})

	a.ApplyMutation(worker.MessagesReceived{
		RoomID: "r1",
		Msgs: []cache.Message{
			msgAt("m2", "r1", "alice", 2*time.Minute),
			msgAt("m1", "r1", "alice", time.Minute),
		},
	})

	room := a.Cache.Rooms.RoomWithID("r1")
	require.NotNil(t, room)
	assert.False(t, room.Unread)
	assert.Equal(t, 2, a.Cache.NbMessagesInRoom("r1"))
}

func TestUnknownRoomFetchedExactlyOnce(t *testing.T) {
	a, inbox := newTestApp(t)

	// Three messages for the same unknown room, across two mutations.
	a.ApplyMutation(worker.MessagesReceived{
		RoomID: "r9",
		Msgs: []cache.Message{
			msgAt("m2", "r9", "alice", 2*time.Minute),
			msgAt("m1", "r9", "alice", time.Minute),
		},
		UpdateUnread: true,
	})
	a.ApplyMutation(worker.MessageReceived{
		Msg:          msgAt("m3", "r9", "alice", 3*time.Minute),
		UpdateUnread: true,
	})

	var roomFetches int
	for _, cmd := range dispatched(inbox) {
		if fetch, ok := cmd.(worker.UpdateRoom); ok {
			require.Equal(t, "r9", fetch.RoomID)
			roomFetches++
		}
	}
	assert.Equal(t, 1, roomFetches)

	// All three messages are queryable even though the room details never
	// arrived.
	assert.Equal(t, 3, a.Cache.NbMessagesInRoom("r9"))
}

func TestUnknownAuthorFetchedExactlyOnce(t *testing.T) {
	a, inbox := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})

	a.ApplyMutation(worker.MessagesReceived{
		RoomID: "r1",
		Msgs: []cache.Message{
			msgAt("m2", "r1", "alice", 2*time.Minute),
			msgAt("m1", "r1", "alice", time.Minute),
		},
	})

	var personFetches int
	for _, cmd := range dispatched(inbox) {
		if fetch, ok := cmd.(worker.UpdatePerson); ok {
			require.Equal(t, "alice", fetch.PersonID)
			personFetches++
		}
	}
	assert.Equal(t, 1, personFetches)
}

func TestMissingThreadParentRequestedOnce(t *testing.T) {
	a, inbox := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})

	reply1 := msgAt("m2", "r1", "alice", 2*time.Minute)
	reply1.ParentID = "m1"
	reply2 := msgAt("m3", "r1", "alice", 3*time.Minute)
	reply2.ParentID = "m1"

	a.ApplyMutation(worker.MessageReceived{Msg: reply1, UpdateUnread: true})
	a.ApplyMutation(worker.MessageReceived{Msg: reply2, UpdateUnread: true})

	var parentFetches, threadFetches int
	for _, cmd := range dispatched(inbox) {
		switch cmd := cmd.(type) {
		case worker.UpdateMessage:
			require.Equal(t, "m1", cmd.MsgID)
			parentFetches++
		case worker.FetchThread:
			require.Equal(t, "m1", cmd.ParentID)
			threadFetches++
		}
	}
	assert.Equal(t, 1, parentFetches)
	assert.Equal(t, 1, threadFetches)
}

func TestKnownParentNotRefetched(t *testing.T) {
	a, inbox := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})
	a.ApplyMutation(worker.MessageReceived{Msg: msgAt("m1", "r1", "alice", time.Minute)})
	_ = dispatched(inbox)

	reply := msgAt("m2", "r1", "alice", 2*time.Minute)
	reply.ParentID = "m1"
	a.ApplyMutation(worker.MessageReceived{Msg: reply})

	for _, cmd := range dispatched(inbox) {
		if _, ok := cmd.(worker.UpdateMessage); ok {
			t.Fatal("cached parent must not be refetched")
		}
	}
}

func TestCursorFollowsActiveRoomOnRerank(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("rA", "Alpha", 3*time.Hour)})
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("rB", "Beta", 2*time.Hour)})
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("rC", "Gamma", time.Hour)})

	// Activate rB, currently at index 1.
	a.ActivePane = PaneRooms
	a.Apply(ActionNextRoom)
	a.Apply(ActionNextRoom)
	room, ok := a.Rooms.SelectedRoom(a.Cache)
	require.True(t, ok)
	require.Equal(t, "rB", room.ID)

	// New activity in rC moves it above rB.
	a.ApplyMutation(worker.MessageReceived{
		Msg:          msgAt("m1", "rC", "alice", 5*time.Hour),
		UpdateUnread: true,
	})

	room, ok = a.Rooms.SelectedRoom(a.Cache)
	require.True(t, ok)
	assert.Equal(t, "rB", room.ID)
	assert.Equal(t, 2, a.Rooms.Cursor())
}

func TestSelectionFollowsMessageOnInsertion(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})
	a.ApplyMutation(worker.MessageReceived{Msg: msgAt("m2", "r1", "alice", 2*time.Minute)})
	a.ApplyMutation(worker.MessageReceived{Msg: msgAt("m3", "r1", "alice", 3*time.Minute)})

	a.ActivePane = PaneRooms
	a.Apply(ActionNextRoom)
	a.ActivePane = PaneMessages
	a.Apply(ActionNextMessage) // select m2 at index 0

	msg, ok := a.SelectedMessage()
	require.True(t, ok)
	require.Equal(t, "m2", msg.ID)

	// An older message arrives and shifts display indices.
	a.ApplyMutation(worker.MessagesReceived{
		RoomID: "r1",
		Msgs:   []cache.Message{msgAt("m1", "r1", "alice", time.Minute)},
	})

	msg, ok = a.SelectedMessage()
	require.True(t, ok)
	assert.Equal(t, "m2", msg.ID)
	assert.Equal(t, 1, a.Messages.Cursor())
}

func TestDeletedSelectionIsCleared(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})
	a.ApplyMutation(worker.MessageReceived{Msg: msgAt("m1", "r1", "alice", time.Minute)})
	a.ApplyMutation(worker.MessageReceived{Msg: msgAt("m2", "r1", "alice", 2*time.Minute)})

	a.ActivePane = PaneRooms
	a.Apply(ActionNextRoom)
	a.ActivePane = PaneMessages
	a.Apply(ActionNextMessage)
	a.Apply(ActionNextMessage) // select m2

	a.ApplyMutation(worker.MessageDeleted{MsgID: "m2", RoomID: "r1"})

	_, ok := a.SelectedMessage()
	assert.False(t, ok)
	assert.Equal(t, 1, a.Cache.NbMessagesInRoom("r1"))
}

func TestDeletionKeepsOtherSelection(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.RoomChanged{Room: roomAt("r1", "General", 0)})
	a.ApplyMutation(worker.MessageReceived{Msg: msgAt("m1", "r1", "alice", time.Minute)})
	a.ApplyMutation(worker.MessageReceived{Msg: msgAt("m2", "r1", "alice", 2*time.Minute)})

	a.ActivePane = PaneRooms
	a.Apply(ActionNextRoom)
	a.ActivePane = PaneMessages
	a.Apply(ActionNextMessage)
	a.Apply(ActionNextMessage) // select m2 at index 1

	a.ApplyMutation(worker.MessageDeleted{MsgID: "m1", RoomID: "r1"})

	msg, ok := a.SelectedMessage()
	require.True(t, ok)
	assert.Equal(t, "m2", msg.ID)
	assert.Equal(t, 0, a.Messages.Cursor())
}

func TestMeSetRegistersPerson(t *testing.T) {
	inbox := make(chan worker.Command, 8)
	a := New(inbox)

	a.ApplyMutation(worker.MeSet{Person: cache.Person{ID: "me", DisplayName: "Me"}})

	assert.True(t, a.Cache.IsMe("me"))
	_, ok := a.Cache.Persons.Get("me")
	assert.True(t, ok)
}

func TestRoomWithTeamFetchesTeamOnce(t *testing.T) {
	a, inbox := newTestApp(t)
	room := roomAt("r1", "Sprint", 0)
	room.TeamID = "t1"

	a.ApplyMutation(worker.RoomChanged{Room: room})
	a.ApplyMutation(worker.RoomChanged{Room: room})

	var teamFetches int
	for _, cmd := range dispatched(inbox) {
		if fetch, ok := cmd.(worker.UpdateTeam); ok {
			require.Equal(t, "t1", fetch.TeamID)
			teamFetches++
		}
	}
	assert.Equal(t, 1, teamFetches)
}

func TestFailedMutationSetsFatalError(t *testing.T) {
	a, _ := newTestApp(t)
	a.ApplyMutation(worker.Failed{Err: assert.AnError})
	assert.Equal(t, assert.AnError, a.FatalErr)
}
