package cache

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageIDs(c *Cache, roomID string) []string {
	var ids []string
	for m := range c.MessagesInRoom(roomID) {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestAddMessageRejectsMalformed(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := c.AddMessage(Message{ID: "1", Created: t0})
	require.True(t, errors.Is(err, ErrMalformedMessage), "missing room id")

	err = c.AddMessage(Message{RoomID: "r", Created: t0})
	require.True(t, errors.Is(err, ErrMalformedMessage), "missing id")

	err = c.AddMessage(Message{ID: "1", RoomID: "r"})
	require.True(t, errors.Is(err, ErrMalformedMessage), "missing creation time")

	assert.True(t, c.RoomIsEmpty("r"))
}

func TestThreadGroupingDisplayOrder(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.AddMessage(mkMsg("1", "", t0)))
	require.NoError(t, c.AddMessage(mkMsg("2", "", t0.Add(2*time.Minute))))
	require.NoError(t, c.AddMessage(mkMsg("3", "1", t0.Add(time.Minute))))

	assert.Equal(t, []string{"1", "3", "2"}, messageIDs(c, "room1"))
}

func TestAddMessageTwiceIsAnUpdate(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	root := mkMsg("root", "", t0)
	reply := mkMsg("1", "root", t0.Add(time.Second))
	reply.Text = "a"
	require.NoError(t, c.AddMessage(root))
	require.NoError(t, c.AddMessage(reply))

	// The service sends edits without the parent id.
	edit := mkMsg("1", "", t0.Add(time.Second))
	edit.Text = "b"
	require.NoError(t, c.AddMessage(edit))

	assert.Equal(t, 2, c.NbMessagesInRoom("room1"))
	m, err := c.NthMessageInRoom(1, "room1")
	require.NoError(t, err)
	assert.Equal(t, "b", m.Text)
	assert.Equal(t, "root", m.ParentID, "update must preserve the original parent id")
}

func TestNewMessageReRanksRoom(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	c.Rooms.UpdateWithRoom(Room{ID: "A", LastActivity: t0})
	c.Rooms.UpdateWithRoom(Room{ID: "B", LastActivity: t0.Add(time.Hour)})
	c.Rooms.UpdateWithRoom(Room{ID: "C", LastActivity: t0.Add(2 * time.Hour)})

	msg := mkMsg("m", "", t0.Add(3*time.Hour))
	msg.RoomID = "A"
	require.NoError(t, c.AddMessage(msg))

	var order []string
	for room := range c.Rooms.FilteredBy(FilterAll) {
		order = append(order, room.ID)
	}
	assert.Equal(t, []string{"A", "C", "B"}, order)
}

func TestEditOfOldMessageSurfacesRoom(t *testing.T) {
	// Re-ranking uses the updated timestamp when present, so an edit of an
	// old message moves its room to the top.
	c := New()
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	c.Rooms.UpdateWithRoom(Room{ID: "old", LastActivity: t0})
	c.Rooms.UpdateWithRoom(Room{ID: "busy", LastActivity: t0.Add(time.Hour)})

	msg := mkMsg("m", "", t0)
	msg.RoomID = "old"
	require.NoError(t, c.AddMessage(msg))

	edit := msg
	edit.Updated = t0.Add(2 * time.Hour)
	require.NoError(t, c.AddMessage(edit))

	var order []string
	for room := range c.Rooms.FilteredBy(FilterAll) {
		order = append(order, room.ID)
	}
	assert.Equal(t, []string{"old", "busy"}, order)
}

func TestAddMessageWithUnknownRoomStillStores(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	msg := mkMsg("m1", "", t0)
	msg.RoomID = "unknown"
	require.NoError(t, c.AddMessage(msg))

	assert.Equal(t, 1, c.NbMessagesInRoom("unknown"))
	assert.Nil(t, c.Rooms.RoomWithID("unknown"))
}

func TestDisplayOrderIndependentOfArrivalOrder(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	msgs := []Message{
		mkMsg("a", "", t0),
		mkMsg("a1", "a", t0.Add(5*time.Minute)),
		mkMsg("a2", "a", t0.Add(10*time.Minute)),
		mkMsg("b", "", t0.Add(time.Minute)),
		mkMsg("b1", "b", t0.Add(7*time.Minute)),
		mkMsg("c", "", t0.Add(2*time.Minute)),
	}
	want := []string{"a", "a1", "a2", "b", "b1", "c"}

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		perm := rng.Perm(len(msgs))
		c := New()
		for _, i := range perm {
			require.NoError(t, c.AddMessage(msgs[i]), "permutation %v", perm)
		}
		assert.Equal(t, want, messageIDs(c, "room1"), "permutation %v", perm)
	}
}

func TestDeleteMessage(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.AddMessage(mkMsg("root", "", t0)))
	require.NoError(t, c.AddMessage(mkMsg("child", "root", t0.Add(time.Second))))

	require.NoError(t, c.DeleteMessage("child", "room1"))
	assert.Equal(t, 1, c.NbMessagesInRoom("room1"))

	// Deleting the last message in a thread leaves the room queryable.
	require.NoError(t, c.DeleteMessage("root", "room1"))
	assert.True(t, c.RoomIsEmpty("room1"))
	assert.Empty(t, messageIDs(c, "room1"))

	// Missing room is silent.
	assert.NoError(t, c.DeleteMessage("whatever", "no-such-room"))
}

func TestWipeAndRemoveRoom(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.AddMessage(mkMsg("1", "", t0)))
	require.NoError(t, c.AddMessage(mkMsg("2", "", t0.Add(time.Second))))
	c.Rooms.UpdateWithRoom(Room{ID: "room1", LastActivity: t0})

	assert.Equal(t, 2, c.WipeMessagesInRoom("room1"))
	assert.Equal(t, 0, c.WipeMessagesInRoom("room1"))

	c.RemoveRoom("room1")
	assert.Nil(t, c.Rooms.RoomWithID("room1"))
}

func TestSetMeAndIsMe(t *testing.T) {
	c := New()

	assert.False(t, c.IsMe("u1"), "no identity set yet")

	c.SetMe(Person{ID: "u1", DisplayName: "Ada"})
	assert.True(t, c.IsMe("u1"))
	assert.False(t, c.IsMe("u2"))
	assert.False(t, c.IsMe(""))

	// me is set once per session.
	c.SetMe(Person{ID: "u2"})
	me, ok := c.Me()
	require.True(t, ok)
	assert.Equal(t, "u1", me.ID)
}

func TestRoomAndTeamTitle(t *testing.T) {
	c := New()
	c.Teams.Insert("T", Team{ID: "T", Name: "Eng"})

	c.Rooms.UpdateWithRoom(Room{ID: "R1", Title: "Design", TeamID: "T"})
	c.Rooms.UpdateWithRoom(Room{ID: "R2", Title: "Eng", TeamID: "T"})
	c.Rooms.UpdateWithRoom(Room{ID: "R3", Title: "Chat"})
	c.Rooms.UpdateWithRoom(Room{ID: "R4"})

	tt, err := c.RoomAndTeamTitle("R1")
	require.NoError(t, err)
	assert.Equal(t, RoomAndTeamTitle{RoomTitle: "Design", TeamName: "Eng"}, tt)
	assert.Equal(t, "Design (Eng)", tt.String())

	tt, err = c.RoomAndTeamTitle("R2")
	require.NoError(t, err)
	assert.Equal(t, RoomAndTeamTitle{RoomTitle: "General", TeamName: "Eng"}, tt)

	tt, err = c.RoomAndTeamTitle("R3")
	require.NoError(t, err)
	assert.Equal(t, RoomAndTeamTitle{RoomTitle: "Chat"}, tt)
	assert.Equal(t, "Chat", tt.String())

	tt, err = c.RoomAndTeamTitle("R4")
	require.NoError(t, err)
	assert.Equal(t, "No room title", tt.RoomTitle)

	_, err = c.RoomAndTeamTitle("missing")
	assert.True(t, errors.Is(err, ErrRoomNotFound))
}

func TestEmptyRoomQueries(t *testing.T) {
	c := New()

	assert.True(t, c.RoomIsEmpty("r"))
	assert.Equal(t, 0, c.NbMessagesInRoom("r"))
	assert.Empty(t, messageIDs(c, "r"))
	assert.Equal(t, -1, c.IndexOfMessageInRoom("m", "r"))
	assert.False(t, c.MessageExistsInRoom("m", "r"))
	_, err := c.NthMessageInRoom(0, "r")
	assert.True(t, errors.Is(err, ErrRoomNotFound))
}
