// Package cache holds the in-memory conversation cache: rooms, threads,
// messages, teams and people, with their ordering and de-duplication
// invariants. Pure data, no I/O.
//
// There is no garbage collection and the cache only grows. This is
// acceptable for a session-lifetime process.
package cache

import (
	"fmt"
	"iter"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Cache owns all domain entities of one session.
type Cache struct {
	Rooms   *Rooms
	Persons *Registry[Person]
	Teams   *Registry[Team]

	content map[string]*roomContent
	me      *Person
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		Rooms:   NewRooms(),
		Persons: NewRegistry[Person](),
		Teams:   NewRegistry[Team](),
		content: make(map[string]*roomContent),
	}
}

// SetMe records the identity of the logged-in user. It is set once per
// session; later calls are ignored.
func (c *Cache) SetMe(p Person) {
	if c.me != nil {
		log.Warn().Str("person", p.ID).Msg("me is already set, ignoring")
		return
	}
	me := p
	c.me = &me
}

// Me returns the session identity, if set.
func (c *Cache) Me() (Person, bool) {
	if c.me == nil {
		return Person{}, false
	}
	return *c.me, true
}

// IsMe reports whether the person id is the logged-in user. False when
// either side is missing.
func (c *Cache) IsMe(personID string) bool {
	return c.me != nil && personID != "" && c.me.ID == personID
}

// AddMessage upserts a message into its room content, respecting thread
// order, and re-ranks the owning room if it is known. A message for an
// unknown room is still stored; the caller is expected to request the room
// so the id ends up in the rooms-requested set.
func (c *Cache) AddMessage(msg Message) error {
	if msg.RoomID == "" {
		return errors.Wrap(ErrMalformedMessage, "missing room id")
	}
	if msg.ID == "" {
		return errors.Wrap(ErrMalformedMessage, "missing id")
	}
	if msg.Created.IsZero() {
		return errors.Wrap(ErrMalformedMessage, "missing creation time")
	}

	content, ok := c.content[msg.RoomID]
	if !ok {
		content = &roomContent{}
		c.content[msg.RoomID] = content
	}
	if err := content.add(msg); err != nil {
		return err
	}

	// Bump the room activity if the room is already present. If not, its
	// last activity will come with the room fetch.
	if room := c.Rooms.RoomWithID(msg.RoomID); room != nil {
		room.UpdateLastActivity(msg.ActivityTime())
		c.Rooms.RepositionRoom(msg.RoomID)
	}
	return nil
}

// DeleteMessage removes the message from its thread if present. A missing
// room is silently ignored.
func (c *Cache) DeleteMessage(msgID, roomID string) error {
	content, ok := c.content[roomID]
	if !ok {
		return nil
	}
	return content.delete(msgID)
}

// MessagesInRoom yields all cached messages of the room in display order:
// thread-grouped, chronological within and between threads. The sequence is
// restartable and finite.
func (c *Cache) MessagesInRoom(roomID string) iter.Seq[Message] {
	content, ok := c.content[roomID]
	if !ok {
		return func(yield func(Message) bool) {}
	}
	return content.messages()
}

// NthMessageInRoom returns the message at the given display-order index.
func (c *Cache) NthMessageInRoom(index int, roomID string) (Message, error) {
	content, ok := c.content[roomID]
	if !ok {
		return Message{}, errors.Wrapf(ErrRoomNotFound, "room %s", roomID)
	}
	return content.nth(index)
}

// IndexOfMessageInRoom returns the display-order index of the message in
// the room, or -1 if it is not cached.
func (c *Cache) IndexOfMessageInRoom(msgID, roomID string) int {
	content, ok := c.content[roomID]
	if !ok {
		return -1
	}
	return content.indexOf(msgID)
}

// MessageExistsInRoom reports whether the message is cached in the room.
func (c *Cache) MessageExistsInRoom(msgID, roomID string) bool {
	return c.IndexOfMessageInRoom(msgID, roomID) >= 0
}

// NbMessagesInRoom returns the number of cached messages in the room.
func (c *Cache) NbMessagesInRoom(roomID string) int {
	content, ok := c.content[roomID]
	if !ok {
		return 0
	}
	return content.len()
}

// RoomIsEmpty reports whether the room has no cached messages.
func (c *Cache) RoomIsEmpty(roomID string) bool {
	content, ok := c.content[roomID]
	if !ok {
		return true
	}
	return content.isEmpty()
}

// WipeMessagesInRoom drops all cached messages of the room and returns how
// many were dropped.
func (c *Cache) WipeMessagesInRoom(roomID string) int {
	content, ok := c.content[roomID]
	if !ok {
		return 0
	}
	n := content.len()
	delete(c.content, roomID)
	return n
}

// RemoveRoom removes the room, its content and any outstanding request.
func (c *Cache) RemoveRoom(roomID string) {
	delete(c.content, roomID)
	c.Rooms.RemoveRoom(roomID)
}

// RoomAndTeamTitle is the display title of a room together with its team
// name, if the room belongs to a team.
type RoomAndTeamTitle struct {
	RoomTitle string
	TeamName  string
}

func (t RoomAndTeamTitle) String() string {
	if t.TeamName == "" {
		return t.RoomTitle
	}
	return fmt.Sprintf("%s (%s)", t.RoomTitle, t.TeamName)
}

// RoomAndTeamTitle resolves the display title of the room. A room without a
// title is labeled "No room title". A room titled like its team is the
// team's general room and is relabeled "General".
func (c *Cache) RoomAndTeamTitle(roomID string) (RoomAndTeamTitle, error) {
	room := c.Rooms.RoomWithID(roomID)
	if room == nil {
		return RoomAndTeamTitle{}, errors.Wrapf(ErrRoomNotFound, "room %s", roomID)
	}
	title := room.Title
	if title == "" {
		title = "No room title"
	}
	var teamName string
	if room.TeamID != "" {
		if team, ok := c.Teams.Get(room.TeamID); ok {
			teamName = team.Name
		}
	}
	if teamName != "" && teamName == title {
		title = "General"
	}
	return RoomAndTeamTitle{RoomTitle: title, TeamName: teamName}, nil
}
