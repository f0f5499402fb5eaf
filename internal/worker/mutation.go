package worker

import "github.com/kjeldgaard/teamterm/internal/cache"

// Mutation is an event the worker emits towards the UI task, which is the
// sole mutator of the coordinator and cache. Mutations are delivered in
// emission order and observed atomically between renders.
type Mutation interface {
	isMutation()
}

// Initialized signals that the login handshake completed.
type Initialized struct{}

// MeSet carries the identity of the logged-in user.
type MeSet struct {
	Person cache.Person
}

// MessageReceived carries one fetched or streamed message.
type MessageReceived struct {
	Msg cache.Message
	// UpdateUnread marks the room unread when the author is someone else.
	UpdateUnread bool
}

// MessageSent confirms a message this client posted.
type MessageSent struct {
	Msg cache.Message
}

// MessagesReceived carries a history batch, newest first as returned by
// the service.
type MessagesReceived struct {
	RoomID       string
	Msgs         []cache.Message
	UpdateUnread bool
}

// MessageDeleted signals that a message disappeared from a room.
type MessageDeleted struct {
	MsgID  string
	RoomID string
}

// RoomsListed signals that the full room listing finished, whether or not
// any room arrived.
type RoomsListed struct{}

// RoomChanged carries a created or updated room.
type RoomChanged struct {
	Room cache.Room
}

// TeamChanged carries a fetched team.
type TeamChanged struct {
	Team cache.Team
}

// PersonChanged carries a fetched person.
type PersonChanged struct {
	Person cache.Person
}

// LoadingChanged toggles the coordinator loading flag around each
// serviced command.
type LoadingChanged struct {
	Loading bool
}

// Failed signals a fatal worker error; the UI surfaces it and exits.
type Failed struct {
	Err error
}

func (Initialized) isMutation()      {}
func (MeSet) isMutation()            {}
func (MessageReceived) isMutation()  {}
func (MessageSent) isMutation()      {}
func (MessagesReceived) isMutation() {}
func (MessageDeleted) isMutation()   {}
func (RoomsListed) isMutation()      {}
func (RoomChanged) isMutation()      {}
func (TeamChanged) isMutation()      {}
func (PersonChanged) isMutation()    {}
func (LoadingChanged) isMutation()   {}
func (Failed) isMutation()           {}
