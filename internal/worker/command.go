package worker

import "github.com/kjeldgaard/teamterm/internal/cache"

// Command is a request from the UI to the IO worker. Commands are serviced
// in FIFO order off the inbox.
type Command interface {
	isCommand()
}

// Initialize performs the login handshake and fetches the session identity.
type Initialize struct{}

// ListAllRooms pages through every room of the account.
type ListAllRooms struct{}

// UpdateRoom fetches one room.
type UpdateRoom struct {
	RoomID string
}

// UpdatePerson fetches one person.
type UpdatePerson struct {
	PersonID string
}

// UpdateTeam fetches one team.
type UpdateTeam struct {
	TeamID string
}

// UpdateMessage fetches one message, typically a referenced parent that is
// not in the cache yet.
type UpdateMessage struct {
	MsgID string
}

// SendMessage posts a new message.
type SendMessage struct {
	Out cache.MessageOut
}

// EditMessage replaces the text of an existing message.
type EditMessage struct {
	MsgID  string
	RoomID string
	Text   string
}

// DeleteMessage removes a message from the service.
type DeleteMessage struct {
	MsgID  string
	RoomID string
}

// FetchRoomHistory backfills up to Limit messages of a room.
type FetchRoomHistory struct {
	RoomID string
	Limit  int
}

// FetchThread backfills all replies of one thread.
type FetchThread struct {
	ParentID string
	RoomID   string
}

func (Initialize) isCommand()       {}
func (ListAllRooms) isCommand()     {}
func (UpdateRoom) isCommand()       {}
func (UpdatePerson) isCommand()     {}
func (UpdateTeam) isCommand()       {}
func (UpdateMessage) isCommand()    {}
func (SendMessage) isCommand()      {}
func (EditMessage) isCommand()      {}
func (DeleteMessage) isCommand()    {}
func (FetchRoomHistory) isCommand() {}
func (FetchThread) isCommand()      {}
