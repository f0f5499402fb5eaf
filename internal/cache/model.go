package cache

import "time"

// Message is a single message in a room, possibly a reply inside a thread.
// Optional fields use their zero value when absent.
type Message struct {
	ID       string
	RoomID   string
	ParentID string
	PersonID string
	Email    string
	Text     string
	Markdown string
	Created  time.Time
	Updated  time.Time
}

// ActivityTime returns the update time if the message was edited,
// otherwise its creation time.
func (m Message) ActivityTime() time.Time {
	if !m.Updated.IsZero() {
		return m.Updated
	}
	return m.Created
}

// Person is a user of the messaging service.
type Person struct {
	ID          string
	DisplayName string
	Email       string
}

// Team is a named collection of rooms.
type Team struct {
	ID      string
	Name    string
	Created time.Time
}

// MessageOut is a message to be sent, before the service assigns it an id.
type MessageOut struct {
	RoomID   string
	ParentID string
	Text     string
}
