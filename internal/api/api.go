// Package api is a thin client for the hosted team-messaging service:
// REST calls for entities and a websocket stream for change events.
package api

import (
	"context"

	"github.com/kjeldgaard/teamterm/internal/cache"
)

// ActivityType classifies an event from the service.
type ActivityType string

// Activity types the client reacts to. Anything else is ignored.
const (
	MessagePosted  ActivityType = "message.posted"
	MessageUpdated ActivityType = "message.updated"
	MessageDeleted ActivityType = "message.deleted"
	RoomCreated    ActivityType = "room.created"
	RoomUpdated    ActivityType = "room.updated"
)

// Event is a change notification. It carries ids only; the referenced
// entity has to be fetched separately.
type Event struct {
	Type       ActivityType
	ResourceID string
	RoomID     string
	ActorID    string
}

// EventStream delivers events until the connection breaks or the context
// is cancelled.
type EventStream interface {
	// Next blocks until an event arrives or the stream fails.
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Client is the set of service capabilities the rest of the program
// depends on. Any conforming implementation is acceptable.
type Client interface {
	Me(ctx context.Context) (cache.Person, error)
	ListRooms(ctx context.Context) ([]cache.Room, error)
	GetRoom(ctx context.Context, id string) (cache.Room, error)
	GetPerson(ctx context.Context, id string) (cache.Person, error)
	GetTeam(ctx context.Context, id string) (cache.Team, error)
	GetMessage(ctx context.Context, id string) (cache.Message, error)
	// ListMessages returns up to limit messages of the room, newest first.
	ListMessages(ctx context.Context, roomID string, limit int) ([]cache.Message, error)
	// ListReplies returns the messages of one thread, newest first.
	ListReplies(ctx context.Context, parentID, roomID string) ([]cache.Message, error)
	SendMessage(ctx context.Context, out cache.MessageOut) (cache.Message, error)
	EditMessage(ctx context.Context, msgID, roomID, text string) (cache.Message, error)
	DeleteMessage(ctx context.Context, msgID string) error
	// Events opens a fresh event stream. Reconnection is the caller's job.
	Events(ctx context.Context) (EventStream, error)
}
