package cache

import "github.com/pkg/errors"

var (
	// ErrMalformedMessage marks a message missing an id, room id or
	// creation timestamp. Callers log and drop.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrThreadMismatch marks a message whose parent id is inconsistent
	// with the thread it would land in. The thread is left unchanged.
	ErrThreadMismatch = errors.New("thread mismatch")

	// ErrRoomNotFound is returned by operations that require an existing room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrMessageNotFound is returned when a message id is not in the room.
	ErrMessageNotFound = errors.New("message not found")
)
