package cache

import "time"

// Room types as reported by the service.
const (
	RoomTypeDirect = "direct"
	RoomTypeGroup  = "group"
)

// Room is a conversation container: a 1-1 direct chat or a multi-party space.
type Room struct {
	ID           string
	Title        string
	Type         string
	TeamID       string
	IsLocked     bool
	LastActivity time.Time
	Unread       bool
}

// IsDirect reports whether the room is a 1-1 chat.
func (r *Room) IsDirect() bool {
	return r.Type == RoomTypeDirect
}

// IsSpace reports whether the room is a multi-party space.
func (r *Room) IsSpace() bool {
	return r.Type == RoomTypeGroup
}

// HasActivitySince reports whether the room saw activity within the given
// duration before now.
func (r *Room) HasActivitySince(d time.Duration) bool {
	return r.LastActivity.After(time.Now().Add(-d))
}

// UpdateLastActivity bumps the last activity if the new timestamp is more recent.
func (r *Room) UpdateLastActivity(ts time.Time) {
	if ts.After(r.LastActivity) {
		r.LastActivity = ts
	}
}
