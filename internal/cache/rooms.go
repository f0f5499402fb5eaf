package cache

import (
	"iter"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// Recent rooms saw activity within this window.
const recentActivityWindow = 24 * time.Hour

// DefaultInactiveThreshold is how long a space must be quiet before the
// inactive-spaces filter picks it up.
const DefaultInactiveThreshold = 365 * 24 * time.Hour

// Rooms keeps the room list sorted by last activity, most recent first,
// together with the set of room ids for which a fetch is in flight.
type Rooms struct {
	sorted    []Room
	requested map[string]struct{}

	inactiveAfter time.Duration
}

// NewRooms returns an empty room list.
func NewRooms() *Rooms {
	return &Rooms{
		requested:     make(map[string]struct{}),
		inactiveAfter: DefaultInactiveThreshold,
	}
}

// SetInactiveThreshold overrides the quiet period used by the
// inactive-spaces filter.
func (r *Rooms) SetInactiveThreshold(d time.Duration) {
	if d > 0 {
		r.inactiveAfter = d
	}
}

// RoomWithID returns a pointer to the room with the given id, or nil. The
// pointer is only valid until the next mutation of the list.
func (r *Rooms) RoomWithID(id string) *Room {
	for i := range r.sorted {
		if r.sorted[i].ID == id {
			return &r.sorted[i]
		}
	}
	return nil
}

// AddRequested records that a fetch is outstanding for the room id.
func (r *Rooms) AddRequested(id string) {
	r.requested[id] = struct{}{}
}

// ExistsOrRequested reports whether the room is present or a fetch for it
// is outstanding.
func (r *Rooms) ExistsOrRequested(id string) bool {
	if r.RoomWithID(id) != nil {
		return true
	}
	_, ok := r.requested[id]
	return ok
}

// UpdateWithRoom upserts a room, keeping the list sorted by last activity.
// An existing room keeps its unread flag. Inserting the room clears it from
// the requested set in the same mutation.
func (r *Rooms) UpdateWithRoom(room Room) {
	for i := range r.sorted {
		if r.sorted[i].ID == room.ID {
			room.Unread = r.sorted[i].Unread
			r.sorted = append(r.sorted[:i], r.sorted[i+1:]...)
			break
		}
	}
	delete(r.requested, room.ID)
	r.addSorted(room)
}

// addSorted inserts at the leftmost position where all earlier rooms have
// strictly greater last activity. The room must not already be in the list.
func (r *Rooms) addSorted(room Room) {
	pos := sort.Search(len(r.sorted), func(i int) bool {
		return !r.sorted[i].LastActivity.After(room.LastActivity)
	})
	r.sorted = append(r.sorted, Room{})
	copy(r.sorted[pos+1:], r.sorted[pos:])
	r.sorted[pos] = room
}

// RepositionRoom re-sorts the room after its last activity changed,
// without ingesting new fields.
func (r *Rooms) RepositionRoom(id string) {
	for i := range r.sorted {
		if r.sorted[i].ID == id {
			room := r.sorted[i]
			r.sorted = append(r.sorted[:i], r.sorted[i+1:]...)
			r.addSorted(room)
			return
		}
	}
}

// MarkUnread marks the room as having unread messages.
func (r *Rooms) MarkUnread(id string) {
	log.Debug().Str("room", id).Msg("marking room unread")
	if room := r.RoomWithID(id); room != nil {
		room.Unread = true
	}
}

// MarkRead clears the unread flag of the room.
func (r *Rooms) MarkRead(id string) {
	log.Debug().Str("room", id).Msg("marking room read")
	if room := r.RoomWithID(id); room != nil {
		room.Unread = false
	}
}

// FilteredBy yields the rooms matching the filter, in stored order.
func (r *Rooms) FilteredBy(filter Filter) iter.Seq[Room] {
	return func(yield func(Room) bool) {
		for i := range r.sorted {
			room := &r.sorted[i]
			if !r.matches(room, filter) {
				continue
			}
			if !yield(*room) {
				return
			}
		}
	}
}

func (r *Rooms) matches(room *Room, filter Filter) bool {
	switch filter {
	case FilterAll:
		return true
	case FilterDirect:
		return room.IsDirect()
	case FilterRecent:
		return room.HasActivitySince(recentActivityWindow)
	case FilterSpaces:
		return room.IsSpace()
	case FilterUnread:
		return room.Unread
	case FilterInactiveSpaces:
		return !room.IsDirect() && !room.HasActivitySince(r.inactiveAfter) && !room.IsLocked
	default:
		return false
	}
}

// RemoveRoom removes the room and any outstanding request for it.
func (r *Rooms) RemoveRoom(id string) {
	log.Debug().Str("room", id).Msg("removing room")
	for i := range r.sorted {
		if r.sorted[i].ID == id {
			r.sorted = append(r.sorted[:i], r.sorted[i+1:]...)
			break
		}
	}
	delete(r.requested, id)
}

// Len returns the number of rooms in the list.
func (r *Rooms) Len() int {
	return len(r.sorted)
}
