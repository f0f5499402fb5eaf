package app

import (
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/cache"
)

// RoomsList holds the rooms pane state: the display filter, the cursor into
// the filtered list, and the id of the active room. The active room is
// tracked by id so the cursor can follow it when the list re-ranks.
type RoomsList struct {
	filter       cache.Filter
	cursor       int // -1 when nothing is selected
	activeRoomID string
}

// NewRoomsList returns a list with no selection and the default filter.
func NewRoomsList() RoomsList {
	return RoomsList{cursor: -1}
}

// Filter returns the current display filter.
func (l *RoomsList) Filter() cache.Filter {
	return l.filter
}

// ActiveRoomID returns the id of the active room, or "".
func (l *RoomsList) ActiveRoomID() string {
	return l.activeRoomID
}

// Cursor returns the index of the highlighted room in the filtered list,
// or -1.
func (l *RoomsList) Cursor() int {
	return l.cursor
}

// visibleRooms materializes the filtered room list in display order.
func (l *RoomsList) visibleRooms(c *cache.Cache) []cache.Room {
	var rooms []cache.Room
	for room := range c.Rooms.FilteredBy(l.filter) {
		rooms = append(rooms, room)
	}
	return rooms
}

// SelectedRoom returns the highlighted room, if any.
func (l *RoomsList) SelectedRoom(c *cache.Cache) (cache.Room, bool) {
	rooms := l.visibleRooms(c)
	if l.cursor < 0 || l.cursor >= len(rooms) {
		return cache.Room{}, false
	}
	return rooms[l.cursor], true
}

// NextFilter switches to the next filter and resets the cursor.
func (l *RoomsList) NextFilter(c *cache.Cache) {
	l.setFilter(c, l.filter.Next())
}

// PreviousFilter switches to the previous filter and resets the cursor.
func (l *RoomsList) PreviousFilter(c *cache.Cache) {
	l.setFilter(c, l.filter.Previous())
}

func (l *RoomsList) setFilter(c *cache.Cache, filter cache.Filter) {
	log.Debug().Stringer("filter", filter).Msg("rooms filter changed")
	l.filter = filter
	if len(l.visibleRooms(c)) == 0 {
		l.cursor = -1
	} else {
		l.cursor = 0
	}
}

// SelectNext moves the cursor down, wrapping around.
func (l *RoomsList) SelectNext(numRooms int) {
	switch {
	case numRooms == 0:
		l.cursor = -1
	case l.cursor < 0 || l.cursor >= numRooms-1:
		l.cursor = 0
	default:
		l.cursor++
	}
}

// SelectPrevious moves the cursor up, wrapping around.
func (l *RoomsList) SelectPrevious(numRooms int) {
	switch {
	case numRooms == 0:
		l.cursor = -1
	case l.cursor <= 0:
		l.cursor = numRooms - 1
	default:
		l.cursor--
	}
}

// SetActiveRoom records the room receiving messages-pane focus.
func (l *RoomsList) SetActiveRoom(id string) {
	l.activeRoomID = id
}

// FollowActiveRoom repositions the cursor on the active room after the
// rooms list mutated. If the active room no longer matches the filter the
// cursor clamps to the nearest valid index; the active room id itself is
// untouched until the user navigates.
func (l *RoomsList) FollowActiveRoom(c *cache.Cache) {
	if l.activeRoomID == "" {
		return
	}
	rooms := l.visibleRooms(c)
	for i, room := range rooms {
		if room.ID == l.activeRoomID {
			l.cursor = i
			return
		}
	}
	if l.cursor >= len(rooms) {
		l.cursor = len(rooms) - 1
	}
}
