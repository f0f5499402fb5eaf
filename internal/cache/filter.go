package cache

// Filter selects a subset of the rooms list for display.
type Filter int

// Filters in cycling order.
const (
	FilterAll Filter = iota
	FilterDirect
	FilterRecent
	FilterSpaces
	FilterUnread
	FilterInactiveSpaces

	numFilters
)

// Next returns the next filter in the cycle, wrapping around.
func (f Filter) Next() Filter {
	return (f + 1) % numFilters
}

// Previous returns the previous filter in the cycle, wrapping around.
func (f Filter) Previous() Filter {
	return (f + numFilters - 1) % numFilters
}

func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterDirect:
		return "Direct"
	case FilterRecent:
		return "Recent"
	case FilterSpaces:
		return "Spaces"
	case FilterUnread:
		return "Unread"
	case FilterInactiveSpaces:
		return "Inactive spaces"
	default:
		return "Unknown"
	}
}
