package app

// MessagesList holds the messages pane state: the cursor into the display
// order of the active room and the scroll offset.
type MessagesList struct {
	cursor int // -1 when nothing is selected
	scroll int
}

// NewMessagesList returns a list with no selection.
func NewMessagesList() MessagesList {
	return MessagesList{cursor: -1}
}

// Cursor returns the index of the selected message, or -1.
func (l *MessagesList) Cursor() int {
	return l.cursor
}

// Scroll returns the scroll offset of the pane.
func (l *MessagesList) Scroll() int {
	return l.scroll
}

// SetScroll stores the scroll offset computed by the renderer.
func (l *MessagesList) SetScroll(offset int) {
	if offset < 0 {
		offset = 0
	}
	l.scroll = offset
}

// SelectNext moves the selection down. It stops at the last message.
func (l *MessagesList) SelectNext(numMessages int) {
	switch {
	case numMessages == 0:
		l.cursor = -1
	case l.cursor < 0:
		l.cursor = 0
	case l.cursor < numMessages-1:
		l.cursor++
	}
}

// SelectPrevious moves the selection up. It stops at the first message.
func (l *MessagesList) SelectPrevious(numMessages int) {
	switch {
	case numMessages == 0:
		l.cursor = -1
	case l.cursor < 0:
		l.cursor = 0
	case l.cursor > 0:
		l.cursor--
	}
}

// SelectIndex places the selection on a specific display index.
func (l *MessagesList) SelectIndex(index int) {
	l.cursor = index
}

// SelectLast selects the most recent message, or nothing in an empty room.
func (l *MessagesList) SelectLast(numMessages int) {
	if numMessages > 0 {
		l.cursor = numMessages - 1
	} else {
		l.cursor = -1
	}
}

// Deselect clears the selection.
func (l *MessagesList) Deselect() {
	l.cursor = -1
}
