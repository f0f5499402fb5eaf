package ui

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/app"
	"github.com/kjeldgaard/teamterm/internal/cache"
)

func (m *Model) viewMessages(width, height int) string {
	roomID := m.app.Rooms.ActiveRoomID()
	if roomID == "" {
		empty := m.styles.Muted.Render("select a room")
		return m.paneStyle(app.PaneMessages, width, height).Render(empty)
	}

	innerWidth := width - 2
	cursor := m.app.Messages.Cursor()

	var lines []string
	cursorLine := -1
	i := 0
	for msg := range m.app.Cache.MessagesInRoom(roomID) {
		block := m.renderMessage(msg, i == cursor, innerWidth)
		if i == cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, strings.Split(block, "\n")...)
		i++
	}
	if len(lines) == 0 {
		empty := m.styles.Muted.Render("no messages yet")
		return m.paneStyle(app.PaneMessages, width, height).Render(empty)
	}

	visible := height - 2
	start := len(lines) - visible
	if cursorLine >= 0 {
		// Scroll just enough to keep the selection on screen.
		if cursorLine < start {
			start = cursorLine
		} else if cursorLine >= start+visible {
			start = cursorLine - visible + 1
		}
	}
	if start < 0 {
		start = 0
	}
	m.app.Messages.SetScroll(start)

	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}
	return m.paneStyle(app.PaneMessages, width, height).
		Render(strings.Join(lines[start:end], "\n"))
}

// renderMessage renders one message: a header line with author and time,
// then the body. Thread replies are indented under their root.
func (m *Model) renderMessage(msg cache.Message, selected bool, width int) string {
	indent := ""
	if msg.ParentID != "" {
		indent = "  "
	}

	header := m.styles.Author.Render(m.authorName(msg.PersonID)) +
		" " + m.styles.Timestamp.Render(msg.Created.Local().Format("Jan 02 15:04"))
	if !msg.Updated.IsZero() {
		header += m.styles.Muted.Render(" (edited)")
	}
	if selected {
		header = m.styles.Selection.Render("▌") + header
	}

	body := m.renderBody(msg, width-len(indent))
	var b strings.Builder
	b.WriteString(indent + header + "\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString(indent + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderBody prefers the markdown variant when the renderer is up.
func (m *Model) renderBody(msg cache.Message, width int) string {
	if m.markdown != nil && msg.Markdown != "" {
		out, err := m.markdown.Render(msg.Markdown)
		if err == nil {
			return strings.Trim(out, "\n")
		}
		log.Debug().Err(err).Str("message", msg.ID).Msg("markdown render failed")
	}
	var b strings.Builder
	for _, line := range strings.Split(msg.Text, "\n") {
		b.WriteString(truncate(line, width) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// authorName resolves a person id to the friendliest handle the cache has.
func (m *Model) authorName(personID string) string {
	if m.app.Cache.IsMe(personID) {
		return "you"
	}
	if person, ok := m.app.Cache.Persons.Get(personID); ok {
		if person.DisplayName != "" {
			return person.DisplayName
		}
		if person.Email != "" {
			return person.Email
		}
	}
	if personID == "" {
		return "unknown"
	}
	return personID
}
