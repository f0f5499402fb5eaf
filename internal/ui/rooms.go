package ui

import (
	"strings"

	"github.com/kjeldgaard/teamterm/internal/app"
)

func (m *Model) viewRooms(width, height int) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.app.Rooms.Filter().String()) + "\n")

	innerWidth := width - 2
	visible := height - 3
	cursor := m.app.Rooms.Cursor()

	i := 0
	shown := 0
	for room := range m.app.Cache.Rooms.FilteredBy(m.app.Rooms.Filter()) {
		// Keep the cursor in the window by skipping rows above it.
		if cursor >= visible && i <= cursor-visible {
			i++
			continue
		}
		if shown >= visible {
			break
		}

		title, err := m.app.Cache.RoomAndTeamTitle(room.ID)
		label := room.Title
		if err == nil {
			label = title.String()
		}

		marker := "  "
		if room.Unread {
			marker = m.styles.Unread.Render("● ")
		}
		line := truncate(label, innerWidth-2)
		switch {
		case i == cursor:
			line = m.styles.Selection.Render(line)
		case room.Unread:
			line = m.styles.Unread.Render(line)
		}
		b.WriteString(marker + line + "\n")
		i++
		shown++
	}

	return m.paneStyle(app.PaneRooms, width, height).Render(strings.TrimRight(b.String(), "\n"))
}
