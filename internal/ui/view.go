package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kjeldgaard/teamterm/internal/app"
)

func (m *Model) View() string {
	if m.app.FatalErr != nil {
		return m.styles.Error.Render("fatal: ") + m.app.FatalErr.Error() + "\n"
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	header := m.viewHeader()
	footer := m.viewFooter()

	composeHeight := 0
	if m.app.Editor.IsComposing() {
		composeHeight = 5
	}
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - composeHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	if m.app.ShowHelp {
		body = m.viewHelp(bodyHeight)
	} else {
		rooms := m.viewRooms(roomsPaneWidth, bodyHeight)
		right := m.viewMessages(m.width-roomsPaneWidth-4, bodyHeight)
		if m.app.ShowLogs {
			right = m.viewLogs(m.width-roomsPaneWidth-4, bodyHeight)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, rooms, right)
	}

	sections := []string{header, body}
	if composeHeight > 0 {
		sections = append(sections, m.viewCompose())
	}
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (m *Model) viewHeader() string {
	title := m.styles.Title.Render("teamterm")
	if me, ok := m.app.Cache.Me(); ok {
		title += m.styles.Muted.Render(" · " + me.DisplayName)
	}
	if m.app.Loading {
		title += m.styles.Muted.Render(" · loading…")
	}
	return title
}

func (m *Model) viewFooter() string {
	if m.app.Editor.IsComposing() {
		return m.styles.Muted.Render("enter send · alt+enter newline · esc cancel")
	}
	return m.styles.Muted.Render("h help · tab pane · q quit")
}

func (m *Model) viewCompose() string {
	var context string
	if parent, ok := m.app.Editor.RespondTo(); ok {
		context = "reply to " + m.authorName(parent.PersonID)
	} else if edited, ok := m.app.Editor.Editing(); ok {
		context = "editing message from " + edited.Created.Local().Format("15:04")
	} else {
		context = "new message"
	}
	return m.styles.Muted.Render(context) + "\n" + m.app.Editor.View()
}

// paneStyle frames a pane, highlighting the one with keyboard focus.
func (m *Model) paneStyle(pane app.Pane, width, height int) lipgloss.Style {
	style := m.styles.PaneInactive
	if m.app.ActivePane == pane {
		style = m.styles.PaneActive
	}
	return style.Width(width).Height(height - 2)
}

// truncate clips a rendered line to the pane width.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func (m *Model) viewHelp(height int) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keys") + "\n\n")
	for _, action := range m.app.Actions().List() {
		keys := action.Keys()
		if len(keys) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-12s %s\n", strings.Join(keys, " "), action)
	}
	return m.styles.PaneInactive.Width(m.width - 2).Height(height - 2).Render(b.String())
}

func (m *Model) viewLogs(width, height int) string {
	lines := m.ring.Tail(height - 2)
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(truncate(line, width-2) + "\n")
	}
	return m.paneStyle(app.PaneLogs, width, height).Render(strings.TrimRight(b.String(), "\n"))
}
