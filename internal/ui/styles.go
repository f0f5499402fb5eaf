// Package ui renders the coordinator state with bubbletea: a rooms pane,
// a messages pane, the compose line, and the help and logs overlays.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kjeldgaard/teamterm/internal/config"
)

// Styles holds the lipgloss styles derived from the theme.
type Styles struct {
	PaneActive   lipgloss.Style
	PaneInactive lipgloss.Style
	Title        lipgloss.Style
	Unread       lipgloss.Style
	Selection    lipgloss.Style
	Author       lipgloss.Style
	Timestamp    lipgloss.Style
	Error        lipgloss.Style
	Muted        lipgloss.Style
}

// NewStyles builds the style set from theme colors.
func NewStyles(theme config.ThemeConfig) Styles {
	return Styles{
		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.BorderActive)),
		PaneInactive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.BorderInactive)),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Title)),
		Unread: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Unread)),
		Selection: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.SelectionFg)).
			Background(lipgloss.Color(theme.SelectionBg)),
		Author:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Author)),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Timestamp)),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Error)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(theme.BorderInactive)),
	}
}
