package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjeldgaard/teamterm/internal/app"
	"github.com/kjeldgaard/teamterm/internal/cache"
	"github.com/kjeldgaard/teamterm/internal/config"
	"github.com/kjeldgaard/teamterm/internal/logger"
	"github.com/kjeldgaard/teamterm/internal/worker"
)

func newTestModel(t *testing.T) (*Model, chan worker.Command) {
	t.Helper()
	inbox := make(chan worker.Command, 32)
	a := app.New(inbox)
	m := New(a, logger.NewRing(), NewStyles(config.Default().Theme))
	m.resize(100, 30)
	return m, inbox
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestQuitKeyShutsDownWorker(t *testing.T) {
	m, inbox := newTestModel(t)
	m.app.ActivePane = app.PaneRooms

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// The inbox is closed so the worker drains and stops.
	_, open := <-inbox
	assert.False(t, open)
}

func TestMutationsFlowIntoCoordinator(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(worker.MeSet{Person: cache.Person{ID: "me", DisplayName: "Me"}})

	assert.True(t, m.app.Cache.IsMe("me"))
}

func TestFatalMutationQuits(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(worker.Failed{Err: assert.AnError})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestComposeModeBypassesActionTable(t *testing.T) {
	m, _ := newTestModel(t)
	m.app.ActivePane = app.PaneRooms
	m.app.Apply(app.ActionEditMessage)
	require.True(t, m.app.Editor.IsComposing())

	// "q" is the quit key outside compose; here it is just a letter.
	m.Update(key("q"))
	assert.Equal(t, "q", m.app.Editor.Text())

	// Esc leaves compose without sending.
	m.Update(key("esc"))
	assert.False(t, m.app.Editor.IsComposing())
	assert.Equal(t, app.PaneMessages, m.app.ActivePane)
}

func TestUnboundKeyIsIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.app.ActivePane = app.PaneRooms

	_, cmd := m.Update(key("z"))
	assert.Nil(t, cmd)
}

func TestTickKeepsTicking(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
}

func TestViewRendersWithoutRooms(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "teamterm")
}

func TestAuthorNameResolution(t *testing.T) {
	m, _ := newTestModel(t)
	m.app.Cache.SetMe(cache.Person{ID: "me", DisplayName: "Me"})
	m.app.Cache.Persons.Insert("p1", cache.Person{ID: "p1", DisplayName: "Alice"})
	m.app.Cache.Persons.Insert("p2", cache.Person{ID: "p2", Email: "bob@example.com"})

	assert.Equal(t, "you", m.authorName("me"))
	assert.Equal(t, "Alice", m.authorName("p1"))
	assert.Equal(t, "bob@example.com", m.authorName("p2"))
	assert.Equal(t, "p3", m.authorName("p3"))
	assert.Equal(t, "unknown", m.authorName(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long…", truncate("longer line", 5))
	assert.Equal(t, "whatever", truncate("whatever", 0))
}
