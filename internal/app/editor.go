package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kjeldgaard/teamterm/internal/cache"
)

// Editor is the compose buffer. While composing, key events bypass the
// action table and feed the textarea directly.
type Editor struct {
	area      textarea.Model
	composing bool

	// respondTo is the message a reply is being written to, if any.
	respondTo *cache.Message
	// editing is the message being edited in place, if any.
	editing *cache.Message
}

// NewEditor returns an empty editor.
func NewEditor() Editor {
	area := textarea.New()
	area.Placeholder = "Write a message..."
	area.ShowLineNumbers = false
	area.SetHeight(3)
	return Editor{area: area}
}

// IsComposing reports whether the editor currently receives keystrokes.
func (e *Editor) IsComposing() bool {
	return e.composing
}

// StartComposing gives the editor keyboard focus.
func (e *Editor) StartComposing() {
	e.composing = true
	e.area.Focus()
}

// StopComposing removes keyboard focus without clearing the buffer.
func (e *Editor) StopComposing() {
	e.composing = false
	e.area.Blur()
}

// Reset clears the buffer and any reply or edit context.
func (e *Editor) Reset() {
	e.area.Reset()
	e.respondTo = nil
	e.editing = nil
	e.composing = false
	e.area.Blur()
}

// SetRespondTo marks the composed text as a reply to msg.
func (e *Editor) SetRespondTo(msg cache.Message) {
	e.respondTo = &msg
	e.editing = nil
}

// RespondTo returns the message being replied to, if any.
func (e *Editor) RespondTo() (cache.Message, bool) {
	if e.respondTo == nil {
		return cache.Message{}, false
	}
	return *e.respondTo, true
}

// SetEditing loads msg into the buffer for in-place editing.
func (e *Editor) SetEditing(msg cache.Message) {
	e.editing = &msg
	e.respondTo = nil
	e.area.SetValue(msg.Text)
}

// Editing returns the message being edited, if any.
func (e *Editor) Editing() (cache.Message, bool) {
	if e.editing == nil {
		return cache.Message{}, false
	}
	return *e.editing, true
}

// Text returns the composed text.
func (e *Editor) Text() string {
	return e.area.Value()
}

// IsEmpty reports whether the buffer contains only whitespace.
func (e *Editor) IsEmpty() bool {
	return strings.TrimSpace(e.area.Value()) == ""
}

// InsertNewline appends a line break at the cursor.
func (e *Editor) InsertNewline() {
	e.area.InsertString("\n")
}

// Update forwards a terminal event to the textarea.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return cmd
}

// View renders the textarea.
func (e *Editor) View() string {
	return e.area.View()
}

// SetWidth resizes the textarea.
func (e *Editor) SetWidth(w int) {
	e.area.SetWidth(w)
}
