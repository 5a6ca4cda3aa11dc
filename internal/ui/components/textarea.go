package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// NotesArea wraps bubbles/textarea for multi-line lecture note entry.
type NotesArea struct {
	Model textarea.Model
}

// NewNotesArea creates a multi-line input sized to the given box.
func NewNotesArea(placeholder string, width, height int) NotesArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	if width > 0 {
		ta.SetWidth(width)
	}
	if height > 0 {
		ta.SetHeight(height)
	}
	return NotesArea{Model: ta}
}

// Init returns the initial command.
func (n NotesArea) Init() tea.Cmd {
	return n.Model.Focus()
}

// Update handles messages.
func (n NotesArea) Update(msg tea.Msg) (NotesArea, tea.Cmd) {
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the text area.
func (n NotesArea) View() string {
	return n.Model.View()
}

// Value returns the current text.
func (n NotesArea) Value() string {
	return n.Model.Value()
}

// SetValue replaces the current text.
func (n *NotesArea) SetValue(v string) {
	n.Model.SetValue(v)
}

// Resize adjusts the visible box.
func (n *NotesArea) Resize(width, height int) {
	if width > 0 {
		n.Model.SetWidth(width)
	}
	if height > 0 {
		n.Model.SetHeight(height)
	}
}

// Focus gives the area keyboard focus.
func (n *NotesArea) Focus() tea.Cmd {
	return n.Model.Focus()
}

// Blur removes keyboard focus.
func (n *NotesArea) Blur() {
	n.Model.Blur()
}

// Focused reports whether the area has focus.
func (n NotesArea) Focused() bool {
	return n.Model.Focused()
}
