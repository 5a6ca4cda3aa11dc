// Package library lists persisted study sessions: open, pin, rename,
// delete.
package library

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/nishant/lectern/internal/router"
	"github.com/nishant/lectern/internal/screen"
	"github.com/nishant/lectern/internal/session"
	"github.com/nishant/lectern/internal/store"
	"github.com/nishant/lectern/internal/ui/components"
	"github.com/nishant/lectern/internal/ui/layout"
)

// libraryMode is the screen's input mode.
type libraryMode int

const (
	modeBrowse libraryMode = iota
	modeRename
	modeConfirmDelete
)

// sessionsLoadedMsg delivers the session list.
type sessionsLoadedMsg struct {
	Sessions []*store.SessionRecord
	Err      error
}

// openedMsg reports that LoadSession finished.
type openedMsg struct {
	Err error
}

// actionDoneMsg reports a pin/rename/delete write-through.
type actionDoneMsg struct {
	Err error
}

// LibraryScreen shows saved sessions.
type LibraryScreen struct {
	orch         *session.Orchestrator
	studyFactory func() screen.Screen

	sessions []*store.SessionRecord
	selected int

	mode   libraryMode
	rename components.TextInput

	errMsg string
}

var _ screen.Screen = (*LibraryScreen)(nil)
var _ screen.KeyHintProvider = (*LibraryScreen)(nil)

// New creates the library screen.
func New(orch *session.Orchestrator, studyFactory func() screen.Screen) *LibraryScreen {
	return &LibraryScreen{
		orch:         orch,
		studyFactory: studyFactory,
	}
}

func (l *LibraryScreen) Init() tea.Cmd {
	return l.loadSessions()
}

func (l *LibraryScreen) Title() string {
	return "Library"
}

// OwnsEsc keeps Esc for the rename/delete prompts instead of
// navigation while one is open.
func (l *LibraryScreen) OwnsEsc() bool {
	return l.mode != modeBrowse
}

func (l *LibraryScreen) KeyHints() []layout.KeyHint {
	switch l.mode {
	case modeRename:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save name"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmDelete:
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "P", Description: "Pin"},
		{Key: "R", Description: "Rename"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (l *LibraryScreen) loadSessions() tea.Cmd {
	return func() tea.Msg {
		sessions, err := l.orch.ListSessions(context.Background())
		return sessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (l *LibraryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		if msg.Err != nil {
			l.errMsg = msg.Err.Error()
			return l, nil
		}
		l.sessions = msg.Sessions
		if l.selected >= len(l.sessions) {
			l.selected = len(l.sessions) - 1
		}
		if l.selected < 0 {
			l.selected = 0
		}
		return l, nil

	case session.Event:
		if msg.Kind == session.EventSessionsChanged {
			return l, l.loadSessions()
		}
		if msg.Kind == session.EventPhaseChanged && msg.Phase == session.PhaseSuccess {
			// An opened session is ready; swap to the study view.
			return l, func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: l.studyFactory()}
			}
		}
		return l, nil

	case openedMsg:
		if msg.Err != nil {
			l.errMsg = msg.Err.Error()
		}
		return l, nil

	case actionDoneMsg:
		if msg.Err != nil {
			l.errMsg = msg.Err.Error()
		}
		return l, nil

	case tea.KeyMsg:
		return l.handleKey(msg)
	}

	if l.mode == modeRename {
		var cmd tea.Cmd
		l.rename, cmd = l.rename.Update(msg)
		return l, cmd
	}
	return l, nil
}

func (l *LibraryScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch l.mode {
	case modeRename:
		switch key {
		case "enter":
			title := l.rename.Value()
			id := l.currentID()
			l.mode = modeBrowse
			if id == "" {
				return l, nil
			}
			return l, func() tea.Msg {
				return actionDoneMsg{Err: l.orch.Rename(context.Background(), id, title)}
			}
		case "esc":
			l.mode = modeBrowse
			return l, nil
		default:
			var cmd tea.Cmd
			l.rename, cmd = l.rename.Update(msg)
			return l, cmd
		}

	case modeConfirmDelete:
		switch key {
		case "y", "Y":
			id := l.currentID()
			l.mode = modeBrowse
			if id == "" {
				return l, nil
			}
			return l, func() tea.Msg {
				return actionDoneMsg{Err: l.orch.DeleteSession(context.Background(), id)}
			}
		case "n", "N", "esc":
			l.mode = modeBrowse
			return l, nil
		}
		return l, nil
	}

	// Browse mode.
	switch key {
	case "up", "k":
		if l.selected > 0 {
			l.selected--
		}
	case "down", "j":
		if l.selected < len(l.sessions)-1 {
			l.selected++
		}
	case "enter":
		id := l.currentID()
		if id == "" {
			return l, nil
		}
		return l, func() tea.Msg {
			return openedMsg{Err: l.orch.LoadSession(context.Background(), id)}
		}
	case "p", "P":
		if rec := l.current(); rec != nil {
			id, pinned := rec.ID, !rec.Pinned
			return l, func() tea.Msg {
				return actionDoneMsg{Err: l.orch.SetPinned(context.Background(), id, pinned)}
			}
		}
	case "r", "R":
		if rec := l.current(); rec != nil {
			l.rename = components.NewTextInput("New title", 80)
			l.rename.SetValue(rec.Title)
			l.mode = modeRename
			return l, l.rename.Focus()
		}
	case "d", "D":
		if l.current() != nil {
			l.mode = modeConfirmDelete
		}
	}
	return l, nil
}

func (l *LibraryScreen) current() *store.SessionRecord {
	if l.selected < 0 || l.selected >= len(l.sessions) {
		return nil
	}
	return l.sessions[l.selected]
}

func (l *LibraryScreen) currentID() string {
	if rec := l.current(); rec != nil {
		return rec.ID
	}
	return ""
}

// rowLabel formats one session entry.
func rowLabel(rec *store.SessionRecord) string {
	pin := "  "
	if rec.Pinned {
		pin = "★ "
	}
	title := rec.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s%s", pin, title)
}
