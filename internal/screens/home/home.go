package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/nishant/lectern/internal/router"
	"github.com/nishant/lectern/internal/screen"
	"github.com/nishant/lectern/internal/session"
	"github.com/nishant/lectern/internal/ui/components"
	"github.com/nishant/lectern/internal/ui/layout"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerTickMsg animates the loading spinner.
type spinnerTickMsg time.Time

// submitDoneMsg reports that the blocking generation call returned. The
// phase outcome arrives separately through orchestrator events.
type submitDoneMsg struct {
	Err error
}

// HomeScreen is the entry screen: paste notes, name the source, submit.
type HomeScreen struct {
	orch *session.Orchestrator

	studyFactory   func() screen.Screen
	libraryFactory func() screen.Screen

	source     components.TextInput
	notes      components.NotesArea
	focusNotes bool

	loading      bool
	spinnerFrame int
	errMsg       string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the home screen. The factories build the screens this one
// navigates to; they close over the shared services.
func New(orch *session.Orchestrator, studyFactory, libraryFactory func() screen.Screen) *HomeScreen {
	source := components.NewTextInput("Source name (e.g. \"Week 4 — Cell Biology\")", 80)
	notes := components.NewNotesArea("Paste your lecture notes here...", 72, 10)

	h := &HomeScreen{
		orch:           orch,
		studyFactory:   studyFactory,
		libraryFactory: libraryFactory,
		source:         source,
		notes:          notes,
		focusNotes:     true,
	}
	h.source.Blur()

	// A retry after an error keeps the previous input.
	if prevNotes, prevSource := orch.Input(); prevNotes != "" {
		h.notes.SetValue(prevNotes)
		h.source.SetValue(prevSource)
	}
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.notes.Focus()
}

func (h *HomeScreen) Title() string {
	return "New Study Guide"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.loading {
		return []layout.KeyHint{
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Generate"},
		{Key: "Tab", Description: "Switch field"},
		{Key: "Ctrl+L", Description: "Library"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case session.Event:
		return h.handleSessionEvent(msg)

	case spinnerTickMsg:
		if !h.loading {
			return h, nil
		}
		h.spinnerFrame = (h.spinnerFrame + 1) % len(spinnerFrames)
		return h, spinnerTick()

	case submitDoneMsg:
		// Outcome handled via phase events; nothing extra to do here.
		return h, nil

	case tea.KeyMsg:
		return h.handleKey(msg)
	}

	return h.forwardToInput(msg)
}

func (h *HomeScreen) handleSessionEvent(ev session.Event) (screen.Screen, tea.Cmd) {
	if ev.Kind != session.EventPhaseChanged {
		return h, nil
	}
	switch ev.Phase {
	case session.PhaseLoading:
		h.loading = true
		h.errMsg = ""
		return h, spinnerTick()
	case session.PhaseSuccess:
		h.loading = false
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: h.studyFactory()}
		}
	case session.PhaseError:
		h.loading = false
		h.errMsg = h.orch.ErrMessage()
		return h, nil
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if h.loading {
		return h, nil
	}

	switch msg.String() {
	case "tab":
		h.focusNotes = !h.focusNotes
		if h.focusNotes {
			h.source.Blur()
			return h, h.notes.Focus()
		}
		h.notes.Blur()
		return h, h.source.Focus()

	case "ctrl+s":
		return h, h.submit()

	case "ctrl+l":
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: h.libraryFactory()}
		}
	}

	return h.forwardToInput(msg)
}

func (h *HomeScreen) forwardToInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	if h.focusNotes {
		h.notes, cmd = h.notes.Update(msg)
	} else {
		h.source, cmd = h.source.Update(msg)
	}
	return h, cmd
}

// submit starts guide generation. Empty notes are a no-op, matching the
// orchestrator's guard, so nothing flickers.
func (h *HomeScreen) submit() tea.Cmd {
	notes := h.notes.Value()
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	source := h.source.Value()
	return func() tea.Msg {
		err := h.orch.Submit(context.Background(), notes, source)
		return submitDoneMsg{Err: err}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
