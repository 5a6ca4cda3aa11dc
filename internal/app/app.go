// Package app wires the services together and runs the Bubble Tea
// program.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/nishant/lectern/internal/chat"
	"github.com/nishant/lectern/internal/guide"
	"github.com/nishant/lectern/internal/llm"
	"github.com/nishant/lectern/internal/playback"
	"github.com/nishant/lectern/internal/router"
	"github.com/nishant/lectern/internal/screen"
	"github.com/nishant/lectern/internal/screens/home"
	"github.com/nishant/lectern/internal/screens/library"
	"github.com/nishant/lectern/internal/screens/study"
	"github.com/nishant/lectern/internal/session"
	"github.com/nishant/lectern/internal/store"
	"github.com/nishant/lectern/internal/ui/layout"
)

// App owns the composed services and the event bridge between their
// callback listeners and the Bubble Tea update loop.
type App struct {
	orch   *session.Orchestrator
	engine *playback.Engine
	events chan tea.Msg
}

// New composes the application. The playback engine gets the system
// audio device when one opens; otherwise the no-device fallback, where
// premium playback degrades to unavailability. The Active Reader always
// gets the no-TTS fallback: no Go library exposes device speech with
// word-boundary callbacks.
func New(provider llm.Provider, st *store.Store) *App {
	var sink playback.AudioSink
	if s, err := playback.NewOtoSink(); err == nil {
		sink = s
	} else {
		sink = playback.NoopSink{}
	}
	engine := playback.NewEngine(provider, sink, playback.NoopSpeechEngine{})
	guides := guide.NewService(provider, guide.DefaultConfig())
	chats := chat.NewService(provider, chat.DefaultConfig())
	orch := session.NewOrchestrator(guides, chats, engine, st.SessionRepo())

	a := &App{
		orch:   orch,
		engine: engine,
		events: make(chan tea.Msg, 256),
	}

	// Service callbacks fire from arbitrary goroutines; the channel
	// carries them into the update loop as messages.
	engine.SetListener(func(ev playback.Event) { a.events <- ev })
	orch.SetListener(func(ev session.Event) { a.events <- ev })

	return a
}

// Run starts the Bubble Tea program.
func (a *App) Run() error {
	p := tea.NewProgram(a.newModel())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

// Model is the root Bubble Tea model.
type Model struct {
	app    *App
	router *router.Router
	width  int
	height int
}

func (a *App) newModel() Model {
	var studyFactory func() screen.Screen
	studyFactory = func() screen.Screen {
		return study.New(a.orch, a.engine)
	}
	libraryFactory := func() screen.Screen {
		return library.New(a.orch, studyFactory)
	}
	homeScreen := home.New(a.orch, studyFactory, libraryFactory)
	return Model{
		app:    a,
		router: router.New(homeScreen),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.router.Active().Init(),
		m.waitForEvent(),
	)
}

// waitForEvent delivers the next service event as a message and is
// re-armed after every delivery.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.app.events
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case playback.Event:
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.waitForEvent())

	case session.Event:
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.waitForEvent())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 && !screenOwnsEsc(m.router.Active()) {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// screenOwnsEsc reports whether the active screen wants Esc for its own
// input modes (rename, delete confirm) rather than navigation.
func screenOwnsEsc(s screen.Screen) bool {
	type escOwner interface{ OwnsEsc() bool }
	if o, ok := s.(escOwner); ok {
		return o.OwnsEsc()
	}
	return false
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	status := ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); len(hints) > 0 {
			footerHints = hints
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}
