// Package study renders a generated guide: narrated summary, vocabulary,
// quiz, and the tutor chat.
package study

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/nishant/lectern/internal/export"
	"github.com/nishant/lectern/internal/playback"
	"github.com/nishant/lectern/internal/screen"
	"github.com/nishant/lectern/internal/session"
	"github.com/nishant/lectern/internal/ui/components"
	"github.com/nishant/lectern/internal/ui/layout"
)

const (
	tabSummary = iota
	tabVocabulary
	tabQuiz
	tabChat
	tabCount
)

var tabNames = []string{"Summary", "Vocabulary", "Quiz", "Chat"}

// premiumDoneMsg reports that the blocking premium start call returned.
type premiumDoneMsg struct {
	Err error
}

// chatDoneMsg reports that a chat exchange settled.
type chatDoneMsg struct {
	Err error
}

// exportDoneMsg reports the result of writing an export file.
type exportDoneMsg struct {
	Path string
	Err  error
}

// StudyScreen shows the active guide with playback controls.
type StudyScreen struct {
	orch   *session.Orchestrator
	engine *playback.Engine

	tab       int
	highlight int

	chatInput components.TextInput
	chatBusy  bool

	quiz    []components.MultiChoice
	quizIdx int

	notice string
	errMsg string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)
var _ screen.StatusProvider = (*StudyScreen)(nil)
var _ screen.Closer = (*StudyScreen)(nil)

// New creates the study screen for the orchestrator's active guide.
func New(orch *session.Orchestrator, engine *playback.Engine) *StudyScreen {
	s := &StudyScreen{
		orch:      orch,
		engine:    engine,
		highlight: -1,
		chatInput: components.NewTextInput("Ask about this material...", 200),
	}
	s.chatInput.Blur()

	if g := orch.Guide(); g != nil {
		s.quiz = make([]components.MultiChoice, 0, len(g.Quiz))
		for _, q := range g.Quiz {
			s.quiz = append(s.quiz, components.NewMultiChoice(q.Question, q.Options, q.AnswerIndex))
		}
	}
	return s
}

func (s *StudyScreen) Init() tea.Cmd {
	return nil
}

func (s *StudyScreen) Title() string {
	if g := s.orch.Guide(); g != nil {
		return g.Title
	}
	return "Study"
}

// Status reports the narration state for the header.
func (s *StudyScreen) Status() string {
	mode, state := s.engine.Snapshot()
	switch {
	case mode == playback.ModePremium && state == playback.StatePlaying:
		return "▶ premium"
	case mode == playback.ModePremium && state == playback.StatePaused:
		return "⏸ premium"
	case mode == playback.ModeActiveReader && state == playback.StatePlaying:
		return "▶ reader"
	case mode == playback.ModeActiveReader && state == playback.StatePaused:
		return "⏸ reader"
	}
	return ""
}

// Close stops all playback when the screen leaves the stack.
func (s *StudyScreen) Close() {
	s.engine.StopAll()
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "1-4", Description: "Tabs"},
		{Key: "P", Description: "Premium voice"},
		{Key: "R", Description: "Read aloud"},
		{Key: "S", Description: "Stop"},
	}
	switch s.tab {
	case tabQuiz:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Answer / Next"})
	case tabChat:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Send"})
	default:
		hints = append(hints,
			layout.KeyHint{Key: "M", Description: "Export .md"},
			layout.KeyHint{Key: "F", Description: "Flashcards .csv"})
	}
	hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	return hints
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case playback.Event:
		return s.handlePlaybackEvent(msg)

	case session.Event:
		return s.handleSessionEvent(msg)

	case premiumDoneMsg:
		// Failures already arrived as engine events; nothing extra.
		return s, nil

	case chatDoneMsg:
		return s, nil

	case exportDoneMsg:
		if msg.Err != nil {
			s.errMsg = fmt.Sprintf("export failed: %v", msg.Err)
		} else {
			s.notice = "Saved " + msg.Path
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.tab == tabChat {
		var cmd tea.Cmd
		s.chatInput, cmd = s.chatInput.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *StudyScreen) handlePlaybackEvent(ev playback.Event) (screen.Screen, tea.Cmd) {
	switch ev.Kind {
	case playback.EventHighlight:
		s.highlight = ev.Highlight
	case playback.EventStateChanged:
		s.highlight = ev.Highlight
	case playback.EventPremiumUnavailable:
		s.notice = "Premium voice unavailable — use R to read aloud"
	case playback.EventError:
		s.errMsg = fmt.Sprintf("playback: %v", ev.Err)
	}
	return s, nil
}

func (s *StudyScreen) handleSessionEvent(ev session.Event) (screen.Screen, tea.Cmd) {
	switch ev.Kind {
	case session.EventChatSettled:
		s.chatBusy = false
	case session.EventPremiumLocked:
		s.notice = "Premium voice unavailable — use R to read aloud"
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Chat input owns most keys while its tab is active.
	if s.tab == tabChat {
		switch key {
		case "enter":
			return s, s.sendChat()
		case "tab":
			s.setTab((s.tab + 1) % tabCount)
			return s, nil
		default:
			var cmd tea.Cmd
			s.chatInput, cmd = s.chatInput.Update(msg)
			return s, cmd
		}
	}

	switch key {
	case "1", "2", "3", "4":
		s.setTab(int(key[0] - '1'))
		return s, nil
	case "tab":
		s.setTab((s.tab + 1) % tabCount)
		return s, nil
	case "shift+tab":
		s.setTab((s.tab + tabCount - 1) % tabCount)
		return s, nil

	case "p", "P":
		return s, s.togglePremium()
	case "r", "R":
		s.toggleReader()
		return s, nil
	case "s", "S":
		s.engine.StopAll()
		return s, nil

	case "m", "M":
		return s, s.export(exportMarkdown)
	case "f", "F":
		return s, s.export(exportFlashcards)
	}

	if s.tab == tabQuiz {
		return s.handleQuizKey(msg)
	}
	return s, nil
}

func (s *StudyScreen) setTab(tab int) {
	s.tab = tab
	s.notice = ""
	if tab == tabChat {
		s.chatInput.Focus()
	} else {
		s.chatInput.Blur()
	}
}

func (s *StudyScreen) handleQuizKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if len(s.quiz) == 0 {
		return s, nil
	}

	current := &s.quiz[s.quizIdx]
	if current.Submitted {
		switch msg.String() {
		case "enter", "n", "right":
			if s.quizIdx < len(s.quiz)-1 {
				s.quizIdx++
			}
			return s, nil
		case "left":
			if s.quizIdx > 0 {
				s.quizIdx--
			}
			return s, nil
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.quiz[s.quizIdx], cmd = current.Update(msg)
	return s, cmd
}

// togglePremium starts, pauses, or resumes premium narration depending
// on the engine's current state.
func (s *StudyScreen) togglePremium() tea.Cmd {
	mode, state := s.engine.Snapshot()
	switch {
	case mode == playback.ModePremium && state == playback.StatePlaying:
		s.engine.PausePremium()
		return nil
	case mode == playback.ModePremium && state == playback.StatePaused:
		s.engine.ResumePremium()
		return nil
	}

	if s.orch.PremiumLocked() {
		s.notice = "Premium voice unavailable — use R to read aloud"
		return nil
	}

	// Synthesis may block on the network; run it off the update loop.
	return func() tea.Msg {
		err := s.engine.StartPremium(context.Background())
		return premiumDoneMsg{Err: err}
	}
}

func (s *StudyScreen) toggleReader() {
	mode, state := s.engine.Snapshot()
	switch {
	case mode == playback.ModeActiveReader && state == playback.StatePlaying:
		s.engine.PauseActiveReader()
	case mode == playback.ModeActiveReader && state == playback.StatePaused:
		s.engine.ResumeActiveReader()
	default:
		if err := s.engine.StartActiveReader(); err != nil {
			s.errMsg = fmt.Sprintf("read aloud: %v", err)
		}
	}
}

func (s *StudyScreen) sendChat() tea.Cmd {
	text := strings.TrimSpace(s.chatInput.Value())
	if text == "" || s.chatBusy {
		return nil
	}
	s.chatInput.Reset()
	s.chatBusy = true
	return func() tea.Msg {
		err := s.orch.SendChat(context.Background(), text)
		return chatDoneMsg{Err: err}
	}
}

type exportKind int

const (
	exportMarkdown exportKind = iota
	exportFlashcards
)

// export writes the guide to a file in the working directory.
func (s *StudyScreen) export(kind exportKind) tea.Cmd {
	g := s.orch.Guide()
	if g == nil {
		return nil
	}
	return func() tea.Msg {
		var path, content string
		var err error
		switch kind {
		case exportMarkdown:
			path = exportFilename(g.Title, "md")
			content = export.Markdown(g)
		case exportFlashcards:
			path = exportFilename(g.Title, "csv")
			content, err = export.FlashcardsCSV(g)
			if err != nil {
				return exportDoneMsg{Err: err}
			}
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return exportDoneMsg{Err: err}
		}
		return exportDoneMsg{Path: path}
	}
}

// exportFilename derives a safe filename from the guide title.
func exportFilename(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, title)
	name = strings.Trim(name, "-")
	if name == "" {
		name = "study-guide"
	}
	return name + "." + ext
}

// quizAnswered counts committed answers.
func (s *StudyScreen) quizAnswered() (answered, correct int) {
	for _, q := range s.quiz {
		if q.Submitted {
			answered++
			if q.IsCorrect() {
				correct++
			}
		}
	}
	return answered, correct
}
