package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/nishant/lectern/internal/chat"
	"github.com/nishant/lectern/internal/playback"
	"github.com/nishant/lectern/internal/ui/components"
	"github.com/nishant/lectern/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	g := s.orch.Guide()
	if g == nil {
		return theme.Subtitle.Width(width).Render("\n\nNo guide loaded.")
	}

	var b strings.Builder
	b.WriteString(s.renderTabBar(width))
	b.WriteString("\n\n")

	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	switch s.tab {
	case tabSummary:
		b.WriteString(s.renderSummary(g.Summary, contentWidth))
	case tabVocabulary:
		b.WriteString(s.renderVocabulary(contentWidth))
	case tabQuiz:
		b.WriteString(s.renderQuiz(contentWidth))
	case tabChat:
		b.WriteString(s.renderChat(contentWidth, height))
	}

	if s.notice != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render("  "+s.notice))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("  "+s.errMsg))
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (s *StudyScreen) renderTabBar(width int) string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if i == s.tab {
			parts = append(parts, theme.TabActive.Render(label))
		} else {
			parts = append(parts, theme.TabInactive.Render(label))
		}
	}
	bar := "  " + strings.Join(parts, " ")
	return lipgloss.NewStyle().Width(width).Render(bar)
}

// renderSummary shows the narration text with the word currently being
// spoken highlighted.
func (s *StudyScreen) renderSummary(summary string, width int) string {
	text := highlightWord(summary, s.engine.Segments(), s.highlight)
	return lipgloss.NewStyle().
		Width(width).
		PaddingLeft(2).
		Foreground(theme.Text).
		Render(text)
}

// highlightWord wraps the active segment in the spoken-word style. Out
// of range means no narration highlight.
func highlightWord(text string, segs []playback.WordSegment, active int) string {
	if active < 0 || active >= len(segs) {
		return text
	}
	runes := []rune(text)
	seg := segs[active]
	if seg.Start < 0 || seg.End > len(runes) || seg.Start >= seg.End {
		return text
	}
	return string(runes[:seg.Start]) +
		theme.SpokenWord.Render(string(runes[seg.Start:seg.End])) +
		string(runes[seg.End:])
}

func (s *StudyScreen) renderVocabulary(width int) string {
	g := s.orch.Guide()
	var b strings.Builder
	for _, v := range g.Vocabulary {
		line := theme.Selected.Render(v.Word) +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("  —  ") +
			theme.Body.Render(v.Definition)
		b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *StudyScreen) renderQuiz(width int) string {
	if len(s.quiz) == 0 {
		return theme.Hint.Render("  No quiz available.")
	}

	answered, correct := s.quizAnswered()

	var b strings.Builder
	bar := components.NewProgressBar(
		fmt.Sprintf("  Question %d/%d", s.quizIdx+1, len(s.quiz)),
		float64(answered)/float64(len(s.quiz)),
		false,
		width-10,
	)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Width(width).Render(s.quiz[s.quizIdx].View()))

	if s.quiz[s.quizIdx].Submitted {
		b.WriteString("\n")
		if s.quiz[s.quizIdx].IsCorrect() {
			b.WriteString(theme.Correct.Render("  Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("  Not quite."))
		}
		if s.quizIdx < len(s.quiz)-1 {
			b.WriteString(theme.Hint.Render("  Press Enter for the next question."))
		}
	}

	if answered == len(s.quiz) {
		b.WriteString("\n\n" + theme.Selected.Render(
			fmt.Sprintf("  Score: %d/%d", correct, len(s.quiz))))
	}

	return b.String()
}

func (s *StudyScreen) renderChat(width, height int) string {
	log := s.orch.ChatLog()

	// Show only the turns that fit; the newest matter most.
	maxTurns := 8
	if len(log) > maxTurns {
		log = log[len(log)-maxTurns:]
	}

	var b strings.Builder
	for _, turn := range log {
		var label string
		if turn.Role == chat.RoleUser {
			label = theme.ChatUser.Render("You")
		} else {
			label = theme.Selected.Render("Tutor")
		}
		content := turn.Content
		if content == "" {
			content = "…"
		}
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Width(width).Render(label + "  " + theme.ChatModel.Render(content)))
		b.WriteString("\n\n")
	}

	if s.chatBusy {
		b.WriteString(theme.Hint.Render("  Tutor is thinking...") + "\n\n")
	}

	b.WriteString("  " + s.chatInput.View())
	return b.String()
}
