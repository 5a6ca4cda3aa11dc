package home

import (
	"charm.land/lipgloss/v2"

	"github.com/nishant/lectern/internal/ui/theme"
)

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		theme.Title.Width(width).Render("LECTERN"),
		theme.Subtitle.Width(width).Render("Turn lecture notes into a study guide with narration and a tutor"),
		"",
	)

	sourceLabel := fieldLabel("Source", !h.focusNotes)
	notesLabel := fieldLabel("Notes", h.focusNotes)

	card := theme.Card.Width(min(width-4, 78))

	sections = append(sections,
		sourceLabel,
		card.Render(h.source.View()),
		"",
		notesLabel,
		card.Render(h.notes.View()),
	)

	switch {
	case h.loading:
		sections = append(sections, "",
			lipgloss.NewStyle().Foreground(theme.Secondary).Render(
				"  "+spinnerFrames[h.spinnerFrame]+" Generating your study guide..."))
	case h.errMsg != "":
		sections = append(sections, "",
			lipgloss.NewStyle().Foreground(theme.Error).Render("  "+h.errMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		AlignHorizontal(lipgloss.Center).
		Render(content)
}

func fieldLabel(name string, focused bool) string {
	if focused {
		return theme.Selected.Render("  " + name)
	}
	return theme.Hint.Render("  " + name)
}
