package library

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/nishant/lectern/internal/ui/theme"
)

func (l *LibraryScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render("LIBRARY"))
	b.WriteString("\n\n")

	if len(l.sessions) == 0 {
		b.WriteString(theme.Hint.Render("  Nothing saved yet. Generate a study guide first."))
		return b.String()
	}

	for i, rec := range l.sessions {
		label := rowLabel(rec)
		detail := rec.CreatedAt.Format("Jan 2, 2006")
		if rec.SourceName != "" {
			detail += "  ·  " + rec.SourceName
		}

		var line string
		if i == l.selected {
			line = theme.Selected.Render("  ▸ "+label) + "  " + theme.Hint.Render(detail)
		} else {
			line = theme.Unselected.Render("    "+label) + "  " + theme.Hint.Render(detail)
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(line))
		b.WriteString("\n")
	}

	switch l.mode {
	case modeRename:
		b.WriteString("\n" + theme.Hint.Render("  Rename: ") + l.rename.View())
	case modeConfirmDelete:
		if rec := l.current(); rec != nil {
			b.WriteString("\n" + theme.Incorrect.Render(
				fmt.Sprintf("  Delete %q? [y/n]", rec.Title)))
		}
	}

	if l.errMsg != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("  "+l.errMsg))
	}

	return b.String()
}
