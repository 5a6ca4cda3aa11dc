// Package export renders a study guide into shareable formats.
package export

import (
	"fmt"
	"strings"

	"github.com/nishant/lectern/internal/guide"
)

// Markdown renders the full study guide as a Markdown document: title,
// summary, vocabulary bullets, and the quiz with the correct answer
// marked.
func Markdown(g *guide.StudyGuide) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", g.Title)

	b.WriteString("## Summary\n\n")
	b.WriteString(strings.TrimSpace(g.Summary))
	b.WriteString("\n\n")

	b.WriteString("## Vocabulary\n\n")
	for _, v := range g.Vocabulary {
		fmt.Fprintf(&b, "- **%s** — %s\n", v.Word, v.Definition)
	}
	b.WriteString("\n")

	b.WriteString("## Quiz\n\n")
	for i, q := range g.Quiz {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			marker := " "
			if j == q.AnswerIndex {
				marker = "x"
			}
			fmt.Fprintf(&b, "   - [%s] %s\n", marker, opt)
		}
		b.WriteString("\n")
	}

	return b.String()
}
