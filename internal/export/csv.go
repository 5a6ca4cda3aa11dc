package export

import (
	"encoding/csv"
	"strings"

	"github.com/nishant/lectern/internal/guide"
)

// FlashcardsCSV renders the guide's vocabulary and quiz as front/back
// flashcard rows. Quiz cards put the question on the front and the
// correct option on the back.
func FlashcardsCSV(g *guide.StudyGuide) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write([]string{"front", "back"}); err != nil {
		return "", err
	}
	for _, v := range g.Vocabulary {
		if err := w.Write([]string{v.Word, v.Definition}); err != nil {
			return "", err
		}
	}
	for _, q := range g.Quiz {
		back := ""
		if q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Options) {
			back = q.Options[q.AnswerIndex]
		}
		if err := w.Write([]string{q.Question, back}); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}
