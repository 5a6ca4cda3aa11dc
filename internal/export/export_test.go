package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nishant/lectern/internal/guide"
)

func sampleGuide() *guide.StudyGuide {
	return &guide.StudyGuide{
		Title:   "Photosynthesis",
		Summary: "Plants convert light into chemical energy.",
		Vocabulary: []guide.VocabularyEntry{
			{Word: "chlorophyll", Definition: "green pigment that absorbs light"},
			{Word: "stoma", Definition: "leaf pore for gas exchange"},
		},
		Quiz: []guide.QuizItem{
			{
				Question:    "Where does photosynthesis occur?",
				Options:     []string{"Mitochondria", "Chloroplast", "Nucleus", "Ribosome"},
				AnswerIndex: 1,
			},
		},
	}
}

func TestMarkdownLayout(t *testing.T) {
	md := Markdown(sampleGuide())

	require.True(t, strings.HasPrefix(md, "# Photosynthesis\n"))
	require.Contains(t, md, "## Summary")
	require.Contains(t, md, "Plants convert light into chemical energy.")
	require.Contains(t, md, "- **chlorophyll** — green pigment that absorbs light")
	require.Contains(t, md, "1. Where does photosynthesis occur?")
	require.Contains(t, md, "- [x] Chloroplast")
	require.Contains(t, md, "- [ ] Mitochondria")
}

func TestFlashcardsCSV(t *testing.T) {
	out, err := FlashcardsCSV(sampleGuide())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "front,back", lines[0])
	require.Equal(t, "chlorophyll,green pigment that absorbs light", lines[1])
	require.Equal(t, "Where does photosynthesis occur?,Chloroplast", lines[3])
}

func TestFlashcardsCSVOutOfRangeAnswer(t *testing.T) {
	g := sampleGuide()
	g.Quiz[0].AnswerIndex = 9

	out, err := FlashcardsCSV(g)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, "Where does photosynthesis occur?,", lines[len(lines)-1])
}
