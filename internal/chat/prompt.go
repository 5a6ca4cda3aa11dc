package chat

import (
	"fmt"
	"strings"
)

const digestSystemPrompt = `You are compressing the older part of a tutoring conversation about a study guide. Preserve what the student asked about, what was explained, and any open threads. Drop pleasantries.`

func buildDigestUserMessage(older []Turn) string {
	var b strings.Builder

	b.WriteString("Conversation so far:\n")
	for _, t := range older {
		b.WriteString(fmt.Sprintf("[%s] %s\n", t.Role, t.Content))
	}

	b.WriteString(`
Instructions:
Digest this conversation in 3-5 sentences. Keep topics discussed, explanations already given, and unresolved questions. This digest replaces the turns above in future requests, so anything you drop is gone.`)

	return b.String()
}

const answerSystemPrompt = `You are a helpful study tutor. Answer questions about the student's lecture notes and study guide. Ground every answer in the provided material; when the material does not cover a question, say so plainly. Keep answers concise.`

// buildAnswerSystem assembles the system prompt: tutor role, the pinned
// summary, and on the first turn the full original notes. Later turns
// rely on the rolling window plus digest instead of re-sending the notes.
func buildAnswerSystem(doc DocumentContext, digest string, firstTurn bool) string {
	var b strings.Builder

	b.WriteString(answerSystemPrompt)

	if doc.Summary != "" {
		b.WriteString("\n\nStudy guide summary:\n")
		b.WriteString(doc.Summary)
	}

	if firstTurn && doc.Notes != "" {
		if doc.SourceName != "" {
			b.WriteString(fmt.Sprintf("\n\nOriginal notes (%s):\n", doc.SourceName))
		} else {
			b.WriteString("\n\nOriginal notes:\n")
		}
		b.WriteString(doc.Notes)
	}

	if digest != "" {
		b.WriteString("\n\nEarlier conversation digest:\n")
		b.WriteString(digest)
	}

	return b.String()
}
