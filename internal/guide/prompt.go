package guide

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert study coach. You turn raw lecture notes into clear, accurate study material. You never invent facts that are not supported by the notes.`

func buildUserMessage(notes, sourceName string) string {
	var b strings.Builder

	if sourceName != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n\n", sourceName))
	}
	b.WriteString("Lecture notes:\n")
	b.WriteString(notes)

	b.WriteString(`

Instructions:
Create a study guide from these notes:
1. Detect the language of the notes and respond entirely in that language. Report it as a BCP-47 code.
2. Write a structured summary covering every major topic. Use '## ' headings to separate sections. Do not add material that is not in the notes.
3. Pick exactly 10 key vocabulary terms and define each in one or two sentences.
4. Write exactly 10 multiple-choice questions with 4 options each: the first 3 easy, the next 4 medium, the last 3 hard. Every question must be answerable from the notes alone.
5. Provide a one-sentence audio instruction describing the tone and accent a narrator should use for this material.`)

	return b.String()
}
