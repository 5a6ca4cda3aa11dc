package guide

import "github.com/nishant/lectern/internal/llm"

// StudyGuideSchema defines the JSON schema for study guide generation.
var StudyGuideSchema = &llm.Schema{
	Name:        "study-guide",
	Description: "A structured study guide with summary, vocabulary, and quiz generated from lecture notes",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short descriptive title for the study guide (3-8 words), in the language of the notes",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "Structured multi-paragraph summary of the notes. Use '## ' section headings for major topics.",
			},
			"language_code": map[string]any{
				"type":        "string",
				"description": "BCP-47 code of the detected language of the notes, e.g. 'en-US' or 'de-DE'",
			},
			"audio_instruction": map[string]any{
				"type":        "string",
				"description": "One-sentence tone and accent directive for reading the summary aloud, matching the detected language",
			},
			"vocabulary": map[string]any{
				"type":        "array",
				"description": "Exactly 10 key terms from the notes with concise definitions",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"word":       map[string]any{"type": "string"},
						"definition": map[string]any{"type": "string"},
					},
					"required":             []any{"word", "definition"},
					"additionalProperties": false,
				},
			},
			"quiz": map[string]any{
				"type":        "array",
				"description": "Exactly 10 multiple-choice questions: 3 easy, 4 medium, 3 hard, in that order",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer options",
						},
						"answer_index": map[string]any{
							"type":        "integer",
							"description": "Zero-based index of the correct option",
						},
					},
					"required":             []any{"question", "options", "answer_index"},
					"additionalProperties": false,
				},
			},
		},
		"required": []any{
			"title", "summary", "language_code", "audio_instruction",
			"vocabulary", "quiz",
		},
		"additionalProperties": false,
	},
}
