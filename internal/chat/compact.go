package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nishant/lectern/internal/llm"
)

// RecentWindow is the number of most-recent turns passed through
// uncompacted with every chat request.
const RecentWindow = 10

// Compactor bounds the context size of chat requests. Histories longer
// than RecentWindow get their older turns reduced to a short digest via
// a low-temperature summarization call.
type Compactor struct {
	provider llm.Provider
	cfg      CompactorConfig
}

// NewCompactor creates a history compactor.
func NewCompactor(provider llm.Provider, cfg CompactorConfig) *Compactor {
	return &Compactor{provider: provider, cfg: cfg}
}

// Compact returns the most recent RecentWindow turns unchanged plus a
// digest of everything older. Histories at or under the window pass
// through whole with an empty digest. A failed summarization propagates:
// dropping context silently is worse than failing the chat turn.
func (c *Compactor) Compact(ctx context.Context, history []Turn) ([]Turn, string, error) {
	if len(history) <= RecentWindow {
		return history, "", nil
	}

	older := history[:len(history)-RecentWindow]
	recent := history[len(history)-RecentWindow:]

	digest, err := c.summarize(ctx, older)
	if err != nil {
		return nil, "", fmt.Errorf("history compaction: %w", err)
	}

	return recent, digest, nil
}

type digestOutput struct {
	Digest string `json:"digest"`
}

// digestSchema defines the JSON schema for the history digest.
var digestSchema = &llm.Schema{
	Name:        "history-digest",
	Description: "Compressed digest of older tutoring conversation turns",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"digest": map[string]any{
				"type":        "string",
				"description": "3-5 sentence digest of the conversation so far",
			},
		},
		"required":             []any{"digest"},
		"additionalProperties": false,
	},
}

func (c *Compactor) summarize(ctx context.Context, older []Turn) (string, error) {
	ctx = llm.WithPurpose(ctx, "history-digest")

	req := llm.Request{
		System: digestSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildDigestUserMessage(older)},
		},
		Schema:      digestSchema,
		MaxTokens:   c.cfg.DigestMaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	var out digestOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse digest response: %w", err)
	}
	if out.Digest == "" {
		return "", fmt.Errorf("empty digest")
	}

	return out.Digest, nil
}
