package guide

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nishant/lectern/internal/llm"
)

// Service generates study guides from raw lecture notes.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a guide generation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Generate produces a StudyGuide for the given notes. sourceName is the
// uploaded file name, or empty for pasted text. The response must parse
// and satisfy the schema and structural invariants; anything else fails
// with *llm.ErrInvalidResponse and is never retried.
func (s *Service) Generate(ctx context.Context, notes, sourceName string) (*StudyGuide, error) {
	ctx = llm.WithPurpose(ctx, "study-guide")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(notes, sourceName)},
		},
		Schema:      StudyGuideSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("guide generation: %w", err)
	}

	var g StudyGuide
	if err := json.Unmarshal(resp.Content, &g); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("parse guide response: %w", err),
		}
	}

	if err := g.check(); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     err,
		}
	}

	return &g, nil
}

// check enforces the structural invariants the schema alone cannot:
// fixed cardinalities and answer indices within option bounds.
func (g *StudyGuide) check() error {
	if g.Title == "" {
		return fmt.Errorf("missing title")
	}
	if g.Summary == "" {
		return fmt.Errorf("missing summary")
	}
	if len(g.Vocabulary) != VocabularyCount {
		return fmt.Errorf("expected %d vocabulary entries, got %d", VocabularyCount, len(g.Vocabulary))
	}
	if len(g.Quiz) != QuizCount {
		return fmt.Errorf("expected %d quiz items, got %d", QuizCount, len(g.Quiz))
	}
	for i, q := range g.Quiz {
		if len(q.Options) == 0 {
			return fmt.Errorf("quiz item %d has no options", i)
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			return fmt.Errorf("quiz item %d answer index %d out of range [0,%d)", i, q.AnswerIndex, len(q.Options))
		}
	}
	return nil
}
