package chat

import (
	"context"
	"fmt"

	"github.com/nishant/lectern/internal/llm"
)

// Service answers follow-up questions about a study guide as a stream of
// text deltas.
type Service struct {
	provider  llm.Provider
	compactor *Compactor
	cfg       Config
}

// NewService creates a chat service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{
		provider:  provider,
		compactor: NewCompactor(provider, cfg.Compactor),
		cfg:       cfg,
	}
}

// StreamAnswer sends question with the compacted history and returns an
// ordered channel of text deltas. history is the log before the new
// question and is never mutated. The stream cannot be resumed: on
// failure the caller retries from scratch.
func (s *Service) StreamAnswer(ctx context.Context, question string, history []Turn, doc DocumentContext) (<-chan llm.StreamDelta, error) {
	window, digest, err := s.compactor.Compact(ctx, history)
	if err != nil {
		return nil, err
	}

	ctx = llm.WithPurpose(ctx, "chat")

	messages := make([]llm.Message, 0, len(window)+1)
	for _, t := range window {
		role := llm.RoleUser
		if t.Role == RoleModel {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	req := llm.Request{
		System:      buildAnswerSystem(doc, digest, len(history) == 0),
		Messages:    messages,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	deltas, err := s.provider.Stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat stream: %w", err)
	}
	return deltas, nil
}
