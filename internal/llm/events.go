package llm

import (
	"context"
	"time"
)

// LLMRequestEventData captures one synthesis service call for the
// observability log.
type LLMRequestEventData struct {
	Model        string
	Purpose      string
	Kind         string // "generate", "stream", "speech"
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMEvent is one stored synthesis call event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides access to the synthesis call event log.
type EventRepo interface {
	// AppendLLMRequest records a synthesis service call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentLLMRequests returns the newest events, most recent first.
	RecentLLMRequests(ctx context.Context, limit int) ([]*LLMEvent, error)
}
