package llm

import (
	"context"
	"fmt"
	"os"
	"time"
)

// LoggingProvider is a decorator that records every synthesis call as an
// event row. Logging failures never fail the request.
type LoggingProvider struct {
	inner     Provider
	eventRepo EventRepo
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo EventRepo) *LoggingProvider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := LLMRequestEventData{
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		Kind:      "generate",
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	l.append(ctx, data)

	return resp, err
}

// Stream logs once the stream settles, so the event carries the full
// latency and outcome rather than just connection setup.
func (l *LoggingProvider) Stream(ctx context.Context, req Request) (<-chan StreamDelta, error) {
	start := time.Now()
	inner, err := l.inner.Stream(ctx, req)
	if err != nil {
		l.append(ctx, LLMRequestEventData{
			Model:        l.inner.ModelID(),
			Purpose:      PurposeFrom(ctx),
			Kind:         "stream",
			LatencyMs:    time.Since(start).Milliseconds(),
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return nil, err
	}

	out := make(chan StreamDelta)
	go func() {
		defer close(out)
		var streamErr error
		chars := 0
		for delta := range inner {
			if delta.Err != nil {
				streamErr = delta.Err
			}
			chars += len(delta.Text)
			out <- delta
		}
		data := LLMRequestEventData{
			Model:        l.inner.ModelID(),
			Purpose:      PurposeFrom(ctx),
			Kind:         "stream",
			OutputTokens: chars / 4, // rough estimate; streams carry no usage metadata
			LatencyMs:    time.Since(start).Milliseconds(),
			Success:      streamErr == nil,
		}
		if streamErr != nil {
			data.ErrorMessage = streamErr.Error()
		}
		l.append(ctx, data)
	}()
	return out, nil
}

func (l *LoggingProvider) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResponse, error) {
	start := time.Now()
	resp, err := l.inner.Synthesize(ctx, req)

	data := LLMRequestEventData{
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		Kind:      "speech",
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	l.append(ctx, data)

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) append(ctx context.Context, data LLMRequestEventData) {
	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log synthesis event: %v\n", logErr)
	}
}
