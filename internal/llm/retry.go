package llm

import (
	"context"
	"errors"
	"time"
)

// RetryProvider is a decorator that retries rate-limited calls with
// exponential backoff. Any other failure class propagates immediately:
// malformed output rarely improves on a retry, and retrying it would
// mask prompt bugs.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with bounded retry on rate limits.
func WithRetry(p Provider, cfg RetryConfig) *RetryProvider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := r.execute(ctx, func() error {
		var innerErr error
		resp, innerErr = r.inner.Generate(ctx, req)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Stream is not retried: a restarted stream would duplicate the partial
// output already delivered to the caller.
func (r *RetryProvider) Stream(ctx context.Context, req Request) (<-chan StreamDelta, error) {
	return r.inner.Stream(ctx, req)
}

func (r *RetryProvider) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResponse, error) {
	var resp *SpeechResponse
	err := r.execute(ctx, func() error {
		var innerErr error
		resp, innerErr = r.inner.Synthesize(ctx, req)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// execute runs op, retrying rate-limit failures with delays of
// InitialWait, 2×InitialWait, 4×InitialWait, ... up to MaxRetries
// additional attempts. Exhausting the budget returns
// *ErrMaxRetriesExceeded wrapping the last rate-limit error.
func (r *RetryProvider) execute(ctx context.Context, op func() error) error {
	delay := r.config.InitialWait

	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			return err
		}

		if attempt == r.config.MaxRetries {
			break
		}

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt+1, delay, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return &ErrMaxRetriesExceeded{Attempts: r.config.MaxRetries + 1, Err: lastErr}
}
