package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the service returned content that does not
// conform to the requested schema, or an empty payload.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid synthesis response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis provider unavailable: %v", e.Err)
	}
	return "synthesis provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "synthesis response truncated: max tokens exceeded"
}

// ErrSpeechUnsupported indicates the configured provider has no audio
// modality. Callers treat this as "premium voice unavailable" and fall
// back to the local reader.
type ErrSpeechUnsupported struct {
	Provider string
}

func (e *ErrSpeechUnsupported) Error() string {
	return fmt.Sprintf("provider %s does not support speech synthesis", e.Provider)
}

// ErrMaxRetriesExceeded is the terminal error raised when the retry
// budget for rate-limited calls is exhausted.
type ErrMaxRetriesExceeded struct {
	Attempts int
	Err      error
}

func (e *ErrMaxRetriesExceeded) Error() string {
	return fmt.Sprintf("max retries exceeded after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ErrMaxRetriesExceeded) Unwrap() error { return e.Err }
