package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for the content synthesis service.
// Consumers call Generate with a Request and receive structured JSON.
type Provider interface {
	// Generate sends a prompt to the service and returns a structured
	// response. The request's Schema field, when set, instructs the
	// provider to return JSON conforming to that schema. The response
	// Content will be the validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Stream sends a chat request and returns an ordered channel of
	// incremental text deltas. The channel is closed when the stream
	// ends; a delta carrying a non-nil Err terminates the stream.
	// Streams are never resumed mid-flight — a failed stream must be
	// retried from scratch by the caller.
	Stream(ctx context.Context, req Request) (<-chan StreamDelta, error)

	// Synthesize converts text to speech and returns raw PCM audio.
	// Providers without an audio modality return *ErrSpeechUnsupported,
	// which callers interpret as "premium voice unavailable".
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResponse, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the synthesis service.
type Request struct {
	// System is the system prompt. Sets the service's role and constraints.
	System string

	// Messages is the conversation history. For single-turn generation
	// this contains one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	// When nil, the response Content is raw text as json.RawMessage.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the service.
type Schema struct {
	// Name identifies this schema (used as schema name for OpenAI,
	// output format for Anthropic). Kebab-case, e.g. "study-guide".
	Name string

	// Description is a human-readable description of what this schema
	// represents. Sent to the service to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the service's output.
type Response struct {
	// Content is the generated output. When a Schema was provided in the
	// request, this is the validated JSON object. When no Schema was
	// provided, this is the raw text response.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// StreamDelta is one increment of a streamed chat response.
// Deltas arrive strictly in order; Err is set on the final delta when the
// stream terminated abnormally.
type StreamDelta struct {
	Text string
	Err  error
}

// SpeechRequest describes a text-to-speech synthesis request.
type SpeechRequest struct {
	// Text is the plain text to speak.
	Text string

	// Instruction is a free-text tone/accent directive, e.g.
	// "Speak warmly, like a patient teacher".
	Instruction string

	// Voice selects the synthetic voice. Empty means provider default.
	Voice string
}

// SpeechResponse holds synthesized audio.
type SpeechResponse struct {
	// PCM is raw signed 16-bit little-endian mono audio.
	PCM []byte

	// SampleRate is the sample rate of PCM in Hz (typically 24000).
	SampleRate int
}
