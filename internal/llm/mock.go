package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned Generate response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockStream is a canned Stream response: deltas delivered in order,
// optionally terminated by Err.
type MockStream struct {
	Deltas []string
	Err    error
}

// MockSpeech is a canned Synthesize response.
type MockSpeech struct {
	PCM        []byte
	SampleRate int
	Err        error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order per operation and records
// all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	streams   []MockStream
	speeches  []MockSpeech

	Calls       []Request
	StreamCalls []Request
	SpeechCalls []SpeechRequest
}

// NewMockProvider creates a MockProvider with the given canned
// Generate responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// Stream replays the next canned stream over a channel.
func (m *MockProvider) Stream(_ context.Context, req Request) (<-chan StreamDelta, error) {
	m.mu.Lock()
	m.StreamCalls = append(m.StreamCalls, req)
	if len(m.streams) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{Err: nil}
	}
	s := m.streams[0]
	m.streams = m.streams[1:]
	m.mu.Unlock()

	ch := make(chan StreamDelta)
	go func() {
		defer close(ch)
		for _, d := range s.Deltas {
			ch <- StreamDelta{Text: d}
		}
		if s.Err != nil {
			ch <- StreamDelta{Err: s.Err}
		}
	}()
	return ch, nil
}

// Synthesize returns the next canned speech response.
func (m *MockProvider) Synthesize(_ context.Context, req SpeechRequest) (*SpeechResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SpeechCalls = append(m.SpeechCalls, req)

	if len(m.speeches) == 0 {
		return nil, &ErrSpeechUnsupported{Provider: "mock"}
	}

	s := m.speeches[0]
	m.speeches = m.speeches[1:]

	if s.Err != nil {
		return nil, s.Err
	}

	rate := s.SampleRate
	if rate == 0 {
		rate = 24000
	}
	return &SpeechResponse{PCM: s.PCM, SampleRate: rate}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned Generate response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// AddStream appends a canned stream to the queue.
func (m *MockProvider) AddStream(s MockStream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams = append(m.streams, s)
}

// AddSpeech appends a canned speech response to the queue.
func (m *MockProvider) AddSpeech(s MockSpeech) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speeches = append(m.speeches, s)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
