package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		InitialWait: 1 * time.Millisecond,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TwoRateLimitsThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls (2 failures + 1 success), got %d", mock.CallCount())
	}
}

func TestRetry_BudgetExhausted(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var exhausted *ErrMaxRetriesExceeded
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ErrMaxRetriesExceeded, got %T: %v", err, err)
	}
	if exhausted.Attempts != 4 {
		t.Fatalf("expected 4 attempts recorded, got %d", exhausted.Attempts)
	}
	if mock.CallCount() != 4 {
		t.Fatalf("expected 4 calls (1 initial + 3 retries), got %d", mock.CallCount())
	}
}

func TestRetry_DelayDoublesEachRetry(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)

	var delays []time.Duration
	cfg := retryConfig()
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		delays = append(delays, delay)
	}
	p := WithRetry(mock, cfg)

	_, _ = p.Generate(context.Background(), Request{})

	want := []time.Duration{1 * time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d retry events, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("retry %d: expected delay %v, got %v", i+1, want[i], delays[i])
		}
	}
}

func TestRetry_NonRateLimitNotRetried(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"invalid response", &ErrInvalidResponse{Err: errors.New("bad json")}},
		{"provider unavailable", &ErrProviderUnavailable{Err: errors.New("down")}},
		{"max tokens", &ErrMaxTokensExceeded{}},
		{"plain error", errors.New("boom")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tc.err})
			p := WithRetry(mock, retryConfig())

			_, err := p.Generate(context.Background(), Request{})
			if err == nil {
				t.Fatal("expected error")
			}
			var exhausted *ErrMaxRetriesExceeded
			if errors.As(err, &exhausted) {
				t.Fatal("non-rate-limit failure must not consume the retry budget")
			}
			if mock.CallCount() != 1 {
				t.Fatalf("expected 1 call, got %d", mock.CallCount())
			}
		})
	}
}

func TestRetry_SynthesizeRetriesRateLimit(t *testing.T) {
	mock := NewMockProvider()
	mock.AddSpeech(MockSpeech{Err: &ErrRateLimit{Err: errors.New("quota")}})
	mock.AddSpeech(MockSpeech{PCM: []byte{1, 2, 3}})
	p := WithRetry(mock, retryConfig())

	resp, err := p.Synthesize(context.Background(), SpeechRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.PCM) != 3 {
		t.Fatalf("unexpected PCM: %v", resp.PCM)
	}
	if len(mock.SpeechCalls) != 2 {
		t.Fatalf("expected 2 speech calls, got %d", len(mock.SpeechCalls))
	}
}

func TestRetry_ContextCancelAbortsWait(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	cfg := RetryConfig{MaxRetries: 3, InitialWait: 1 * time.Hour}
	p := WithRetry(mock, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.CallCount())
	}
}

func TestRetry_StreamPassesThrough(t *testing.T) {
	mock := NewMockProvider()
	mock.AddStream(MockStream{Deltas: []string{"a", "b"}})
	p := WithRetry(mock, retryConfig())

	ch, err := p.Stream(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got string
	for d := range ch {
		got += d.Text
	}
	if got != "ab" {
		t.Fatalf("unexpected stream output: %q", got)
	}
}
