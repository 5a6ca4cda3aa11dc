package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nishant/lectern/internal/llm"
)

func testDoc() DocumentContext {
	return DocumentContext{
		Summary:    "Plants convert light into chemical energy.",
		Notes:      "Chloroplasts contain chlorophyll.",
		SourceName: "bio.txt",
	}
}

func TestStreamAnswer_DeltasArriveInOrder(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddStream(llm.MockStream{Deltas: []string{"Hel", "lo ", "world"}})
	svc := NewService(mock, DefaultConfig())

	deltas, err := svc.StreamAnswer(context.Background(), "what is a chloroplast?", nil, testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var assembled string
	prev := ""
	for d := range deltas {
		if d.Err != nil {
			t.Fatalf("unexpected stream error: %v", d.Err)
		}
		assembled += d.Text
		if !strings.HasPrefix(assembled, prev) {
			t.Fatalf("assembly went backwards: %q then %q", prev, assembled)
		}
		prev = assembled
	}
	if assembled != "Hello world" {
		t.Fatalf("unexpected assembled answer: %q", assembled)
	}
}

func TestStreamAnswer_FirstTurnEmbedsNotes(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddStream(llm.MockStream{Deltas: []string{"ok"}})
	svc := NewService(mock, DefaultConfig())

	deltas, err := svc.StreamAnswer(context.Background(), "hi", nil, testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range deltas {
	}

	system := mock.StreamCalls[0].System
	for _, want := range []string{
		"Plants convert light into chemical energy.",
		"Chloroplasts contain chlorophyll.",
		"bio.txt",
	} {
		if !strings.Contains(system, want) {
			t.Fatalf("first-turn system prompt missing %q:\n%s", want, system)
		}
	}
}

func TestStreamAnswer_LaterTurnsOmitNotes(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddStream(llm.MockStream{Deltas: []string{"ok"}})
	svc := NewService(mock, DefaultConfig())

	history := []Turn{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleModel, Content: "hello"},
	}
	deltas, err := svc.StreamAnswer(context.Background(), "more", history, testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range deltas {
	}

	req := mock.StreamCalls[0]
	if strings.Contains(req.System, "Chloroplasts contain chlorophyll.") {
		t.Fatal("notes must not be re-sent after the first turn")
	}
	if !strings.Contains(req.System, "Plants convert light into chemical energy.") {
		t.Fatal("summary should stay pinned on every turn")
	}
	if len(req.Messages) != 3 {
		t.Fatalf("expected 2 history turns + question, got %d messages", len(req.Messages))
	}
	if req.Messages[1].Role != llm.RoleAssistant {
		t.Fatalf("model turn should map to the assistant role, got %q", req.Messages[1].Role)
	}
	if req.Messages[2].Content != "more" {
		t.Fatalf("question should be the final message, got %q", req.Messages[2].Content)
	}
}

func TestStreamAnswer_HistoryNotMutated(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: []byte(`{"digest": "older stuff"}`)},
	)
	mock.AddStream(llm.MockStream{Deltas: []string{"ok"}})
	svc := NewService(mock, DefaultConfig())

	history := makeHistory(14)
	snapshot := make([]Turn, len(history))
	copy(snapshot, history)

	deltas, err := svc.StreamAnswer(context.Background(), "q", history, testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range deltas {
	}

	for i := range snapshot {
		if history[i] != snapshot[i] {
			t.Fatalf("history turn %d mutated: %+v", i, history[i])
		}
	}

	system := mock.StreamCalls[0].System
	if !strings.Contains(system, "older stuff") {
		t.Fatalf("digest missing from system prompt:\n%s", system)
	}
}

func TestStreamAnswer_CompactionFailureAbortsStream(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
	)
	svc := NewService(mock, DefaultConfig())

	_, err := svc.StreamAnswer(context.Background(), "q", makeHistory(12), testDoc())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(mock.StreamCalls) != 0 {
		t.Fatal("stream must not start when compaction fails")
	}
}

func TestStreamAnswer_StreamErrorDelivered(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddStream(llm.MockStream{
		Deltas: []string{"partial"},
		Err:    &llm.ErrProviderUnavailable{Err: errors.New("cut off")},
	})
	svc := NewService(mock, DefaultConfig())

	deltas, err := svc.StreamAnswer(context.Background(), "q", nil, testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var last llm.StreamDelta
	for d := range deltas {
		last = d
	}
	if last.Err == nil {
		t.Fatal("expected the terminal delta to carry the stream error")
	}
}
