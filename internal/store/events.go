package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nishant/lectern/internal/llm"
)

// eventRepo implements llm.EventRepo on raw SQL.
type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data llm.LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_events
			(created_at, model, purpose, kind, input_tokens, output_tokens, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UnixMilli(), data.Model, data.Purpose, data.Kind,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		boolToInt(data.Success), data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("append llm event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentLLMRequests(ctx context.Context, limit int) ([]*llm.LLMEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, model, purpose, kind, input_tokens, output_tokens, latency_ms, success, error_message
		FROM llm_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*llm.LLMEvent
	for rows.Next() {
		var ev llm.LLMEvent
		var createdAt int64
		var success int
		if err := rows.Scan(&ev.ID, &createdAt, &ev.Model, &ev.Purpose, &ev.Kind,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &success, &ev.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		ev.Timestamp = time.UnixMilli(createdAt)
		ev.Success = success != 0
		events = append(events, &ev)
	}
	return events, rows.Err()
}
