package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nishant/lectern/internal/chat"
)

// sessionRepo implements SessionRepo on raw SQL.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Save(ctx context.Context, rec *SessionRecord) error {
	guideJSON, err := json.Marshal(rec.Guide)
	if err != nil {
		return fmt.Errorf("marshal guide: %w", err)
	}
	chatLog := rec.Chat
	if chatLog == nil {
		chatLog = []chat.Turn{}
	}
	chatJSON, err := json.Marshal(chatLog)
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, source_name, title, pinned, notes, guide, chat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_name = excluded.source_name,
			title       = excluded.title,
			pinned      = excluded.pinned,
			notes       = excluded.notes,
			guide       = excluded.guide,
			chat        = excluded.chat`,
		rec.ID, rec.CreatedAt.UnixMilli(), rec.SourceName, rec.Title,
		boolToInt(rec.Pinned), rec.Notes, string(guideJSON), string(chatJSON),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) List(ctx context.Context) ([]*SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, source_name, title, pinned, notes, guide, chat
		FROM sessions
		ORDER BY pinned DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, source_name, title, pinned, notes, guide, chat
		FROM sessions WHERE id = ?`, id)

	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var (
		rec       SessionRecord
		createdAt int64
		pinned    int
		guideJSON string
		chatJSON  string
	)
	err := row.Scan(&rec.ID, &createdAt, &rec.SourceName, &rec.Title,
		&pinned, &rec.Notes, &guideJSON, &chatJSON)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt = time.UnixMilli(createdAt)
	rec.Pinned = pinned != 0

	// Older records may lack fields the current guide shape has; missing
	// fields stay zero-valued rather than failing the load.
	if err := json.Unmarshal([]byte(guideJSON), &rec.Guide); err != nil {
		return nil, fmt.Errorf("parse guide for session %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(chatJSON), &rec.Chat); err != nil {
		return nil, fmt.Errorf("parse chat for session %s: %w", rec.ID, err)
	}
	if rec.Chat == nil {
		rec.Chat = []chat.Turn{}
	}

	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
