package store

import (
	"context"
	"time"

	"github.com/nishant/lectern/internal/chat"
	"github.com/nishant/lectern/internal/guide"
)

// SessionRecord is the persisted envelope for one study session.
type SessionRecord struct {
	ID         string
	CreatedAt  time.Time
	SourceName string
	Title      string
	Pinned     bool
	Notes      string
	Guide      guide.StudyGuide
	Chat       []chat.Turn
}

// SessionRepo persists study sessions. Every mutation writes the whole
// record back (write-through); readers always see a complete envelope.
type SessionRepo interface {
	// Save inserts or replaces the record.
	Save(ctx context.Context, rec *SessionRecord) error

	// List returns all sessions, pinned first, then newest first.
	List(ctx context.Context) ([]*SessionRecord, error)

	// Get returns the session with the given id, or nil if absent.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	// Delete removes the session with the given id. Deleting an absent
	// id is not an error.
	Delete(ctx context.Context, id string) error
}
