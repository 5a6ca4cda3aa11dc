package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nishant/lectern/internal/chat"
	"github.com/nishant/lectern/internal/guide"
	"github.com/nishant/lectern/internal/llm"
	"github.com/nishant/lectern/internal/playback"
	"github.com/nishant/lectern/internal/store"
)

// chatFallback replaces a model turn whose stream failed.
const chatFallback = "Sorry, I couldn't answer that. Please ask again."

// Orchestrator is the top-level state machine coordinating submission,
// generation, playback prefetch, chat turns, and persistence. It
// exclusively owns the in-memory chat log and the active session record;
// the store is its write-through collaborator.
type Orchestrator struct {
	guides   *guide.Service
	chats    *chat.Service
	engine   *playback.Engine
	sessions store.SessionRepo

	notify func(Event)

	mu            sync.Mutex
	phase         Phase
	errMsg        string
	current       *store.SessionRecord
	notes         string
	sourceName    string
	chatInFlight  bool
	premiumLocked bool
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(guides *guide.Service, chats *chat.Service, engine *playback.Engine, sessions store.SessionRepo) *Orchestrator {
	return &Orchestrator{
		guides:   guides,
		chats:    chats,
		engine:   engine,
		sessions: sessions,
		notify:   func(Event) {},
		phase:    PhaseIdle,
	}
}

// SetListener registers the event callback. Must be called before any
// operation runs.
func (o *Orchestrator) SetListener(fn func(Event)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if fn == nil {
		fn = func(Event) {}
	}
	o.notify = fn
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// ErrMessage returns the user-facing message for PhaseError.
func (o *Orchestrator) ErrMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}

// Guide returns the active study guide, or nil outside PhaseSuccess.
func (o *Orchestrator) Guide() *guide.StudyGuide {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return nil
	}
	g := o.current.Guide
	return &g
}

// CurrentID returns the active session id, or empty.
func (o *Orchestrator) CurrentID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return ""
	}
	return o.current.ID
}

// ChatLog returns a copy of the chat log.
func (o *Orchestrator) ChatLog() []chat.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return nil
	}
	out := make([]chat.Turn, len(o.current.Chat))
	copy(out, o.current.Chat)
	return out
}

// Input returns the preserved submission input (notes, source name).
func (o *Orchestrator) Input() (string, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.notes, o.sourceName
}

// PremiumLocked reports whether premium narration is disabled for the
// current guide after quota detection.
func (o *Orchestrator) PremiumLocked() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.premiumLocked
}

// Submit generates a study guide from the given notes. Empty input is a
// no-op: no transition, no network call. On success a new session is
// persisted and audio prefetch starts in the background; on failure the
// input survives so the user can retry.
func (o *Orchestrator) Submit(ctx context.Context, notes, sourceName string) error {
	if strings.TrimSpace(notes) == "" {
		return nil
	}

	o.mu.Lock()
	if o.phase == PhaseLoading {
		o.mu.Unlock()
		return nil
	}
	o.resetLocked()
	o.notes = notes
	o.sourceName = sourceName
	o.phase = PhaseLoading
	o.mu.Unlock()
	o.notify(Event{Kind: EventPhaseChanged, Phase: PhaseLoading})

	g, err := o.guides.Generate(ctx, notes, sourceName)
	if err != nil {
		o.mu.Lock()
		o.phase = PhaseError
		o.errMsg = submitErrorMessage(err)
		o.mu.Unlock()
		o.notify(Event{Kind: EventPhaseChanged, Phase: PhaseError, Err: err})
		return err
	}

	rec := &store.SessionRecord{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		SourceName: sourceName,
		Title:      g.Title,
		Notes:      notes,
		Guide:      *g,
		Chat:       []chat.Turn{},
	}

	o.mu.Lock()
	o.current = rec
	o.phase = PhaseSuccess
	o.mu.Unlock()

	o.engine.SetDocument(g.Summary, g.LanguageCode, g.AudioInstruction)

	// Persistence is best-effort: the generated guide is still usable
	// this session even if the save fails.
	_ = o.sessions.Save(ctx, rec)

	o.notify(Event{Kind: EventPhaseChanged, Phase: PhaseSuccess})
	o.notify(Event{Kind: EventSessionsChanged})

	go o.prefetchAudio(rec.ID)

	return nil
}

// LoadSession restores a persisted session: same reset behavior as
// Submit, but the guide/chat/notes come from the store and prefetch is
// re-triggered.
func (o *Orchestrator) LoadSession(ctx context.Context, id string) error {
	rec, err := o.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("session %s not found", id)
	}

	o.mu.Lock()
	o.resetLocked()
	o.current = rec
	o.notes = rec.Notes
	o.sourceName = rec.SourceName
	o.phase = PhaseSuccess
	o.mu.Unlock()

	o.engine.SetDocument(rec.Guide.Summary, rec.Guide.LanguageCode, rec.Guide.AudioInstruction)

	o.notify(Event{Kind: EventPhaseChanged, Phase: PhaseSuccess})

	go o.prefetchAudio(rec.ID)

	return nil
}

// resetLocked clears prior chat, playback, and error state. The engine's
// cached buffer is discarded by the SetDocument that follows generation.
func (o *Orchestrator) resetLocked() {
	o.current = nil
	o.errMsg = ""
	o.chatInFlight = false
	o.premiumLocked = false
	o.engine.StopAll()
}

// prefetchAudio is fire-and-forget: failures are swallowed except quota
// detection, which locks premium narration for this guide.
func (o *Orchestrator) prefetchAudio(sessionID string) {
	err := o.engine.Prefetch(context.Background())
	if err == nil {
		return
	}
	if !playback.IsPremiumUnavailable(err) {
		return
	}
	o.mu.Lock()
	stale := o.current == nil || o.current.ID != sessionID
	if !stale {
		o.premiumLocked = true
	}
	o.mu.Unlock()
	if !stale {
		o.notify(Event{Kind: EventPremiumLocked, Err: err})
	}
}

// SendChat runs one tutoring exchange: append the user turn, stream the
// answer into a growing model turn in arrival order, fall back to an
// apology on stream failure, and persist the log once settled. Blank
// input or an in-flight send is a no-op.
func (o *Orchestrator) SendChat(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	o.mu.Lock()
	if o.phase != PhaseSuccess || o.current == nil || o.chatInFlight {
		o.mu.Unlock()
		return nil
	}
	o.chatInFlight = true
	rec := o.current

	// History snapshot before this exchange; the chat service never
	// sees the live slice.
	history := make([]chat.Turn, len(rec.Chat))
	copy(history, rec.Chat)

	doc := chat.DocumentContext{
		Summary:    rec.Guide.Summary,
		Notes:      rec.Notes,
		SourceName: rec.SourceName,
	}

	rec.Chat = append(rec.Chat, chat.Turn{Role: chat.RoleUser, Content: text})
	o.mu.Unlock()
	o.notify(Event{Kind: EventChatUpdated})

	deltas, err := o.chats.StreamAnswer(ctx, text, history, doc)
	if err != nil {
		o.finishChat(ctx, rec, chat.Turn{Role: chat.RoleModel, Content: chatFallback})
		return err
	}

	// The model turn starts empty and its content grows monotonically,
	// strictly in delta arrival order.
	o.mu.Lock()
	rec.Chat = append(rec.Chat, chat.Turn{Role: chat.RoleModel})
	turnIdx := len(rec.Chat) - 1
	o.mu.Unlock()
	o.notify(Event{Kind: EventChatUpdated})

	var streamErr error
	for delta := range deltas {
		if delta.Err != nil {
			streamErr = delta.Err
			break
		}
		o.mu.Lock()
		rec.Chat[turnIdx].Content += delta.Text
		o.mu.Unlock()
		o.notify(Event{Kind: EventChatUpdated})
	}

	if streamErr != nil {
		o.finishChat(ctx, rec, chat.Turn{Role: chat.RoleModel, Content: chatFallback})
		return streamErr
	}

	o.finishChat(ctx, rec, chat.Turn{})
	return nil
}

// finishChat settles an exchange: installs the fallback turn if one is
// given, persists the log, and clears the in-flight flag.
func (o *Orchestrator) finishChat(ctx context.Context, rec *store.SessionRecord, fallback chat.Turn) {
	o.mu.Lock()
	if fallback.Content != "" {
		// Replace a partial/empty model turn, or append if the stream
		// never opened.
		if n := len(rec.Chat); n > 0 && rec.Chat[n-1].Role == chat.RoleModel {
			rec.Chat[n-1] = fallback
		} else {
			rec.Chat = append(rec.Chat, fallback)
		}
	}
	o.chatInFlight = false
	o.mu.Unlock()

	if err := o.sessions.Save(ctx, rec); err == nil {
		o.notify(Event{Kind: EventChatSettled})
	} else {
		o.notify(Event{Kind: EventChatSettled, Err: err})
	}
	o.notify(Event{Kind: EventChatUpdated})
}

// ListSessions returns all persisted sessions, pinned first.
func (o *Orchestrator) ListSessions(ctx context.Context) ([]*store.SessionRecord, error) {
	return o.sessions.List(ctx)
}

// SetPinned toggles a session's pinned flag, write-through.
func (o *Orchestrator) SetPinned(ctx context.Context, id string, pinned bool) error {
	rec, err := o.sessions.Get(ctx, id)
	if err != nil || rec == nil {
		return err
	}
	rec.Pinned = pinned
	if err := o.sessions.Save(ctx, rec); err != nil {
		return err
	}
	o.syncCurrent(rec)
	o.notify(Event{Kind: EventSessionsChanged})
	return nil
}

// Rename sets a session's title, write-through.
func (o *Orchestrator) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	rec, err := o.sessions.Get(ctx, id)
	if err != nil || rec == nil {
		return err
	}
	rec.Title = title
	if err := o.sessions.Save(ctx, rec); err != nil {
		return err
	}
	o.syncCurrent(rec)
	o.notify(Event{Kind: EventSessionsChanged})
	return nil
}

// DeleteSession removes a session. Deleting the active session resets
// the orchestrator to Idle and stops playback.
func (o *Orchestrator) DeleteSession(ctx context.Context, id string) error {
	if err := o.sessions.Delete(ctx, id); err != nil {
		return err
	}

	o.mu.Lock()
	wasActive := o.current != nil && o.current.ID == id
	if wasActive {
		o.resetLocked()
		o.notes = ""
		o.sourceName = ""
		o.phase = PhaseIdle
	}
	o.mu.Unlock()

	if wasActive {
		o.notify(Event{Kind: EventPhaseChanged, Phase: PhaseIdle})
	}
	o.notify(Event{Kind: EventSessionsChanged})
	return nil
}

// syncCurrent refreshes the in-memory record after an external mutation
// of the same session.
func (o *Orchestrator) syncCurrent(rec *store.SessionRecord) {
	o.mu.Lock()
	if o.current != nil && o.current.ID == rec.ID {
		o.current.Pinned = rec.Pinned
		o.current.Title = rec.Title
	}
	o.mu.Unlock()
}

// submitErrorMessage maps a generation failure to a user-facing line.
func submitErrorMessage(err error) string {
	var rateLimit *llm.ErrRateLimit
	var exhausted *llm.ErrMaxRetriesExceeded
	switch {
	case errors.As(err, &exhausted), errors.As(err, &rateLimit):
		return "The AI service is busy right now. Please try again in a moment."
	default:
		return "Couldn't process the notes. Please try again."
	}
}
