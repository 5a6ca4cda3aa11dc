package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nishant/lectern/internal/llm"
)

// Mode identifies which playback path is active.
type Mode int

const (
	ModeNone Mode = iota
	ModePremium
	ModeActiveReader
)

func (m Mode) String() string {
	switch m {
	case ModePremium:
		return "premium"
	case ModeActiveReader:
		return "activeReader"
	default:
		return "none"
	}
}

// State is the playback position within the active mode.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// EventKind classifies engine notifications.
type EventKind int

const (
	// EventStateChanged reports a (Mode, State) transition.
	EventStateChanged EventKind = iota

	// EventHighlight reports a new active word index.
	EventHighlight

	// EventPremiumUnavailable reports that premium narration cannot be
	// served for this document (quota, no audio modality, no device).
	EventPremiumUnavailable

	// EventError reports a non-cancellation playback failure. The
	// engine has already returned to (none, idle).
	EventError
)

// Event is a notification from the engine. Callbacks from the audio
// device enter the engine, change state under the lock, and leave as
// Events — the state machine stays the single source of truth.
type Event struct {
	Kind      EventKind
	Mode      Mode
	State     State
	Highlight int
	Err       error
}

// Synthesizer is the slice of the synthesis client the engine needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, req llm.SpeechRequest) (*llm.SpeechResponse, error)
}

// Engine is the dual-mode playback controller. At most one mode is ever
// in {playing, paused}; starting one mode synchronously stops the other
// before any asynchronous work for the new mode begins.
//
// The engine owns the cached audio buffer and the played-offset counter
// exclusively. In-flight synthesis is tagged with an epoch and audio
// source end callbacks with a source generation; results arriving after
// their counter moved on are discarded. The two counters are separate
// so pausing a source does not invalidate a concurrent prefetch.
type Engine struct {
	synth  Synthesizer
	sink   AudioSink
	speech SpeechEngine

	// now is the clock used for offset arithmetic. Tests substitute it.
	now func() time.Time

	notify func(Event)

	mu        sync.Mutex
	mode      Mode
	state     State
	epoch     uint64
	sourceGen uint64
	summary   string
	language  string
	tone      string
	segments  []WordSegment
	highlight int

	buffer       AudioBuffer
	source       AudioSource
	playedOffset time.Duration
	playStart    time.Time
}

// NewEngine creates a playback engine over the given collaborators.
func NewEngine(synth Synthesizer, sink AudioSink, speech SpeechEngine) *Engine {
	return &Engine{
		synth:     synth,
		sink:      sink,
		speech:    speech,
		now:       time.Now,
		notify:    func(Event) {},
		highlight: -1,
	}
}

// SetListener registers the event callback. Must be called before any
// playback starts.
func (e *Engine) SetListener(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn == nil {
		fn = func(Event) {}
	}
	e.notify = fn
}

// SetDocument installs a new summary as the narration source. It stops
// all playback and discards the cached audio buffer — the cache never
// outlives the document it was synthesized from.
func (e *Engine) SetDocument(summary, languageCode, audioInstruction string) {
	e.mu.Lock()
	e.stopAllLocked()
	e.summary = summary
	e.language = languageCode
	e.tone = audioInstruction
	e.segments = ComputeSegments(summary)
	e.buffer = nil
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.notify(ev)
}

// Snapshot returns the current (Mode, State).
func (e *Engine) Snapshot() (Mode, State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode, e.state
}

// Highlight returns the active word segment index, or -1.
func (e *Engine) Highlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.highlight
}

// Segments returns the memoized word segments for the current summary.
func (e *Engine) Segments() []WordSegment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.segments
}

// StopAll cancels whichever mode is active and returns to (none, idle).
// Safe to call at any point, from any state; calling it twice is the
// same as calling it once.
func (e *Engine) StopAll() {
	e.mu.Lock()
	e.stopAllLocked()
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.notify(ev)
}

// stopAllLocked bumps both counters so in-flight work discards itself,
// stops the audio source, cancels device speech, and resets
// offset/highlight. The cached buffer survives; only SetDocument
// discards it.
func (e *Engine) stopAllLocked() {
	e.epoch++
	e.sourceGen++
	if e.source != nil {
		e.source.Stop()
		e.source = nil
	}
	if e.mode == ModeActiveReader {
		e.speech.Cancel()
	}
	e.mode = ModeNone
	e.state = StateIdle
	e.playedOffset = 0
	e.highlight = -1
}

// Prefetch synthesizes and caches the premium audio buffer without
// starting playback. A result arriving after StopAll/SetDocument is
// discarded. The returned error is the raw synthesis/decode failure;
// callers decide whether it means "premium unavailable".
func (e *Engine) Prefetch(ctx context.Context) error {
	e.mu.Lock()
	if e.summary == "" || e.buffer != nil {
		e.mu.Unlock()
		return nil
	}
	epoch := e.epoch
	req := e.speechRequestLocked()
	e.mu.Unlock()

	resp, err := e.synth.Synthesize(ctx, req)
	if err != nil {
		return err
	}

	buf, err := e.sink.Decode(resp.PCM, resp.SampleRate)
	if err != nil {
		return fmt.Errorf("decode prefetched audio: %w", err)
	}

	e.mu.Lock()
	if e.epoch == epoch {
		e.buffer = buf
	}
	e.mu.Unlock()
	return nil
}

// StartPremium plays the synthesized narration. With a cached buffer it
// starts immediately; otherwise it blocks on speech synthesis first.
// Rate-limit and no-audio-modality failures surface as
// EventPremiumUnavailable and leave the engine at (none, idle).
func (e *Engine) StartPremium(ctx context.Context) error {
	e.mu.Lock()
	if e.summary == "" {
		e.mu.Unlock()
		return fmt.Errorf("no summary to narrate")
	}

	// Mutual exclusion is enforced here, synchronously, before any
	// network or device work for the new mode begins.
	if e.mode != ModeNone {
		e.stopAllLocked()
	}
	e.mode = ModePremium
	e.state = StateIdle
	epoch := e.epoch

	if e.buffer != nil {
		err := e.startSourceLocked(0)
		ev := e.stateEventLocked()
		if err != nil {
			ev = e.premiumFailureEventLocked(err)
		}
		e.mu.Unlock()
		e.notify(ev)
		return err
	}

	req := e.speechRequestLocked()
	loadingEv := e.stateEventLocked()
	e.mu.Unlock()
	e.notify(loadingEv)

	resp, synthErr := e.synth.Synthesize(ctx, req)

	e.mu.Lock()
	if e.epoch != epoch {
		// Mode changed while the request was in flight; the result is
		// stale and must not touch playback state.
		e.mu.Unlock()
		return nil
	}

	if synthErr != nil {
		e.stopAllLocked()
		ev := e.premiumFailureEventLocked(synthErr)
		e.mu.Unlock()
		e.notify(ev)
		return synthErr
	}

	buf, decErr := e.sink.Decode(resp.PCM, resp.SampleRate)
	if decErr != nil {
		e.stopAllLocked()
		ev := Event{Kind: EventPremiumUnavailable, Mode: ModeNone, State: StateIdle, Err: decErr}
		e.mu.Unlock()
		e.notify(ev)
		return decErr
	}

	e.buffer = buf
	err := e.startSourceLocked(0)
	ev := e.stateEventLocked()
	if err != nil {
		ev = e.premiumFailureEventLocked(err)
	}
	e.mu.Unlock()
	e.notify(ev)
	return err
}

// PausePremium accumulates elapsed playback into the running offset and
// stops the source without touching the cached buffer.
func (e *Engine) PausePremium() {
	e.mu.Lock()
	if e.mode != ModePremium || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.sourceGen++ // the stopped source's end callback is now stale
	e.playedOffset += e.now().Sub(e.playStart)
	if e.source != nil {
		e.source.Stop()
		e.source = nil
	}
	e.state = StatePaused
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.notify(ev)
}

// ResumePremium restarts the cached buffer at the accumulated offset,
// modulo the buffer duration to guard against drift past the end.
func (e *Engine) ResumePremium() {
	e.mu.Lock()
	if e.mode != ModePremium || e.state != StatePaused || e.buffer == nil {
		e.mu.Unlock()
		return
	}
	offset := e.playedOffset
	if d := e.buffer.Duration(); d > 0 {
		offset = offset % d
	}
	e.playedOffset = offset
	err := e.startSourceLocked(offset)
	ev := e.stateEventLocked()
	if err != nil {
		ev = e.premiumFailureEventLocked(err)
	}
	e.mu.Unlock()
	e.notify(ev)
}

// startSourceLocked begins playback of the cached buffer at offset and
// arms the end-of-playback callback for the current source generation.
func (e *Engine) startSourceLocked(offset time.Duration) error {
	gen := e.sourceGen
	source, err := e.sink.Play(e.buffer, offset, func() {
		e.onPremiumEnd(gen)
	})
	if err != nil {
		e.stopAllLocked()
		return err
	}
	e.source = source
	e.playStart = e.now()
	e.state = StatePlaying
	return nil
}

// onPremiumEnd handles natural end-of-playback from the audio device.
func (e *Engine) onPremiumEnd(gen uint64) {
	e.mu.Lock()
	if e.sourceGen != gen || e.mode != ModePremium {
		e.mu.Unlock()
		return
	}
	e.source = nil
	e.stopAllLocked()
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.notify(ev)
}

// StartActiveReader speaks the summary through the device speech engine
// with word-boundary highlighting.
func (e *Engine) StartActiveReader() error {
	e.mu.Lock()
	if e.summary == "" {
		e.mu.Unlock()
		return fmt.Errorf("no summary to read")
	}

	if e.mode != ModeNone {
		e.stopAllLocked()
	}
	e.mode = ModeActiveReader
	e.state = StatePlaying
	epoch := e.epoch
	text := e.summary
	lang := e.language
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.notify(ev)

	err := e.speech.Speak(text, lang, SpeechCallbacks{
		OnBoundary: func(charIndex int) { e.onBoundary(epoch, charIndex) },
		OnEnd:      func() { e.onReaderEnd(epoch) },
		OnError:    func(err error) { e.onReaderError(epoch, err) },
	})
	if err != nil {
		e.mu.Lock()
		if e.epoch == epoch {
			e.stopAllLocked()
		}
		failEv := Event{Kind: EventError, Mode: ModeNone, State: StateIdle, Err: err}
		e.mu.Unlock()
		e.notify(failEv)
		return err
	}
	return nil
}

// PauseActiveReader is a thin wrapper over the device engine's pause.
func (e *Engine) PauseActiveReader() {
	e.mu.Lock()
	if e.mode != ModeActiveReader || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.state = StatePaused
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.speech.Pause()
	e.notify(ev)
}

// ResumeActiveReader is a thin wrapper over the device engine's resume.
func (e *Engine) ResumeActiveReader() {
	e.mu.Lock()
	if e.mode != ModeActiveReader || e.state != StatePaused {
		e.mu.Unlock()
		return
	}
	e.state = StatePlaying
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.speech.Resume()
	e.notify(ev)
}

// onBoundary resolves a character offset to its containing word segment.
// No match leaves the highlight unchanged.
func (e *Engine) onBoundary(epoch uint64, charIndex int) {
	e.mu.Lock()
	if e.epoch != epoch || e.mode != ModeActiveReader {
		e.mu.Unlock()
		return
	}
	idx := SegmentAt(e.segments, charIndex)
	if idx < 0 {
		e.mu.Unlock()
		return
	}
	e.highlight = idx
	ev := Event{Kind: EventHighlight, Mode: e.mode, State: e.state, Highlight: idx}
	e.mu.Unlock()
	e.notify(ev)
}

func (e *Engine) onReaderEnd(epoch uint64) {
	e.mu.Lock()
	if e.epoch != epoch || e.mode != ModeActiveReader {
		e.mu.Unlock()
		return
	}
	e.stopAllLocked()
	ev := e.stateEventLocked()
	e.mu.Unlock()
	e.notify(ev)
}

// onReaderError suppresses cancellation-class errors; anything else
// resets the engine and reports.
func (e *Engine) onReaderError(epoch uint64, err error) {
	if errors.Is(err, ErrSpeechCanceled) {
		return
	}
	e.mu.Lock()
	if e.epoch != epoch || e.mode != ModeActiveReader {
		e.mu.Unlock()
		return
	}
	e.stopAllLocked()
	ev := Event{Kind: EventError, Mode: ModeNone, State: StateIdle, Err: err}
	e.mu.Unlock()
	e.notify(ev)
}

func (e *Engine) speechRequestLocked() llm.SpeechRequest {
	return llm.SpeechRequest{
		Text:        e.summary,
		Instruction: e.tone,
	}
}

func (e *Engine) stateEventLocked() Event {
	return Event{Kind: EventStateChanged, Mode: e.mode, State: e.state, Highlight: e.highlight}
}

// premiumFailureEventLocked classifies a synthesis or playback failure.
// Quota exhaustion (even after retries), providers without an audio
// modality, and a missing audio device all read as "premium
// unavailable"; anything else is a plain error.
func (e *Engine) premiumFailureEventLocked(err error) Event {
	if IsPremiumUnavailable(err) {
		return Event{Kind: EventPremiumUnavailable, Mode: ModeNone, State: StateIdle, Err: err}
	}
	return Event{Kind: EventError, Mode: ModeNone, State: StateIdle, Err: err}
}

// IsPremiumUnavailable reports whether err should lock out premium
// narration for the current guide.
func IsPremiumUnavailable(err error) bool {
	var rl *llm.ErrRateLimit
	var exhausted *llm.ErrMaxRetriesExceeded
	var unsupported *llm.ErrSpeechUnsupported
	return errors.As(err, &rl) || errors.As(err, &exhausted) ||
		errors.As(err, &unsupported) || errors.Is(err, ErrNoAudioDevice)
}
