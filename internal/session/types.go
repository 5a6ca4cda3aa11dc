package session

// Phase is the orchestrator's top-level lifecycle state.
type Phase int

const (
	// PhaseIdle accepts new submissions; nothing generated yet.
	PhaseIdle Phase = iota

	// PhaseLoading is entered on submit and exited only when the
	// generation call settles.
	PhaseLoading

	// PhaseSuccess holds a generated guide and allows chat, playback,
	// export, and session switching.
	PhaseSuccess

	// PhaseError preserves the failed submission's input for retry.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// EventKind classifies orchestrator notifications.
type EventKind int

const (
	// EventPhaseChanged reports a lifecycle transition.
	EventPhaseChanged EventKind = iota

	// EventChatUpdated reports that the chat log changed: a turn was
	// appended or the streaming model turn grew.
	EventChatUpdated

	// EventChatSettled reports that a chat exchange finished
	// (successfully or with the fallback turn) and was persisted.
	EventChatSettled

	// EventSessionsChanged reports that the persisted session list
	// changed (new session, pin, rename, delete).
	EventSessionsChanged

	// EventPremiumLocked reports that premium narration was disabled
	// for the current guide after quota detection during prefetch.
	EventPremiumLocked
)

// Event is a notification to the UI layer. Consumers re-read the
// orchestrator's accessors; the event carries only classification.
type Event struct {
	Kind  EventKind
	Phase Phase
	Err   error
}
