package playback

import (
	"errors"
	"time"
)

// ErrSpeechCanceled classifies a speech engine error as an intentional
// cancellation. Cancellations are expected when a mode is stopped
// mid-utterance and are never surfaced as faults.
var ErrSpeechCanceled = errors.New("speech canceled")

// ErrNoAudioDevice is returned by the no-device fallbacks. It disables a
// playback mode without failing anything else.
var ErrNoAudioDevice = errors.New("no audio device available")

// AudioBuffer is a decoded, playable audio clip.
type AudioBuffer interface {
	Duration() time.Duration
}

// AudioSource is one live playback of a buffer. Stopping it never fires
// the end callback.
type AudioSource interface {
	Stop()
}

// AudioSink is the buffered-audio playback collaborator: it decodes raw
// PCM into a buffer and plays buffers from an offset.
type AudioSink interface {
	// Decode converts raw 16-bit mono PCM into a playable buffer.
	Decode(pcm []byte, sampleRate int) (AudioBuffer, error)

	// Play starts buf at the given offset. onEnd fires exactly once if
	// playback runs to natural completion.
	Play(buf AudioBuffer, offset time.Duration, onEnd func()) (AudioSource, error)
}

// SpeechCallbacks carries the event handlers for one utterance.
type SpeechCallbacks struct {
	// OnBoundary fires at each word boundary with the character offset
	// of the word about to be spoken.
	OnBoundary func(charIndex int)

	// OnEnd fires once on natural completion.
	OnEnd func()

	// OnError fires on failure. Errors matching ErrSpeechCanceled are
	// intentional cancellations.
	OnError func(err error)
}

// SpeechEngine is the device text-to-speech collaborator.
type SpeechEngine interface {
	// Speak starts speaking text and returns once the utterance is
	// queued. Completion and word boundaries arrive via callbacks.
	Speak(text, languageCode string, cb SpeechCallbacks) error

	Pause()
	Resume()

	// Cancel discards the current utterance. The engine reports it to
	// OnError as ErrSpeechCanceled, or not at all.
	Cancel()
}

// NoopSink is the fallback AudioSink when no audio device exists.
// Decoding fails, which reads as "premium voice unavailable".
type NoopSink struct{}

func (NoopSink) Decode([]byte, int) (AudioBuffer, error) {
	return nil, ErrNoAudioDevice
}

func (NoopSink) Play(AudioBuffer, time.Duration, func()) (AudioSource, error) {
	return nil, ErrNoAudioDevice
}

// NoopSpeechEngine is the fallback SpeechEngine when the device has no
// text-to-speech. Speaking fails, which disables the active reader.
type NoopSpeechEngine struct{}

func (NoopSpeechEngine) Speak(string, string, SpeechCallbacks) error {
	return ErrNoAudioDevice
}

func (NoopSpeechEngine) Pause()  {}
func (NoopSpeechEngine) Resume() {}
func (NoopSpeechEngine) Cancel() {}
