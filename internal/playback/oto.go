package playback

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// deviceSampleRate is the rate the audio device is opened at. Every
// provider synthesizes 16-bit mono PCM at 24 kHz.
const deviceSampleRate = 24000

// drainPollInterval is how often a live playback checks whether the
// device has drained its buffer.
const drainPollInterval = 50 * time.Millisecond

// OtoSink plays raw 16-bit mono PCM through the system audio device.
type OtoSink struct {
	ctx  *oto.Context
	rate int
}

// NewOtoSink opens the system audio device. The process gets one device
// context for its lifetime; callers that see an error fall back to
// NoopSink.
func NewOtoSink() (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   deviceSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	return &OtoSink{ctx: ctx, rate: deviceSampleRate}, nil
}

func (s *OtoSink) Decode(pcm []byte, sampleRate int) (AudioBuffer, error) {
	if sampleRate != s.rate {
		return nil, fmt.Errorf("unsupported sample rate %d, device runs at %d", sampleRate, s.rate)
	}
	if len(pcm)%2 != 0 {
		// Drop a trailing half sample rather than feed it to the device.
		pcm = pcm[:len(pcm)-1]
	}
	return &pcmBuffer{pcm: pcm, rate: sampleRate}, nil
}

func (s *OtoSink) Play(buf AudioBuffer, offset time.Duration, onEnd func()) (AudioSource, error) {
	b, ok := buf.(*pcmBuffer)
	if !ok {
		return nil, fmt.Errorf("buffer was not decoded by this sink")
	}
	player := s.ctx.NewPlayer(bytes.NewReader(b.pcm[b.byteOffset(offset):]))
	src := &otoPlayback{player: player}
	player.Play()
	go src.watch(onEnd)
	return src, nil
}

// pcmBuffer is a decoded clip. Position arithmetic happens in bytes so
// playback and the engine's offset math agree on the clip length.
type pcmBuffer struct {
	pcm  []byte
	rate int
}

func (b *pcmBuffer) Duration() time.Duration {
	samples := len(b.pcm) / 2
	return time.Duration(samples) * time.Second / time.Duration(b.rate)
}

// byteOffset maps a playback position to a sample-aligned byte offset,
// clamped to the clip.
func (b *pcmBuffer) byteOffset(offset time.Duration) int {
	if offset <= 0 {
		return 0
	}
	samples := int(offset * time.Duration(b.rate) / time.Second)
	n := samples * 2
	if n > len(b.pcm) {
		n = len(b.pcm)
	}
	return n
}

// otoPlayback is one live playback of a clip. The watcher goroutine
// fires onEnd once the player drains; Stop retires the watcher first so
// a stopped source never reports completion.
type otoPlayback struct {
	mu      sync.Mutex
	player  *oto.Player
	stopped bool
}

func (p *otoPlayback) watch(onEnd func()) {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			return
		}
		if p.player.IsPlaying() {
			p.mu.Unlock()
			continue
		}
		p.stopped = true
		p.mu.Unlock()
		_ = p.player.Close()
		onEnd()
		return
	}
}

func (p *otoPlayback) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	p.player.Pause()
	_ = p.player.Close()
}
