package playback

import (
	"testing"
	"time"
)

func TestPCMBufferDuration(t *testing.T) {
	// One second of 16-bit mono at 24 kHz is 48000 bytes.
	cases := []struct {
		name  string
		bytes int
		want  time.Duration
	}{
		{"one second", 48000, time.Second},
		{"half second", 24000, 500 * time.Millisecond},
		{"empty", 0, 0},
	}
	for _, tc := range cases {
		b := &pcmBuffer{pcm: make([]byte, tc.bytes), rate: 24000}
		if got := b.Duration(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestPCMBufferByteOffset(t *testing.T) {
	b := &pcmBuffer{pcm: make([]byte, 48000), rate: 24000}

	cases := []struct {
		name   string
		offset time.Duration
		want   int
	}{
		{"start", 0, 0},
		{"negative clamps to start", -time.Second, 0},
		{"quarter second", 250 * time.Millisecond, 12000},
		{"exact end", time.Second, 48000},
		{"past end clamps", 2 * time.Second, 48000},
	}
	for _, tc := range cases {
		if got := b.byteOffset(tc.offset); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}

	// Offsets always land on a sample boundary.
	if got := b.byteOffset(20833 * time.Microsecond); got%2 != 0 {
		t.Errorf("expected sample-aligned offset, got %d", got)
	}
}

func TestOtoSinkDecodeRejectsForeignRate(t *testing.T) {
	s := &OtoSink{rate: 24000}
	if _, err := s.Decode([]byte{1, 2}, 16000); err == nil {
		t.Fatal("expected error for a rate the device was not opened at")
	}
}

func TestOtoSinkDecodeTrimsHalfSample(t *testing.T) {
	s := &OtoSink{rate: 24000}
	buf, err := s.Decode([]byte{1, 2, 3}, 24000)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := buf.(*pcmBuffer); len(got.pcm) != 2 {
		t.Fatalf("expected trailing half sample dropped, got %d bytes", len(got.pcm))
	}
}
