// ABOUTME: Tests for the source buffer
// ABOUTME: Tests geometry validation, de-interleaving, and frame helpers
package audio

import (
	"testing"
	"time"
)

func TestNewSourceBuffer(t *testing.T) {
	tests := []struct {
		name      string
		rate      int
		channels  [][]float32
		expectErr string
	}{
		{
			name:     "stereo",
			rate:     48000,
			channels: [][]float32{{0, 1, 2}, {3, 4, 5}},
		},
		{
			name:      "no channels",
			rate:      48000,
			channels:  nil,
			expectErr: "source buffer needs at least one channel",
		},
		{
			name:      "empty channel",
			rate:      48000,
			channels:  [][]float32{{}},
			expectErr: "source buffer needs at least one frame",
		},
		{
			name:      "mismatched lengths",
			rate:      48000,
			channels:  [][]float32{{0, 1, 2}, {3, 4}},
			expectErr: "channel 1 has 2 frames, want 3",
		},
		{
			name:      "bad sample rate",
			rate:      0,
			channels:  [][]float32{{0}},
			expectErr: "sample rate must be > 0: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewSourceBuffer(tt.rate, tt.channels)
			if tt.expectErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if err.Error() != tt.expectErr {
					t.Errorf("expected error %q, got %q", tt.expectErr, err.Error())
				}
				if buf != nil {
					t.Error("expected nil buffer on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.Frames() != 3 {
				t.Errorf("expected 3 frames, got %d", buf.Frames())
			}
			if buf.Channels() != 2 {
				t.Errorf("expected 2 channels, got %d", buf.Channels())
			}
		})
	}
}

func TestFromInterleaved(t *testing.T) {
	buf, err := FromInterleaved(44100, 2, []float32{0.1, -0.1, 0.2, -0.2, 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", buf.Frames())
	}
	if buf.Channel(0)[1] != 0.2 {
		t.Errorf("expected left[1] = 0.2, got %v", buf.Channel(0)[1])
	}
	if buf.Channel(1)[1] != -0.2 {
		t.Errorf("expected right[1] = -0.2, got %v", buf.Channel(1)[1])
	}
}

func TestFromInterleavedRejectsZeroChannels(t *testing.T) {
	if _, err := FromInterleaved(44100, 0, []float32{1}); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestSourceBufferClampAndFrameAt(t *testing.T) {
	buf, err := NewSourceBuffer(1000, [][]float32{make([]float32, 2000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"inside", 1500, 1500},
		{"negative", -5, 0},
		{"past end", 2000, 1999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buf.Clamp(tt.input); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}

	if got := buf.FrameAt(1.25); got != 1250 {
		t.Errorf("expected frame 1250, got %d", got)
	}
	if got := buf.FrameAt(10); got != 1999 {
		t.Errorf("expected frame 1999, got %d", got)
	}
	if got := buf.Duration(); got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}
}

func TestNewToneBuffer(t *testing.T) {
	buf, err := NewToneBuffer(8000, 2, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.Frames() != 4000 {
		t.Errorf("expected 4000 frames, got %d", buf.Frames())
	}

	peak := float32(0)
	for i, v := range buf.Channel(0) {
		if v != buf.Channel(1)[i] {
			t.Fatalf("channels differ at frame %d", i)
		}
		if v > peak {
			peak = v
		}
	}
	if peak < 0.4 || peak > 0.5 {
		t.Errorf("expected peak near 0.5, got %v", peak)
	}
}
