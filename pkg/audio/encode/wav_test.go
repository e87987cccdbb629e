// ABOUTME: Tests for the WAV writer
// ABOUTME: Writes a short render and reads it back through the WAV loader
package encode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Sendspin/scrub-go/pkg/audio/decode"
)

func TestWAVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	w, err := NewWAVWriter(f, 48000, 2)
	if err != nil {
		t.Fatalf("NewWAVWriter() failed: %v", err)
	}

	blocks := [][]float32{
		{0.5, -0.5, 0.25, -0.25},
		{0, 1, -1, 0},
	}
	for _, block := range blocks {
		if err := w.Write(block); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}
	}
	if w.Samples() != 8 {
		t.Errorf("expected 8 samples written, got %d", w.Samples())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	f.Close()

	buf, format, err := decode.Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if format.SampleRate != 48000 || format.Channels != 2 || format.BitDepth != 16 {
		t.Errorf("unexpected format %+v", format)
	}
	if buf.Frames() != 4 {
		t.Fatalf("expected 4 frames, got %d", buf.Frames())
	}

	// 16-bit quantisation: 0.5 -> 16384 -> 0.5
	if got := buf.Channel(0)[0]; got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
	if got := buf.Channel(1)[1]; got != -0.25 {
		t.Errorf("expected -0.25, got %v", got)
	}
}

func TestNewWAVWriter_InvalidFormat(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if _, err := NewWAVWriter(f, 0, 2); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := NewWAVWriter(f, 48000, 0); err == nil {
		t.Error("expected error for zero channels")
	}
}
