// ABOUTME: Audio output tests
// ABOUTME: Verifies backends and the malgo callback without opening a device
package output

import (
	"bytes"
	"io"
	"testing"

	"github.com/gen2brain/malgo"
)

// byteSource serves fixed bytes then io.EOF
type byteSource struct {
	r *bytes.Reader
}

func (s *byteSource) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *byteSource) ReadFloat(p []float32) (int, error) { return 0, io.EOF }

func TestBackendsImplementOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
	var _ Output = (*Malgo)(nil)
	var _ Output = (*PortAudio)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{"oto", false},
		{"malgo", false},
		{"portaudio", false},
		{"alsa", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			out, err := New(tt.backend)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out == nil {
				t.Fatal("expected output")
			}
		})
	}
}

func TestOpenRequiresSource(t *testing.T) {
	for _, out := range []Output{NewOto(), NewMalgo()} {
		if err := out.Open(48000, 2, nil); err == nil {
			t.Errorf("%T: expected error for nil source", out)
		}
	}
}

func TestMalgoCallbackDrainsSource(t *testing.T) {
	src := &byteSource{r: bytes.NewReader([]byte{1, 2, 3, 4, 5, 6})}
	m := &Malgo{src: src, channels: 2}

	out := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	m.dataCallback(out, 2)

	expected := []byte{1, 2, 3, 4, 5, 6, 0, 0}
	if !bytes.Equal(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestBufferBytes(t *testing.T) {
	if got := bufferBytes(48000, 2, otoBufferLatency); got != 1920*4 {
		t.Errorf("expected %d bytes, got %d", 1920*4, got)
	}
}

func TestFormatName(t *testing.T) {
	if got := formatName(malgo.FormatS16); got != "S16" {
		t.Errorf("expected S16, got %s", got)
	}
}

func TestCloseUnopened(t *testing.T) {
	if err := NewOto().Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := NewMalgo().Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
