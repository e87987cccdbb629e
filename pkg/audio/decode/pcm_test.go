// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests 16-bit and 24-bit PCM decoding to float32
package decode

import (
	"testing"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	format := audio.Format{
		Codec:      "pcm",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   16,
	}

	decoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestPCMDecode(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		input    []byte
		expected []float32
	}{
		{
			name:     "16-bit",
			bitDepth: 16,
			// 0x4000 = 16384, 0xC000 = -16384
			input:    []byte{0x00, 0x40, 0x00, 0xC0},
			expected: []float32{0.5, -0.5},
		},
		{
			name:     "16-bit trailing byte",
			bitDepth: 16,
			input:    []byte{0x00, 0x80, 0x01},
			expected: []float32{-1},
		},
		{
			name:     "24-bit",
			bitDepth: 24,
			// 0x400000 = 4194304, 0xC00000 = -4194304
			input:    []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0},
			expected: []float32{0.5, -0.5},
		},
		{
			name:     "empty",
			bitDepth: 16,
			input:    []byte{},
			expected: []float32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder, err := NewPCM(audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: tt.bitDepth})
			if err != nil {
				t.Fatalf("failed to create decoder: %v", err)
			}

			output, err := decoder.Decode(tt.input)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			if len(output) != len(tt.expected) {
				t.Fatalf("expected %d samples, got %d", len(tt.expected), len(output))
			}
			for i := range tt.expected {
				if output[i] != tt.expected[i] {
					t.Errorf("sample %d: expected %v, got %v", i, tt.expected[i], output[i])
				}
			}
		})
	}
}

func TestNewPCM_InvalidCodec(t *testing.T) {
	format := audio.Format{
		Codec:      "opus",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   16,
	}

	decoder, err := NewPCM(format)
	if err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for invalid codec")
	}

	expectedError := "invalid codec for PCM decoder: opus"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestNewPCM_UnsupportedBitDepth(t *testing.T) {
	format := audio.Format{
		Codec:      "pcm",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   32,
	}

	decoder, err := NewPCM(format)
	if err == nil {
		t.Fatal("expected error for unsupported bit depth, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for unsupported bit depth")
	}

	expectedError := "unsupported bit depth: 32 (supported: 16, 24)"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestNewStreamDecoder(t *testing.T) {
	tests := []struct {
		codec   string
		wantErr bool
	}{
		{"pcm", false},
		{"opus", false},
		{"flac", true},
	}

	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			decoder, err := New(audio.Format{Codec: tt.codec, SampleRate: 48000, Channels: 2, BitDepth: 16})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			decoder.Close()
		})
	}
}
