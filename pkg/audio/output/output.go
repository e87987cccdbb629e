// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for pull-model playback backends
package output

import (
	"fmt"
	"io"
)

// Source produces interleaved audio on demand. Read yields s16le bytes,
// ReadFloat yields float32 samples.
type Source interface {
	io.Reader
	ReadFloat(p []float32) (int, error)
}

// Output represents an audio output device
type Output interface {
	// Open initializes the device and starts pulling from src
	Open(sampleRate, channels int, src Source) error

	// Close releases output resources
	Close() error
}

// New creates an output by backend name: "oto", "malgo" or "portaudio"
func New(backend string) (Output, error) {
	switch backend {
	case "", "oto":
		return NewOto(), nil
	case "malgo":
		return NewMalgo(), nil
	case "portaudio":
		return NewPortAudio(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend: %s", backend)
	}
}
