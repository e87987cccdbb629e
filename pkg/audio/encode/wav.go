// ABOUTME: WAV file writer for offline renders
// ABOUTME: Streams interleaved float32 blocks into a 16-bit WAV via go-audio
package encode

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

// WAVWriter writes interleaved float32 samples to a 16-bit PCM WAV stream
type WAVWriter struct {
	encoder *wav.Encoder
	buf     *goaudio.IntBuffer
	written int
}

// NewWAVWriter creates a writer on w. The header is finalised by Close.
func NewWAVWriter(w io.WriteSeeker, sampleRate, channels int) (*WAVWriter, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid WAV format: %dHz, %d channels", sampleRate, channels)
	}

	return &WAVWriter{
		encoder: wav.NewEncoder(w, sampleRate, 16, channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// Write appends interleaved samples
func (w *WAVWriter) Write(samples []float32) error {
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		w.buf.Data[i] = int(audio.FloatToInt16(s))
	}

	if err := w.encoder.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write WAV samples: %w", err)
	}
	w.written += len(samples)
	return nil
}

// Samples returns how many samples have been written
func (w *WAVWriter) Samples() int {
	return w.written
}

// Close finalises the WAV header
func (w *WAVWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV: %w", err)
	}
	return nil
}
