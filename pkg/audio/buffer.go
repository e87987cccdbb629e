// ABOUTME: Immutable planar PCM buffer that scrub playback reads from
// ABOUTME: Validates geometry once at construction so readers never have to
package audio

import (
	"fmt"
	"time"
)

// SourceBuffer holds pre-loaded PCM audio, one float32 sequence per channel.
// All channels have the same length. The buffer is never mutated after
// construction and may be shared read-only between goroutines.
type SourceBuffer struct {
	sampleRate int
	frames     int
	channels   [][]float32
}

// NewSourceBuffer wraps planar channel data. It fails when there are no
// channels, when channels are empty, or when channel lengths differ.
func NewSourceBuffer(sampleRate int, channels [][]float32) (*SourceBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %d", sampleRate)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("source buffer needs at least one channel")
	}
	frames := len(channels[0])
	if frames == 0 {
		return nil, fmt.Errorf("source buffer needs at least one frame")
	}
	for ch, data := range channels {
		if len(data) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, want %d", ch, len(data), frames)
		}
	}
	return &SourceBuffer{
		sampleRate: sampleRate,
		frames:     frames,
		channels:   channels,
	}, nil
}

// FromInterleaved de-interleaves float32 samples into a SourceBuffer.
// Trailing samples that do not fill a whole frame are dropped.
func FromInterleaved(sampleRate, channels int, samples []float32) (*SourceBuffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("channel count must be > 0: %d", channels)
	}
	frames := len(samples) / channels
	planar := make([][]float32, channels)
	for ch := range planar {
		planar[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			planar[ch][i] = samples[i*channels+ch]
		}
	}
	return NewSourceBuffer(sampleRate, planar)
}

// SampleRate returns the sample rate in Hz.
func (b *SourceBuffer) SampleRate() int { return b.sampleRate }

// Frames returns the number of frames per channel.
func (b *SourceBuffer) Frames() int { return b.frames }

// Channels returns the number of channels.
func (b *SourceBuffer) Channels() int { return len(b.channels) }

// Channel returns the samples of channel ch. Callers must not modify them.
func (b *SourceBuffer) Channel(ch int) []float32 { return b.channels[ch] }

// Duration returns the playing time of the buffer.
func (b *SourceBuffer) Duration() time.Duration {
	return time.Duration(float64(b.frames) / float64(b.sampleRate) * float64(time.Second))
}

// FrameAt converts seconds to a frame index clamped to [0, Frames()-1].
func (b *SourceBuffer) FrameAt(seconds float64) int {
	return b.Clamp(int(seconds * float64(b.sampleRate)))
}

// Clamp limits a frame index to [0, Frames()-1].
func (b *SourceBuffer) Clamp(frame int) int {
	if frame < 0 {
		return 0
	}
	if frame >= b.frames {
		return b.frames - 1
	}
	return frame
}
