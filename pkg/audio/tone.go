// ABOUTME: Test tone generator for the source buffer
// ABOUTME: Generates a gliding sine so scrubbing is audible without a file
package audio

import "math"

const (
	toneStartHz = 220.0
	toneEndHz   = 880.0
	toneLevel   = 0.5
)

// NewToneBuffer renders a sine that glides from 220Hz to 880Hz over the
// buffer's length, duplicated on every channel. Forward and backward
// scrubbing are easy to tell apart by ear.
func NewToneBuffer(sampleRate, channels int, seconds float64) (*SourceBuffer, error) {
	frames := int(seconds * float64(sampleRate))
	if frames < 1 {
		frames = 1
	}
	if channels < 1 {
		channels = 1
	}

	mono := make([]float32, frames)
	phase := 0.0
	for i := range mono {
		progress := float64(i) / float64(frames)
		freq := toneStartHz * math.Pow(toneEndHz/toneStartHz, progress)
		mono[i] = float32(math.Sin(phase) * toneLevel)
		phase += 2 * math.Pi * freq / float64(sampleRate)
		if phase > 2*math.Pi {
			phase -= 2 * math.Pi
		}
	}

	planar := make([][]float32, channels)
	planar[0] = mono
	for ch := 1; ch < channels; ch++ {
		planar[ch] = append([]float32(nil), mono...)
	}
	return NewSourceBuffer(sampleRate, planar)
}
