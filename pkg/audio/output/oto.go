// ABOUTME: Oto-based audio output implementation
// ABOUTME: Oto's player pulls s16le bytes straight from the source
package output

import (
	"fmt"
	"log"
	"time"

	"github.com/ebitengine/oto/v3"
)

// otoBufferLatency keeps scrub gestures responsive
const otoBufferLatency = 40 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	sampleRate int
	channels   int
	ready      bool
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

// Open initializes the output device and starts playback of src
func (o *Oto) Open(sampleRate, channels int, src Source) error {
	if src == nil {
		return fmt.Errorf("output needs a source")
	}

	// oto only allows one context per process
	if o.otoCtx != nil && (o.sampleRate != sampleRate || o.channels != channels) {
		log.Printf("Warning: format change detected (%dHz %dch -> %dHz %dch) but oto doesn't support reinitialization. Continuing with existing context.",
			o.sampleRate, o.channels, sampleRate, channels)
	}

	if o.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   otoBufferLatency,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("failed to create oto context: %w", err)
		}

		<-readyChan

		o.otoCtx = ctx
		o.sampleRate = sampleRate
		o.channels = channels
	}

	if o.player != nil {
		o.player.Close()
	}

	o.player = o.otoCtx.NewPlayer(src)
	o.player.SetBufferSize(bufferBytes(o.sampleRate, o.channels, otoBufferLatency))
	o.player.Play()
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (oto)", o.sampleRate, o.channels)

	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.otoCtx != nil && o.ready {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	o.ready = false
	return nil
}

// bufferBytes converts a latency to an s16le byte count
func bufferBytes(sampleRate, channels int, latency time.Duration) int {
	frames := int(latency.Seconds() * float64(sampleRate))
	if frames < 1 {
		frames = 1
	}
	return frames * channels * 2
}
