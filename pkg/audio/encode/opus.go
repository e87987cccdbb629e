// ABOUTME: Opus audio encoder
// ABOUTME: Encodes 20ms float32 frames to Opus packets
package encode

import (
	"fmt"

	"github.com/Sendspin/scrub-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusPacket bounds a single encoded packet
const maxOpusPacket = 4000

// OpusEncoder encodes Opus audio
type OpusEncoder struct {
	encoder   *opus.Encoder
	channels  int
	frameSize int
	packet    []byte
}

// NewOpus creates a new Opus encoder
func NewOpus(format audio.Format) (Encoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus encoder: %s", format.Codec)
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	return &OpusEncoder{
		encoder:   encoder,
		channels:  format.Channels,
		frameSize: format.SampleRate / 50, // 20ms
		packet:    make([]byte, maxOpusPacket),
	}, nil
}

// FrameSize returns the number of frames per channel one packet holds
func (e *OpusEncoder) FrameSize() int {
	return e.frameSize
}

// Encode converts exactly one 20ms frame of interleaved samples to an
// Opus packet
func (e *OpusEncoder) Encode(samples []float32) ([]byte, error) {
	if len(samples) != e.frameSize*e.channels {
		return nil, fmt.Errorf("opus frame must hold %d samples, got %d",
			e.frameSize*e.channels, len(samples))
	}

	n, err := e.encoder.EncodeFloat32(samples, e.packet)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	data := make([]byte, n)
	copy(data, e.packet[:n])
	return data, nil
}

// Close releases resources
func (e *OpusEncoder) Close() error {
	return nil
}
