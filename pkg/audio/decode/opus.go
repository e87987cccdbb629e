// ABOUTME: Opus audio decoder
// ABOUTME: Decodes Opus packets to float32 samples
package decode

import (
	"fmt"

	"github.com/Sendspin/scrub-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusFrame is the largest Opus frame (120ms at 48kHz) per channel
const maxOpusFrame = 5760

// OpusDecoder decodes Opus audio
type OpusDecoder struct {
	decoder *opus.Decoder
	format  audio.Format
	pcm     []float32
}

// NewOpus creates a new Opus decoder
func NewOpus(format audio.Format) (Decoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus decoder: %s", format.Codec)
	}

	dec, err := opus.NewDecoder(format.SampleRate, format.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}

	return &OpusDecoder{
		decoder: dec,
		format:  format,
		pcm:     make([]float32, maxOpusFrame*format.Channels),
	}, nil
}

// Decode converts one Opus packet to float32 samples
func (d *OpusDecoder) Decode(data []byte) ([]float32, error) {
	n, err := d.decoder.DecodeFloat32(data, d.pcm)
	if err != nil {
		return nil, fmt.Errorf("opus decode failed: %w", err)
	}

	samples := make([]float32, n*d.format.Channels)
	copy(samples, d.pcm)
	return samples, nil
}

// Close releases decoder resources
func (d *OpusDecoder) Close() error {
	return nil
}
