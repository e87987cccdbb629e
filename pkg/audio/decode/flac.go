// ABOUTME: FLAC file decoder
// ABOUTME: Decodes a whole FLAC stream into a source buffer
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/scrub-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// DecodeFLAC decodes a FLAC stream into a source buffer
func DecodeFLAC(r io.Reader) (*audio.SourceBuffer, audio.Format, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	planar := make([][]float32, channels)
	if info.NSamples > 0 {
		for ch := range planar {
			planar[ch] = make([]float32, 0, info.NSamples)
		}
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, audio.Format{}, fmt.Errorf("flac decode error: %w", err)
		}

		for ch := 0; ch < channels; ch++ {
			for _, sample := range frame.Subframes[ch].Samples[:frame.BlockSize] {
				planar[ch] = append(planar[ch], audio.FloatFromBits(sample, bitDepth))
			}
		}
	}

	buf, err := audio.NewSourceBuffer(sampleRate, planar)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to build source buffer: %w", err)
	}

	return buf, audio.Format{
		Codec:      "flac",
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}
