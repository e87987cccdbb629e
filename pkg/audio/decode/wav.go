// ABOUTME: WAV file decoder
// ABOUTME: Decodes a whole WAV file into a source buffer using go-audio
package decode

import (
	"fmt"
	"io"

	"github.com/Sendspin/scrub-go/pkg/audio"
	"github.com/go-audio/wav"
)

// DecodeWAV decodes a PCM WAV stream into a source buffer
func DecodeWAV(r io.ReadSeeker) (*audio.SourceBuffer, audio.Format, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, audio.Format{}, fmt.Errorf("invalid WAV file")
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("wav decode error: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		return nil, audio.Format{}, fmt.Errorf("unknown WAV bit depth")
	}
	channels := pcm.Format.NumChannels
	sampleRate := pcm.Format.SampleRate

	samples := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			samples[i] = float32(v-128) / 128
			continue
		}
		samples[i] = audio.FloatFromBits(int32(v), bitDepth)
	}

	buf, err := audio.FromInterleaved(sampleRate, channels, samples)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to build source buffer: %w", err)
	}

	return buf, audio.Format{
		Codec:      "wav",
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}
