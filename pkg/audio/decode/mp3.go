// ABOUTME: MP3 file decoder
// ABOUTME: Decodes a whole MP3 stream into a source buffer
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Sendspin/scrub-go/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo
const mp3Channels = 2

// DecodeMP3 decodes an MP3 stream into a source buffer
func DecodeMP3(r io.Reader) (*audio.SourceBuffer, audio.Format, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to decode MP3: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	numFrames := len(data) / (2 * mp3Channels)
	planar := make([][]float32, mp3Channels)
	for ch := range planar {
		planar[ch] = make([]float32, numFrames)
	}
	for i := 0; i < numFrames; i++ {
		for ch := 0; ch < mp3Channels; ch++ {
			offset := (i*mp3Channels + ch) * 2
			planar[ch][i] = audio.FloatFromInt16(int16(binary.LittleEndian.Uint16(data[offset:])))
		}
	}

	buf, err := audio.NewSourceBuffer(decoder.SampleRate(), planar)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to build source buffer: %w", err)
	}

	return buf, audio.Format{
		Codec:      "mp3",
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   16,
	}, nil
}
