// ABOUTME: Whole-file loader that picks a decoder by file extension
// ABOUTME: Produces source buffers for scrub playback
package decode

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

// Load reads an audio file into memory. The decoder is chosen by
// extension: .mp3, .flac or .wav. Raw PCM needs LoadPCM.
func Load(path string) (*audio.SourceBuffer, audio.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3", ".flac", ".wav":
	case ".pcm", ".raw":
		return nil, audio.Format{}, fmt.Errorf("raw PCM needs an explicit format: %s", path)
	default:
		return nil, audio.Format{}, fmt.Errorf("unsupported file format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var (
		buf    *audio.SourceBuffer
		format audio.Format
	)
	switch ext {
	case ".mp3":
		buf, format, err = DecodeMP3(f)
	case ".flac":
		buf, format, err = DecodeFLAC(f)
	case ".wav":
		buf, format, err = DecodeWAV(f)
	}
	if err != nil {
		return nil, audio.Format{}, err
	}

	log.Printf("Loaded %s: %s (sample rate: %d Hz, channels: %d, bit depth: %d, %v)",
		strings.ToUpper(format.Codec), Title(path), format.SampleRate, format.Channels,
		format.BitDepth, buf.Duration())

	return buf, format, nil
}

// LoadPCM reads a headerless interleaved little-endian PCM file
func LoadPCM(path string, format audio.Format) (*audio.SourceBuffer, error) {
	if format.Channels <= 0 {
		return nil, fmt.Errorf("channel count must be > 0: %d", format.Channels)
	}
	if format.Codec == "" {
		format.Codec = "pcm"
	}

	decoder, err := NewPCM(format)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM file: %w", err)
	}

	samples, err := decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PCM: %w", err)
	}

	buf, err := audio.FromInterleaved(format.SampleRate, format.Channels, samples)
	if err != nil {
		return nil, fmt.Errorf("failed to build source buffer: %w", err)
	}

	log.Printf("Loaded PCM: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		Title(path), format.SampleRate, format.Channels, format.BitDepth)

	return buf, nil
}

// Title derives a display title from a file path
func Title(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
