// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for stream chunk decoders
package decode

import (
	"fmt"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

// Decoder decodes streamed audio chunks to interleaved float32 samples
type Decoder interface {
	// Decode converts one encoded chunk to samples
	Decode(data []byte) ([]float32, error)

	// Close releases decoder resources
	Close() error
}

// New creates the stream decoder for format's codec
func New(format audio.Format) (Decoder, error) {
	switch format.Codec {
	case "pcm":
		return NewPCM(format)
	case "opus":
		return NewOpus(format)
	default:
		return nil, fmt.Errorf("unsupported stream codec: %s", format.Codec)
	}
}
