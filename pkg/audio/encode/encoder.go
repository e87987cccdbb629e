// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for stream chunk encoders
package encode

import (
	"fmt"

	"github.com/Sendspin/scrub-go/pkg/audio"
)

// Encoder encodes interleaved float32 samples
type Encoder interface {
	// Encode converts samples to encoded audio data
	Encode(samples []float32) ([]byte, error)

	// Close releases encoder resources
	Close() error
}

// New creates the stream encoder for format's codec
func New(format audio.Format) (Encoder, error) {
	switch format.Codec {
	case "pcm":
		return NewPCM(format)
	case "opus":
		return NewOpus(format)
	default:
		return nil, fmt.Errorf("unsupported stream codec: %s", format.Codec)
	}
}
