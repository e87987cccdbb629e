// ABOUTME: Binary audio chunk framing
// ABOUTME: One type byte, a big-endian µs timestamp, then encoded audio
package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// BinaryMessageHeaderSize is the size of binary message header (type byte + timestamp)
	BinaryMessageHeaderSize = 1 + 8

	// AudioChunkMessageType is the binary message type ID for audio chunks
	AudioChunkMessageType = 4
)

// AudioChunk represents a timestamped audio frame
type AudioChunk struct {
	Timestamp int64  // Microseconds, server clock
	Data      []byte // Encoded audio
}

// EncodeAudioChunk frames encoded audio as a binary message
func EncodeAudioChunk(timestamp int64, audioData []byte) []byte {
	chunk := make([]byte, BinaryMessageHeaderSize+len(audioData))
	chunk[0] = AudioChunkMessageType
	binary.BigEndian.PutUint64(chunk[1:BinaryMessageHeaderSize], uint64(timestamp))
	copy(chunk[BinaryMessageHeaderSize:], audioData)
	return chunk
}

// ParseAudioChunk unframes a binary message
func ParseAudioChunk(data []byte) (AudioChunk, error) {
	if len(data) < BinaryMessageHeaderSize {
		return AudioChunk{}, fmt.Errorf("invalid binary message: too short (%d bytes)", len(data))
	}
	if data[0] != AudioChunkMessageType {
		return AudioChunk{}, fmt.Errorf("unknown binary message type: %d", data[0])
	}
	return AudioChunk{
		Timestamp: int64(binary.BigEndian.Uint64(data[1:BinaryMessageHeaderSize])),
		Data:      data[BinaryMessageHeaderSize:],
	}, nil
}
