// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and sample conversions
package audio

import "math"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}

// FloatFromInt16 converts a 16-bit sample to float32 in [-1, 1)
func FloatFromInt16(sample int16) float32 {
	return float32(sample) / 32768
}

// FloatFrom24Bit converts a 24-bit sample (held in int32) to float32 in [-1, 1)
func FloatFrom24Bit(sample int32) float32 {
	return float32(sample) / 8388608
}

// FloatFromBits scales an integer sample of the given bit depth to float32
func FloatFromBits(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(uint64(1)<<(bitDepth-1)))
}

// FloatToInt16 converts float32 to int16 with clipping
func FloatToInt16(sample float32) int16 {
	v := math.Round(float64(sample) * 32767)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// FloatTo24Bit converts float32 to a 24-bit sample held in int32, with clipping
func FloatTo24Bit(sample float32) int32 {
	v := math.Round(float64(sample) * Max24Bit)
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}
