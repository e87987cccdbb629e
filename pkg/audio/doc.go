// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, SourceBuffer types and sample conversion functions
// Package audio provides fundamental audio types and utilities for scrub playback.
//
// This package defines core types used throughout the scrub library:
//   - Format: Describes audio stream format (codec, sample rate, channels, bit depth)
//   - SourceBuffer: Immutable planar float32 PCM that the scrub engine reads from
//
// It also provides utilities for converting between sample formats:
//   - 16-bit and 24-bit integers ↔ float32 in [-1, 1]
//   - int32 ↔ packed 24-bit bytes
//
// Example:
//
//	buf, err := audio.NewSourceBuffer(48000, [][]float32{left, right})
//	frame := buf.FrameAt(1.5) // 72000
//	sample := buf.Channel(0)[frame]
package audio
