// ABOUTME: Audio encoder package for streaming and offline rendering
// ABOUTME: Provides Encoder interface (PCM, Opus) and a WAV file writer
// Package encode turns rendered float32 samples into wire or file formats.
//
// Stream encoders implement Encoder and produce the chunks a remote server
// sends to listeners. WAVWriter writes offline renders to disk.
//
// Example:
//
//	encoder, err := encode.New(format)
//	data, err := encoder.Encode(samples)
package encode
