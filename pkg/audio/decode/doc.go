// ABOUTME: Audio decoder package for loading and stream decoding
// ABOUTME: Loads whole files into source buffers and decodes PCM/Opus chunks
// Package decode turns encoded audio into float32 samples.
//
// Whole-file loaders (MP3, FLAC, WAV, raw PCM) produce an audio.SourceBuffer
// ready for scrubbing. Loading happens up front, never on the render path.
//
// Stream decoders (PCM, Opus) implement the Decoder interface and decode the
// audio chunks a remote server streams to listeners.
//
// Example:
//
//	buf, format, err := decode.Load("song.flac")
//
//	decoder, err := decode.New(format)
//	samples, err := decoder.Decode(chunk)
package decode
