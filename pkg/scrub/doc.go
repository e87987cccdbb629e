// ABOUTME: Scrub engine package for tape-style scrubbing of a PCM buffer
// ABOUTME: Provides the per-block render algorithm and shared transport state
// Package scrub resynthesizes audio from a pre-loaded SourceBuffer as an
// external controller drags a scrub position across it.
//
// Two pieces cooperate once per audio render callback:
//   - Transport: lock-free shared state written by the UI/control side
//     (scrub flag, raw target, raw velocity, live playhead) and the
//     position published back by the engine.
//   - Engine: the render-thread state machine. When scrubbing is off it
//     passes the live input through; when it is on it walks the source at
//     a computed stride toward the target, bridges stalled gestures with
//     velocity-based extrapolation and falls silent when the gesture stops.
//
// Example:
//
//	t := scrub.NewTransport(buf)
//	e, _ := scrub.NewEngine(scrub.Config{SampleRate: buf.SampleRate()})
//
//	// control goroutine
//	t.SetScrubbing(true)
//	t.Move(48000, 150)
//
//	// render goroutine, once per block
//	e.Process(t, in, out, 512)
package scrub
