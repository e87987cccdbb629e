// ABOUTME: Package deck hosts the scrub engine as a playable audio source
// ABOUTME: Wraps transport, engine and normal playback behind io.Reader outputs
// Package deck turns a scrub.Engine into something an audio device can pull.
//
// A Deck owns the shared transport, the engine and the preallocated blocks.
// Controls (Play, Seek, BeginScrub, ScrubTo, EndScrub...) may be called from
// any goroutine; rendering happens inside Read or ReadFloat on whichever
// goroutine drains the deck.
//
//	src, _ := audio.NewToneBuffer(48000, 2, 10)
//	d, _ := deck.New(src, deck.Config{})
//	d.Play()
//	d.BeginScrub()
//	d.ScrubTo(96000, 200)
//	d.EndScrub()
package deck
