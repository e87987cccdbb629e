// ABOUTME: Audio output package for playing a deck on a local device
// ABOUTME: Provides pull-model Output interface with oto, malgo and PortAudio backends
// Package output plays a Source on the local audio device.
//
// Outputs pull: the device callback (or oto's player) asks the Source for
// exactly as many samples as it needs, so the Source renders on the device's
// schedule.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(48000, 2, deck)
//	defer out.Close()
package output
