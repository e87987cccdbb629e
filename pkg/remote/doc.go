// ABOUTME: Remote control server for a scrub deck
// ABOUTME: Lets controllers scrub over WebSocket and streams audio to listeners
// Package remote serves a deck to remote controllers and listeners.
//
// Controllers send scrub gestures and transport commands; every client
// receives periodic server/state updates with the current position.
// When a StreamSource is configured, listener clients also receive the
// rendered audio as PCM or Opus chunks.
//
// Example:
//
//	d, _ := deck.New(src, deck.Config{})
//	server, err := remote.NewServer(remote.ServerConfig{
//	    Port:       8928,
//	    Controller: d,
//	    Stream:     d,
//	})
//	err = server.Start()
package remote
