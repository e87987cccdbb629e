// ABOUTME: Scrub remote-control wire protocol package
// ABOUTME: Defines protocol messages, binary audio chunks and the WebSocket client
// Package protocol implements the scrub remote-control protocol.
//
// Messages are JSON envelopes {"type", "payload"} over a WebSocket at
// /scrub. Controllers drive the gesture (scrub/start, scrub/move,
// scrub/end) and transport (transport/command); the server reports
// server/state. Listeners additionally receive rendered audio as binary
// chunks.
//
// Example:
//
//	client := protocol.NewClient(protocol.Config{ServerAddr: "localhost:8928", Name: "remote"})
//	err := client.Connect()
//	err = client.BeginScrub()
//	err = client.ScrubTo(96000, 200)
//	err = client.EndScrub()
package protocol
