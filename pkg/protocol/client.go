// ABOUTME: WebSocket client for the scrub remote-control protocol
// ABOUTME: Handles connection, handshake, gesture commands and message routing
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultPath is the server's websocket endpoint
const DefaultPath = "/scrub"

// Config holds client configuration
type Config struct {
	ServerAddr string
	Path       string
	ClientID   string
	Name       string
	Version    int
	DeviceInfo DeviceInfo

	// Roles defaults to controller only
	Roles             []string
	ListenerV1Support *ListenerV1Support
}

// Client represents a WebSocket client
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex
	hello  ServerHello

	// Message channels
	AudioChunks chan AudioChunk
	StreamStart chan StreamStart
	StreamEnd   chan StreamEnd
	ServerState chan ServerState

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if len(config.Roles) == 0 {
		config.Roles = []string{RoleController}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:      config,
		AudioChunks: make(chan AudioChunk, 100),
		StreamStart: make(chan StreamStart, 1),
		StreamEnd:   make(chan StreamEnd, 1),
		ServerState: make(chan ServerState, 10),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake performs the protocol handshake
func (c *Client) handshake() error {
	hello := ClientHello{
		ClientID:          c.config.ClientID,
		Name:              c.config.Name,
		Version:           c.config.Version,
		SupportedRoles:    c.config.Roles,
		DeviceInfo:        &c.config.DeviceInfo,
		ListenerV1Support: c.config.ListenerV1Support,
	}

	if err := c.sendJSON(Message{Type: "client/hello", Payload: hello}); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var serverMsg Message
	if err := json.Unmarshal(data, &serverMsg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	if serverMsg.Type != "server/hello" {
		return fmt.Errorf("expected server/hello, got %s", serverMsg.Type)
	}

	var serverHello ServerHello
	if err := DecodePayload(serverMsg.Payload, &serverHello); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	c.mu.Lock()
	c.hello = serverHello
	c.mu.Unlock()

	log.Printf("Handshake complete with %s (roles: %v)", serverHello.Name, serverHello.ActiveRoles)
	return nil
}

// ServerHello returns the server's handshake reply
func (c *Client) ServerHello() ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg Message) error {
	// gorilla allows one concurrent writer
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.IsConnected() {
				log.Printf("Read error: %v", err)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			c.handleBinaryMessage(data)
		case websocket.TextMessage:
			c.handleJSONMessage(data)
		default:
			log.Printf("Unknown WebSocket message type: %d", messageType)
		}
	}
}

// handleBinaryMessage handles audio chunks
func (c *Client) handleBinaryMessage(data []byte) {
	chunk, err := ParseAudioChunk(data)
	if err != nil {
		log.Printf("Dropping binary message: %v", err)
		return
	}

	select {
	case c.AudioChunks <- chunk:
	case <-c.ctx.Done():
	}
}

// handleJSONMessage routes JSON messages
func (c *Client) handleJSONMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case "server/state":
		var state ServerState
		if err := DecodePayload(msg.Payload, &state); err != nil {
			log.Printf("Failed to parse server/state: %v", err)
			return
		}
		select {
		case c.ServerState <- state:
		case <-time.After(100 * time.Millisecond):
			// states are periodic; a slow reader only loses stale ones
		}

	case "stream/start":
		var start StreamStart
		if err := DecodePayload(msg.Payload, &start); err != nil {
			log.Printf("Failed to parse stream/start: %v", err)
			return
		}
		log.Printf("Stream started: %s %dHz/%dch/%dbit", start.Codec, start.SampleRate, start.Channels, start.BitDepth)
		select {
		case c.StreamStart <- start:
		case <-c.ctx.Done():
		}

	case "stream/end":
		select {
		case c.StreamEnd <- StreamEnd{}:
		case <-c.ctx.Done():
		}

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// BeginScrub starts a gesture at the server's current position
func (c *Client) BeginScrub() error {
	return c.sendJSON(Message{Type: "scrub/start", Payload: ScrubStart{}})
}

// BeginScrubAt starts a gesture at an explicit frame
func (c *Client) BeginScrubAt(position int) error {
	return c.sendJSON(Message{Type: "scrub/start", Payload: ScrubStart{Position: &position}})
}

// ScrubTo moves the gesture target (velocity 100 = real time)
func (c *Client) ScrubTo(position int, velocity float64) error {
	return c.sendJSON(Message{Type: "scrub/move", Payload: ScrubMove{Position: position, Velocity: velocity}})
}

// EndScrub ends the gesture
func (c *Client) EndScrub() error {
	return c.sendJSON(Message{Type: "scrub/end", Payload: ScrubEnd{}})
}

// Play resumes normal playback
func (c *Client) Play() error {
	return c.sendCommand(TransportCommand{Command: CommandPlay})
}

// Pause pauses normal playback
func (c *Client) Pause() error {
	return c.sendCommand(TransportCommand{Command: CommandPause})
}

// Toggle flips play/pause
func (c *Client) Toggle() error {
	return c.sendCommand(TransportCommand{Command: CommandToggle})
}

// Seek moves the playhead
func (c *Client) Seek(position int) error {
	return c.sendCommand(TransportCommand{Command: CommandSeek, Position: position})
}

// Skip jumps playback by seconds; negative values skip back
func (c *Client) Skip(seconds float64) error {
	return c.sendCommand(TransportCommand{Command: CommandSkip, Seconds: seconds})
}

// SetVolume sets the server volume (0-100)
func (c *Client) SetVolume(volume int) error {
	return c.sendCommand(TransportCommand{Command: CommandVolume, Volume: volume})
}

// SetMuted sets the server mute state
func (c *Client) SetMuted(muted bool) error {
	return c.sendCommand(TransportCommand{Command: CommandMute, Mute: muted})
}

func (c *Client) sendCommand(cmd TransportCommand) error {
	return c.sendJSON(Message{Type: "transport/command", Payload: cmd})
}

// SendGoodbye sends a client/goodbye message before disconnecting
func (c *Client) SendGoodbye(reason string) error {
	msg := Message{
		Type: "client/goodbye",
		Payload: ClientGoodbye{
			Reason: reason,
		},
	}
	return c.sendJSON(msg)
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Done is closed once the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}
