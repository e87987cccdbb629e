// ABOUTME: WebSocket server exposing a deck to remote controllers
// ABOUTME: Handles handshake, gesture commands, state broadcast and listener streaming
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Sendspin/scrub-go/internal/discovery"
	"github.com/Sendspin/scrub-go/pkg/audio"
	"github.com/Sendspin/scrub-go/pkg/audio/encode"
	"github.com/Sendspin/scrub-go/pkg/deck"
	"github.com/Sendspin/scrub-go/pkg/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// ProtocolVersion is the version of the scrub protocol we implement
	ProtocolVersion = 1

	// DefaultPort is the default listen port
	DefaultPort = 8928

	// DefaultStateInterval is how often server/state is broadcast
	DefaultStateInterval = 50 * time.Millisecond

	// Listener streaming
	ChunkDurationMs = 20
	BufferAheadMs   = 100
	StreamBitDepth  = 16
)

// Controller is the deck surface remote clients drive
type Controller interface {
	Play()
	Pause()
	Toggle()
	Seek(frame int)
	Skip(seconds float64)
	SetVolume(volume int)
	SetMuted(muted bool)
	BeginScrub()
	ScrubTo(position int, velocity float64)
	EndScrub()
	Status() deck.Status
}

// StreamSource renders interleaved float32 audio for listeners
type StreamSource interface {
	ReadFloat(p []float32) (int, error)
}

// ServerConfig configures a remote server
type ServerConfig struct {
	// Port to listen on (default: 8928)
	Port int

	// Name of the server for identification
	Name string

	// Controller receives gesture and transport commands (required)
	Controller Controller

	// Stream, when set, is pulled every 20ms and sent to listeners. Leave
	// it nil when a local audio device already drains the deck.
	Stream StreamSource

	// StateInterval between server/state broadcasts (default: 50ms)
	StateInterval time.Duration

	// EnableMDNS enables mDNS service advertisement
	EnableMDNS bool

	// Debug enables debug logging
	Debug bool
}

// Server serves a deck over WebSocket
type Server struct {
	config   ServerConfig
	serverID string

	upgrader   websocket.Upgrader
	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*client
	clientsMu sync.RWMutex

	// client that owns the current gesture
	scrubOwner string
	scrubMu    sync.Mutex

	clockStart time.Time

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// client represents a connected client (internal)
type client struct {
	ID      string
	Name    string
	Conn    *websocket.Conn
	Roles   []string
	Support *protocol.ListenerV1Support

	// Negotiated stream codec for listeners
	Codec   string
	Encoder encode.Encoder

	sendChan chan interface{}
	closed   bool

	mu sync.RWMutex
}

// ClientInfo represents information about a connected client
type ClientInfo struct {
	ID    string
	Name  string
	Roles []string
	Codec string
}

// NewServer creates a new remote server
func NewServer(config ServerConfig) (*Server, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = "Scrub Server"
	}
	if config.StateInterval == 0 {
		config.StateInterval = DefaultStateInterval
	}
	if config.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}

	mux := http.NewServeMux()

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		mux:      mux,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// local network remotes
				return true
			},
		},
		clients:    make(map[string]*client),
		clockStart: time.Now(),
		stopChan:   make(chan struct{}),
	}

	mux.HandleFunc(protocol.DefaultPath, s.handleWebSocket)

	return s, nil
}

// ID returns the server's identifier
func (s *Server) ID() string { return s.serverID }

// Start starts the server and blocks until Stop is called
func (s *Server) Start() error {
	st := s.config.Controller.Status()
	log.Printf("Server starting: %s (ID: %s)", s.config.Name, s.serverID)
	log.Printf("Deck: %d frames, %dHz/%dch, streaming: %v",
		st.Frames, st.SampleRate, st.Channels, s.config.Stream != nil)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Path:        protocol.DefaultPath,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastState()
	}()

	if s.config.Stream != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.streamAudio()
		}()
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("WebSocket server listening on %s%s", addr, protocol.DefaultPath)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		s.Stop()
		s.wg.Wait()
		return err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.closeAllClients()
	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Clients returns information about all connected clients
func (s *Server) Clients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	clients := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		c.mu.RLock()
		clients = append(clients, ClientInfo{
			ID:    c.ID,
			Name:  c.Name,
			Roles: append([]string(nil), c.Roles...),
			Codec: c.Codec,
		})
		c.mu.RUnlock()
	}

	return clients
}

// broadcastState sends server/state to every client on a ticker
func (s *Server) broadcastState() {
	ticker := time.NewTicker(s.config.StateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			state := s.currentState()
			s.clientsMu.RLock()
			for _, c := range s.clients {
				s.sendMessage(c, "server/state", state)
			}
			s.clientsMu.RUnlock()
		case <-s.stopChan:
			return
		}
	}
}

// currentState snapshots the controller as a wire message
func (s *Server) currentState() protocol.ServerState {
	st := s.config.Controller.Status()
	return protocol.ServerState{
		Timestamp:  s.getClockMicros(),
		Position:   st.Position,
		Frames:     st.Frames,
		SampleRate: st.SampleRate,
		Channels:   st.Channels,
		Playing:    st.Playing,
		Scrubbing:  st.Scrubbing,
		Velocity:   st.Velocity,
		Volume:     st.Volume,
		Muted:      st.Muted,
		Title:      st.Title,
	}
}

// streamAudio renders the deck and sends chunks to listeners
func (s *Server) streamAudio() {
	log.Printf("Audio streaming started")

	st := s.config.Controller.Status()
	chunkFrames := (st.SampleRate * ChunkDurationMs) / 1000
	samples := make([]float32, chunkFrames*st.Channels)

	ticker := time.NewTicker(time.Duration(ChunkDurationMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.generateAndSendChunk(samples); err != nil {
				log.Printf("Audio streaming stopped: %v", err)
				return
			}
		case <-s.stopChan:
			log.Printf("Audio streaming stopping")
			return
		}
	}
}

// generateAndSendChunk renders one chunk and sends it to every listener
func (s *Server) generateAndSendChunk(samples []float32) error {
	playbackTime := s.getClockMicros() + BufferAheadMs*1000

	n, err := s.config.Stream.ReadFloat(samples)
	if err != nil {
		return err
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		c.mu.RLock()
		enc := c.Encoder
		c.mu.RUnlock()
		if enc == nil {
			continue
		}

		audioData, err := enc.Encode(samples[:n])
		if err != nil {
			log.Printf("Encode error for %s: %v", c.Name, err)
			continue
		}

		if err := s.sendBinary(c, protocol.EncodeAudioChunk(playbackTime, audioData)); err != nil {
			if s.config.Debug {
				log.Printf("Error sending audio to %s: %v", c.Name, err)
			}
		}
	}
	return nil
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	hello, err := readHello(conn)
	if err != nil {
		log.Printf("Handshake failed: %v", err)
		return
	}

	log.Printf("Client hello: %s (ID: %s, Roles: %v)", hello.Name, hello.ClientID, hello.SupportedRoles)

	c := &client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		Roles:    s.activateRoles(hello.SupportedRoles),
		Support:  hello.ListenerV1Support,
		sendChan: make(chan interface{}, 100),
	}

	serverHello := protocol.ServerHello{
		ServerID:    s.serverID,
		Name:        s.config.Name,
		Version:     ProtocolVersion,
		ActiveRoles: c.Roles,
	}

	// server/hello must be queued before the broadcaster can see the client
	s.clientsMu.Lock()
	if _, exists := s.clients[hello.ClientID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected, rejecting duplicate", hello.ClientID)
		return
	}
	if err := s.sendMessage(c, "server/hello", serverHello); err != nil {
		s.clientsMu.Unlock()
		log.Printf("Error sending server hello: %v", err)
		return
	}
	s.clients[c.ID] = c
	s.clientsMu.Unlock()

	defer func() {
		s.removeClient(c)
		log.Printf("Client disconnected: %s", c.Name)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	s.sendMessage(c, "server/state", s.currentState())

	if s.hasRole(c, "listener") {
		s.addClientToStream(c)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleClientMessage(c, data)
	}
}

// readHello waits for and validates client/hello
func readHello(conn *websocket.Conn) (protocol.ClientHello, error) {
	var hello protocol.ClientHello

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return hello, fmt.Errorf("error reading hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return hello, fmt.Errorf("error unmarshaling message: %w", err)
	}

	if msg.Type != "client/hello" {
		return hello, fmt.Errorf("expected client/hello, got %s", msg.Type)
	}

	if err := protocol.DecodePayload(msg.Payload, &hello); err != nil {
		return hello, fmt.Errorf("error decoding client hello: %w", err)
	}

	if hello.ClientID == "" || hello.Name == "" {
		return hello, fmt.Errorf("client hello missing required fields")
	}

	return hello, nil
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}

			switch v := msg.(type) {
			case []byte:
				c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := c.Conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					return
				}
			default:
				data, err := json.Marshal(v)
				if err != nil {
					continue
				}
				c.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(c *client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	if msg.Type == "client/goodbye" {
		var goodbye protocol.ClientGoodbye
		if err := protocol.DecodePayload(msg.Payload, &goodbye); err == nil {
			log.Printf("Client %s goodbye: %s", c.Name, goodbye.Reason)
		}
		return
	}

	if !s.hasRole(c, "controller") {
		log.Printf("Ignoring %s from %s: not a controller", msg.Type, c.Name)
		return
	}

	ctl := s.config.Controller

	switch msg.Type {
	case "scrub/start":
		var start protocol.ScrubStart
		if err := protocol.DecodePayload(msg.Payload, &start); err != nil {
			log.Printf("Bad scrub/start from %s: %v", c.Name, err)
			return
		}
		if start.Position != nil {
			ctl.Seek(*start.Position)
		}
		s.claimGesture(c)
		ctl.BeginScrub()

	case "scrub/move":
		var move protocol.ScrubMove
		if err := protocol.DecodePayload(msg.Payload, &move); err != nil {
			log.Printf("Bad scrub/move from %s: %v", c.Name, err)
			return
		}
		s.claimGesture(c)
		ctl.ScrubTo(move.Position, move.Velocity)

	case "scrub/end":
		s.releaseGesture(c, false)

	case "transport/command":
		var cmd protocol.TransportCommand
		if err := protocol.DecodePayload(msg.Payload, &cmd); err != nil {
			log.Printf("Bad transport/command from %s: %v", c.Name, err)
			return
		}
		s.handleTransportCommand(c, cmd)

	default:
		if s.config.Debug {
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

// handleTransportCommand applies a normal playback command
func (s *Server) handleTransportCommand(c *client, cmd protocol.TransportCommand) {
	ctl := s.config.Controller

	switch cmd.Command {
	case protocol.CommandPlay:
		ctl.Play()
	case protocol.CommandPause:
		ctl.Pause()
	case protocol.CommandToggle:
		ctl.Toggle()
	case protocol.CommandSeek:
		ctl.Seek(cmd.Position)
	case protocol.CommandSkip:
		ctl.Skip(cmd.Seconds)
	case protocol.CommandVolume:
		ctl.SetVolume(cmd.Volume)
	case protocol.CommandMute:
		ctl.SetMuted(cmd.Mute)
	default:
		log.Printf("Unknown transport command from %s: %s", c.Name, cmd.Command)
		return
	}

	if s.config.Debug {
		log.Printf("Client %s: %s", c.Name, cmd.Command)
	}
}

// claimGesture records c as the client driving the scrub
func (s *Server) claimGesture(c *client) {
	s.scrubMu.Lock()
	s.scrubOwner = c.ID
	s.scrubMu.Unlock()
}

// releaseGesture ends the scrub if c owns it. When onlyOwner is false any
// controller may end it.
func (s *Server) releaseGesture(c *client, onlyOwner bool) {
	s.scrubMu.Lock()
	owner := s.scrubOwner
	if onlyOwner && owner != c.ID {
		s.scrubMu.Unlock()
		return
	}
	s.scrubOwner = ""
	s.scrubMu.Unlock()

	s.config.Controller.EndScrub()
	if onlyOwner {
		log.Printf("Ended scrub left open by %s", c.Name)
	}
}

// addClientToStream negotiates a codec and starts the listener stream
func (s *Server) addClientToStream(c *client) {
	st := s.config.Controller.Status()
	codec := negotiateCodec(c.Support, st.SampleRate)

	format := audio.Format{
		Codec:      codec,
		SampleRate: st.SampleRate,
		Channels:   st.Channels,
		BitDepth:   StreamBitDepth,
	}

	enc, err := encode.New(format)
	if err != nil && codec != "pcm" {
		log.Printf("Failed to create %s encoder for %s, falling back to PCM: %v", codec, c.Name, err)
		format.Codec = "pcm"
		enc, err = encode.New(format)
	}
	if err != nil {
		log.Printf("Failed to create encoder for %s: %v", c.Name, err)
		return
	}

	c.mu.Lock()
	c.Codec = format.Codec
	c.Encoder = enc
	c.mu.Unlock()

	log.Printf("Added listener %s with codec %s", c.Name, format.Codec)

	s.sendMessage(c, "stream/start", protocol.StreamStart{
		Codec:      format.Codec,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitDepth:   format.BitDepth,
	})
}

// removeClient removes a client
func (s *Server) removeClient(c *client) {
	s.releaseGesture(c, true)

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[c.ID]; !ok {
		return
	}
	delete(s.clients, c.ID)
	s.closeClient(c)
}

// closeAllClients drops every client on shutdown
func (s *Server) closeAllClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for id, c := range s.clients {
		c.Conn.Close()
		s.closeClient(c)
		delete(s.clients, id)
	}
}

// closeClient releases a client's encoder and writer (must hold clientsMu)
func (s *Server) closeClient(c *client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.Encoder != nil {
		c.Encoder.Close()
		c.Encoder = nil
	}
	close(c.sendChan)
}

// negotiateCodec selects the stream codec from listener capabilities
func negotiateCodec(support *protocol.ListenerV1Support, sourceRate int) string {
	if support == nil {
		return "pcm"
	}

	// Prioritize PCM at native rate
	for _, format := range support.SupportedFormats {
		if format.Codec == "pcm" && format.SampleRate == sourceRate {
			return "pcm"
		}
	}

	for _, format := range support.SupportedFormats {
		if format.Codec == "opus" && sourceRate == 48000 {
			return "opus"
		}
	}

	return "pcm"
}

// sendMessage queues a JSON message to a client
func (s *Server) sendMessage(c *client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("client closed")
	}

	select {
	case c.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// sendBinary queues binary data to a client
func (s *Server) sendBinary(c *client, data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("client closed")
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// getClockMicros returns the server clock in microseconds
func (s *Server) getClockMicros() int64 {
	return time.Since(s.clockStart).Microseconds()
}

// hasRole checks if a client has a specific role (handles versioned roles)
func (s *Server) hasRole(c *client, role string) bool {
	for _, r := range c.Roles {
		if r == role || strings.HasPrefix(r, role+"@") {
			return true
		}
	}
	return false
}

// activateRoles returns the roles this server grants from the client's list
func (s *Server) activateRoles(supportedRoles []string) []string {
	activated := make([]string, 0, len(supportedRoles))
	seen := make(map[string]bool)

	for _, role := range supportedRoles {
		family := role
		if idx := strings.Index(role, "@"); idx > 0 {
			family = role[:idx]
		}
		if seen[family] {
			continue
		}

		switch family {
		case "controller":
		case "listener":
			if s.config.Stream == nil {
				continue
			}
		default:
			continue
		}
		seen[family] = true
		activated = append(activated, role)
	}
	return activated
}
