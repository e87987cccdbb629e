// ABOUTME: Scrub protocol message type definitions
// ABOUTME: Defines structs for handshake, gesture, transport and state messages
package protocol

// Versioned roles a client can ask for in client/hello
const (
	RoleController = "controller@v1"
	RoleListener   = "listener@v1"
)

// Transport commands carried by transport/command
const (
	CommandPlay   = "play"
	CommandPause  = "pause"
	CommandToggle = "toggle"
	CommandSeek   = "seek"
	CommandVolume = "volume"
	CommandMute   = "mute"
	CommandSkip   = "skip"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID       string      `json:"client_id"`
	Name           string      `json:"name"`
	Version        int         `json:"version"`
	SupportedRoles []string    `json:"supported_roles"`
	DeviceInfo     *DeviceInfo `json:"device_info,omitempty"`
	// Support objects use versioned keys like "listener@v1_support"
	ListenerV1Support *ListenerV1Support `json:"listener@v1_support,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ListenerV1Support describes which stream formats a listener can decode
type ListenerV1Support struct {
	SupportedFormats []AudioFormat `json:"supported_formats"`
	BufferCapacity   int           `json:"buffer_capacity"`
}

// AudioFormat describes a supported audio format
type AudioFormat struct {
	Codec      string `json:"codec"`
	Channels   int    `json:"channels"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID    string   `json:"server_id"`
	Name        string   `json:"name"`
	Version     int      `json:"version"`
	ActiveRoles []string `json:"active_roles"`
}

// ScrubStart begins a gesture, optionally at an explicit frame. Without a
// position the gesture starts wherever playback is.
type ScrubStart struct {
	Position *int `json:"position,omitempty"`
}

// ScrubMove moves the gesture target. Velocity is in gesture units where
// 100 is real-time speed.
type ScrubMove struct {
	Position int     `json:"position"`
	Velocity float64 `json:"velocity"`
}

// ScrubEnd ends the gesture; playback continues from the scrub position
type ScrubEnd struct{}

// TransportCommand is a normal playback command
type TransportCommand struct {
	Command  string  `json:"command"`
	Position int     `json:"position,omitempty"` // for seek
	Volume   int     `json:"volume,omitempty"`   // for volume
	Mute     bool    `json:"mute,omitempty"`     // for mute
	Seconds  float64 `json:"seconds,omitempty"`  // for skip, negative skips back
}

// ServerState reports where playback is. Sent periodically and after
// every handshake.
type ServerState struct {
	Timestamp  int64   `json:"timestamp"` // Server clock µs
	Position   int     `json:"position"`
	Frames     int     `json:"frames"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Playing    bool    `json:"playing"`
	Scrubbing  bool    `json:"scrubbing"`
	Velocity   float64 `json:"velocity"`
	Volume     int     `json:"volume"`
	Muted      bool    `json:"muted"`
	Title      string  `json:"title,omitempty"`
}

// StreamStart notifies a listener of the stream format
type StreamStart struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth"`
}

// StreamEnd ends the listener stream
type StreamEnd struct{}

// ClientGoodbye is sent before graceful disconnect
type ClientGoodbye struct {
	Reason string `json:"reason"` // "shutdown", "restart", "user_request"
}
