// ABOUTME: Tests for scrub protocol message types
// ABOUTME: Verifies wire names and binary chunk framing
package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClientHelloWireFormat(t *testing.T) {
	hello := ClientHello{
		ClientID:       "test-id",
		Name:           "Test Remote",
		Version:        1,
		SupportedRoles: []string{RoleController, RoleListener},
		DeviceInfo: &DeviceInfo{
			ProductName:     "Test Product",
			Manufacturer:    "Test Mfg",
			SoftwareVersion: "0.1.0",
		},
		ListenerV1Support: &ListenerV1Support{
			SupportedFormats: []AudioFormat{
				{Codec: "opus", Channels: 2, SampleRate: 48000, BitDepth: 16},
				{Codec: "pcm", Channels: 2, SampleRate: 48000, BitDepth: 16},
			},
			BufferCapacity: 1048576,
		},
	}

	data, err := json.Marshal(Message{Type: "client/hello", Payload: hello})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	for _, key := range []string{`"type":"client/hello"`, `"listener@v1_support"`, `"supported_roles":["controller@v1","listener@v1"]`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}

	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	var got ClientHello
	if err := DecodePayload(decoded.Payload, &got); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if got.ListenerV1Support == nil || len(got.ListenerV1Support.SupportedFormats) != 2 {
		t.Errorf("expected listener support to survive, got %+v", got.ListenerV1Support)
	}
}

func TestScrubStartOptionalPosition(t *testing.T) {
	data, err := json.Marshal(ScrubStart{})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("expected empty object, got %s", data)
	}

	pos := 4800
	data, err = json.Marshal(ScrubStart{Position: &pos})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(data) != `{"position":4800}` {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestDecodePayloadScrubMove(t *testing.T) {
	raw := `{"type":"scrub/move","payload":{"position":96000,"velocity":250.5}}`

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	var move ScrubMove
	if err := DecodePayload(msg.Payload, &move); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if move.Position != 96000 || move.Velocity != 250.5 {
		t.Errorf("unexpected move %+v", move)
	}
}

func TestAudioChunkFraming(t *testing.T) {
	chunk := EncodeAudioChunk(123456789, []byte{1, 2, 3})
	if len(chunk) != BinaryMessageHeaderSize+3 {
		t.Fatalf("expected %d bytes, got %d", BinaryMessageHeaderSize+3, len(chunk))
	}
	if chunk[0] != AudioChunkMessageType {
		t.Errorf("expected type %d, got %d", AudioChunkMessageType, chunk[0])
	}

	parsed, err := ParseAudioChunk(chunk)
	if err != nil {
		t.Fatalf("ParseAudioChunk failed: %v", err)
	}
	if parsed.Timestamp != 123456789 {
		t.Errorf("expected timestamp 123456789, got %d", parsed.Timestamp)
	}
	if string(parsed.Data) != string([]byte{1, 2, 3}) {
		t.Errorf("unexpected data %v", parsed.Data)
	}
}

func TestParseAudioChunkErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{4, 0, 0}},
		{"wrong type", []byte{9, 0, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAudioChunk(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
