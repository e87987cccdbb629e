// ABOUTME: Helpers for typed access to message payloads
// ABOUTME: Re-decodes the generic JSON payload into a concrete struct
package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodePayload converts a generically decoded payload into v
func DecodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}
