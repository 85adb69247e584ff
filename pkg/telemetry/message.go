// Package telemetry decodes the UDP wire format emitted by plant
// monitoring devices and computes the stable per-reading fingerprint
// used for ledger-based deduplication downstream.
package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SupportedVersion is the only accepted value of Message.Version.
const SupportedVersion = 1

// Message is a single telemetry datagram as received over UDP.
type Message struct {
	Version     uint8  `json:"version"`
	DeviceUID   string `json:"device_uid"`
	PlantID     string `json:"plant_id"`
	Seq         uint32 `json:"seq"`
	TimestampNs int64  `json:"timestamp_ns"`

	SoilMoisture      *float64 `json:"soil_moisture,omitempty"`
	AmbientLightLux   *float64 `json:"ambient_light_lux,omitempty"`
	AmbientHumidityRh *float64 `json:"ambient_humidity_rh,omitempty"`
	AmbientTempC      *float64 `json:"ambient_temp_c,omitempty"`
}

// DecodeError is returned by Decode when a datagram is rejected.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return e.Reason }

// Decode parses and validates a raw UDP payload. It rejects malformed
// JSON, an unsupported version, and an empty/whitespace-only
// device_uid or plant_id.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, &DecodeError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if m.Version != SupportedVersion {
		return Message{}, &DecodeError{Reason: fmt.Sprintf("unsupported protocol version %d", m.Version)}
	}
	if strings.TrimSpace(m.DeviceUID) == "" {
		return Message{}, &DecodeError{Reason: "device_uid is empty"}
	}
	if strings.TrimSpace(m.PlantID) == "" {
		return Message{}, &DecodeError{Reason: "plant_id is empty"}
	}
	return m, nil
}
