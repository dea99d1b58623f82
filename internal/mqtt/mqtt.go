// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"strconv"
	"time"
)

// Topic is the MQTT topic for detection and range events.
const Topic = "sensors/radar/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "sensors/radar/system"

// EventType identifies a radar event.
type EventType string

const (
	EventDetected   EventType = "DETECTED"
	EventCleared    EventType = "CLEARED"
	EventRangeSet   EventType = "RANGE_SET"
	EventRangeReset EventType = "RANGE_RESET"
)

// Event is a radar event to publish.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Angle     int
	Distance  float64 // cm
	Threshold float64 // cm
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a radar event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown,
// periodic telemetry).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "TELEMETRY"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Radar RadarPayload `json:"radar"`
}

// RadarPayload contains the radar event details.
type RadarPayload struct {
	Timestamp string      `json:"timestamp"`
	Event     string      `json:"event"`
	Angle     int         `json:"angle"`
	Distance  json.Number `json:"distance_cm"`
	Threshold json.Number `json:"threshold_cm"`
}

// FormatPayload creates the JSON payload for a radar event. Distances carry
// one fractional digit, matching the telemetry contract.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Radar: RadarPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Angle:     event.Angle,
			Distance:  json.Number(strconv.FormatFloat(event.Distance, 'f', 1, 64)),
			Threshold: json.Number(strconv.FormatFloat(event.Threshold, 'f', 1, 64)),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
