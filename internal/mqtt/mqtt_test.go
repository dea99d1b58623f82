package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Type:      EventDetected,
		Angle:     45,
		Distance:  12.04,
		Threshold: 50,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Radar.Event != "DETECTED" {
		t.Errorf("Event: got %q, want DETECTED", parsed.Radar.Event)
	}
	if parsed.Radar.Angle != 45 {
		t.Errorf("Angle: got %d, want 45", parsed.Radar.Angle)
	}
	if parsed.Radar.Distance != "12.0" {
		t.Errorf("Distance: got %s, want 12.0 (one fractional digit)", parsed.Radar.Distance)
	}
	if parsed.Radar.Threshold != "50.0" {
		t.Errorf("Threshold: got %s, want 50.0", parsed.Radar.Threshold)
	}
	if parsed.Radar.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("Timestamp: got %q", parsed.Radar.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"state":"SCANNING"}}`)
	event := SystemEvent{Event: "STARTUP", RawPayload: raw}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("RawPayload not passed through: got %s", payload)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	event := Event{Type: EventCleared, Angle: 90, Distance: 400, Threshold: 50}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(f.Events))
	}
	if f.Events[0].Type != EventCleared {
		t.Errorf("Type: got %s, want CLEARED", f.Events[0].Type)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("recorded %d payloads, want 1", len(f.Payloads))
	}
}

func TestFakePublisherPublishError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker unavailable")

	if err := f.Publish(Event{Type: EventDetected}); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(Event{Type: EventDetected})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Connected = true

	f.Reset()

	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("Reset should clear recorded events")
	}
	if f.Connected {
		t.Error("Reset should clear connection state")
	}
}
