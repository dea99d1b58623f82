package telemetry

import (
	"encoding/json"
	"strconv"
	"time"
)

// DataJSON is the flat record the remote viewer polls: integer degrees and
// distances with exactly one fractional digit.
type DataJSON struct {
	Angle     int         `json:"angle"`
	Distance  json.Number `json:"distance"`
	Threshold json.Number `json:"threshold"`
}

// StatusJSON is the top-level JSON envelope for full status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	Angle         int          `json:"angle"`
	Distance      json.Number  `json:"distance_cm"`
	Threshold     json.Number  `json:"threshold_cm"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Detections   int `json:"detections"`
	Clears       int `json:"clears"`
	RangeChanges int `json:"range_changes"`
	Resets       int `json:"resets"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SettleMs    int64  `json:"settle_ms"`
	TelemetryMs int64  `json:"telemetry_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	DBPath      string `json:"db_path,omitempty"`
	RunID       string `json:"run_id"`
}

// Centimeters formats a distance with exactly one fractional digit, as a
// bare JSON number.
func Centimeters(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', 1, 64))
}

// FormatData renders the viewer record for the /data endpoint.
func FormatData(snap Snapshot) []byte {
	data, _ := json.Marshal(DataJSON{
		Angle:     snap.Angle,
		Distance:  Centimeters(snap.Distance),
		Threshold: Centimeters(snap.Threshold),
	})
	return data
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		State:         snap.State(),
		Angle:         snap.Angle,
		Distance:      Centimeters(snap.Distance),
		Threshold:     Centimeters(snap.Threshold),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Detections:   snap.Counts.Detections,
			Clears:       snap.Counts.Clears,
			RangeChanges: snap.Counts.RangeChanges,
			Resets:       snap.Counts.Resets,
		},
		Config: ConfigJSON{
			SettleMs:    snap.Config.SettleMs,
			TelemetryMs: snap.Config.TelemetryMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			DBPath:      snap.Config.DBPath,
			RunID:       snap.Config.RunID,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
