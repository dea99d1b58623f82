// Package telemetry provides a thread-safe snapshot of the radar state for
// the HTTP server and the MQTT republisher. The control loop writes once
// per cycle; readers get a value copy and never block the loop.
package telemetry

import (
	"sync"
	"time"

	"github.com/sweeney/radar-sensor/internal/rangecfg"
)

// Counts tracks event totals since startup.
type Counts struct {
	Detections   int
	Clears       int
	RangeChanges int
	Resets       int
}

// Config contains daemon configuration for display.
type Config struct {
	SettleMs    int64
	TelemetryMs int64
	Broker      string
	HTTPAddr    string
	DBPath      string
	RunID       string
}

// NetworkInfo contains network state reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Snapshot is a point-in-time view of the radar state. It is a value
// type — safe to use after the lock is released. "Latest value wins":
// there is no history here.
type Snapshot struct {
	Angle         int
	Distance      float64 // cm
	Threshold     float64 // cm
	Latched       bool
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// State names the detection state for display.
func (s Snapshot) State() string {
	if s.Latched {
		return "DETECTING"
	}
	return "SCANNING"
}

// Tracker holds mutable radar state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// The initial snapshot is well-formed before any scan cycle completes:
// angle 0, distance 0, threshold at the lower limit.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Threshold: rangecfg.MinLimit,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update publishes one cycle's result. Called from the control loop on
// every cycle.
func (t *Tracker) Update(angle int, distance, threshold float64, latched bool, counts Counts) {
	t.mu.Lock()
	t.snap.Angle = angle
	t.snap.Distance = distance
	t.snap.Threshold = threshold
	t.snap.Latched = latched
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the radar state. The Now field
// is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
