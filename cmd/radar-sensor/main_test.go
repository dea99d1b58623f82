package main

import (
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/radar-sensor/internal/display"
	"github.com/sweeney/radar-sensor/internal/hw"
	"github.com/sweeney/radar-sensor/internal/mqtt"
	"github.com/sweeney/radar-sensor/internal/rangecfg"
	"github.com/sweeney/radar-sensor/internal/ranging"
	"github.com/sweeney/radar-sensor/internal/sweep"
	"github.com/sweeney/radar-sensor/internal/telemetry"
)

// fakeClock hands out times advancing by step per call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

// pings scripts one filtered distance per cycle: the median filter draws
// three samples per Measure, so each distance is repeated three times.
func pings(cm ...float64) *hw.FakePinger {
	var samples []hw.PingSample
	for _, d := range cm {
		tof := time.Duration(d * 2 / 0.0343 * float64(time.Microsecond))
		for i := 0; i < 3; i++ {
			samples = append(samples, hw.PingSample{TOF: tof})
		}
	}
	return hw.NewFakePinger(samples)
}

type fixture struct {
	ctl    *controller
	cell   *atomic.Int64
	clock  *fakeClock
	servo  *hw.FakeServo
	alerts *hw.FakeAlerts
	button *hw.FakeButton
	disp   *display.FakeDisplay
	pub    *mqtt.FakePublisher
}

func newFixture(pinger *hw.FakePinger) *fixture {
	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		cell:   &atomic.Int64{},
		clock:  &fakeClock{t: start, step: time.Second},
		servo:  &hw.FakeServo{},
		alerts: &hw.FakeAlerts{},
		button: &hw.FakeButton{},
		disp:   display.NewFakeDisplay(),
		pub:    mqtt.NewFakePublisher(),
	}
	f.ctl = &controller{
		servo:         f.servo,
		alerts:        f.alerts,
		button:        f.button,
		filter:        ranging.NewFilter(pinger, func(time.Duration) {}),
		sweeper:       sweep.NewController(sweep.DefaultStep),
		cfg:           rangecfg.New(f.cell),
		disp:          f.disp,
		pub:           f.pub,
		mqttStatus:    f.pub,
		tracker:       telemetry.NewTracker(start, telemetry.Config{}),
		settle:        200 * time.Millisecond,
		hold:          time.Second,
		lastTelemetry: start,
		pause:         func(time.Duration) {},
		now:           f.clock.now,
	}
	return f
}

// cycles runs n iterations by calling into the loop body directly.
func (f *fixture) cycles(n int) {
	for i := 0; i < n; i++ {
		f.ctl.cycle()
	}
}

func eventsOfType(events []mqtt.Event, typ mqtt.EventType) []mqtt.Event {
	var out []mqtt.Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestScanAdvancesWhileClear(t *testing.T) {
	f := newFixture(pings(100))
	f.cycles(3)

	want := []int{0, 5, 10}
	if len(f.servo.Angles) != len(want) {
		t.Fatalf("servo angles: got %v, want %v", f.servo.Angles, want)
	}
	for i, a := range want {
		if f.servo.Angles[i] != a {
			t.Errorf("servo angle %d: got %d, want %d", i, f.servo.Angles[i], a)
		}
	}
	if len(f.pub.Events) != 0 {
		t.Errorf("published %d events while clear, want 0", len(f.pub.Events))
	}
	if snap := f.ctl.tracker.Snapshot(); snap.Angle != 10 {
		t.Errorf("snapshot angle: got %d, want 10", snap.Angle)
	}
}

func TestDetectionLatchesAndHoldsAngle(t *testing.T) {
	// Clear, then an object at 20 cm for two cycles, then gone.
	f := newFixture(pings(100, 20, 20, 100))
	f.cycles(4)

	// The head advances after the clear cycle, then holds at 5 degrees for
	// the whole detection.
	want := []int{0, 5, 5, 5}
	for i, a := range want {
		if f.servo.Angles[i] != a {
			t.Errorf("servo angle %d: got %d, want %d", i, f.servo.Angles[i], a)
		}
	}

	detected := eventsOfType(f.pub.Events, mqtt.EventDetected)
	cleared := eventsOfType(f.pub.Events, mqtt.EventCleared)
	if len(detected) != 1 {
		t.Fatalf("DETECTED events: got %d, want 1", len(detected))
	}
	if len(cleared) != 1 {
		t.Fatalf("CLEARED events: got %d, want 1", len(cleared))
	}
	if detected[0].Angle != 5 {
		t.Errorf("detection angle: got %d, want 5", detected[0].Angle)
	}

	wantAlerts := []bool{true, false}
	if len(f.alerts.Changes) != len(wantAlerts) {
		t.Fatalf("alert changes: got %v, want %v", f.alerts.Changes, wantAlerts)
	}
	for i, on := range wantAlerts {
		if f.alerts.Changes[i] != on {
			t.Errorf("alert change %d: got %v, want %v", i, f.alerts.Changes[i], on)
		}
	}

	snap := f.ctl.tracker.Snapshot()
	if snap.Latched {
		t.Error("still latched after the object cleared")
	}
	if snap.Counts.Detections != 1 || snap.Counts.Clears != 1 {
		t.Errorf("counts: got %+v, want 1 detection and 1 clear", snap.Counts)
	}
}

func TestDetectionBannerShown(t *testing.T) {
	f := newFixture(pings(100, 20))
	f.cycles(2)

	line1, _ := f.disp.Last()
	if line1 != "Object Detected!" {
		t.Errorf("display line 1: got %q, want %q", line1, "Object Detected!")
	}
}

func TestEncoderChangesThreshold(t *testing.T) {
	f := newFixture(pings(100))
	f.cycles(1)

	// Four clicks clockwise between cycles.
	f.cell.Add(4)
	f.cycles(1)

	if got := f.ctl.cfg.Threshold(); got != 50 {
		t.Fatalf("threshold: got %v, want 50", got)
	}
	set := eventsOfType(f.pub.Events, mqtt.EventRangeSet)
	if len(set) != 1 {
		t.Fatalf("RANGE_SET events: got %d, want 1", len(set))
	}
	if set[0].Threshold != 50 {
		t.Errorf("RANGE_SET threshold: got %v, want 50", set[0].Threshold)
	}
	if snap := f.ctl.tracker.Snapshot(); snap.Counts.RangeChanges != 1 {
		t.Errorf("range change count: got %d, want 1", snap.Counts.RangeChanges)
	}
}

func TestResetFiresOnceWhileHeld(t *testing.T) {
	f := newFixture(pings(100))
	f.cell.Add(10) // threshold up to 80 on the first cycle
	f.cycles(1)
	if got := f.ctl.cfg.Threshold(); got != 80 {
		t.Fatalf("threshold before reset: got %v, want 80", got)
	}

	// Held for two cycles, released, pressed again.
	f.button.Levels = []bool{true, true, false, true, false}
	f.cycles(5)

	resets := eventsOfType(f.pub.Events, mqtt.EventRangeReset)
	if len(resets) != 2 {
		t.Fatalf("RANGE_RESET events: got %d, want 2", len(resets))
	}
	if got := f.ctl.cfg.Threshold(); got != rangecfg.MinLimit {
		t.Errorf("threshold after reset: got %v, want %v", got, rangecfg.MinLimit)
	}
	if snap := f.ctl.tracker.Snapshot(); snap.Counts.Resets != 2 {
		t.Errorf("reset count: got %d, want 2", snap.Counts.Resets)
	}
}

func TestPublishErrorDoesNotStopLoop(t *testing.T) {
	f := newFixture(pings(100, 20, 20))
	f.pub.PublishError = errors.New("broker unreachable")
	f.cycles(3)

	if len(f.servo.Angles) != 3 {
		t.Errorf("servo commands: got %d, want 3", len(f.servo.Angles))
	}
	if snap := f.ctl.tracker.Snapshot(); snap.Counts.Detections != 1 {
		t.Errorf("detections: got %d, want 1", snap.Counts.Detections)
	}
}

func TestTelemetryRepublishInterval(t *testing.T) {
	f := newFixture(pings(100))
	f.ctl.telemetryEvery = 2 * time.Second // clock advances 1s per cycle
	f.cycles(5)

	var telem int
	for _, e := range f.pub.SystemEvents {
		if e.Event == "TELEMETRY" {
			telem++
			if e.RawPayload == nil {
				t.Error("TELEMETRY event without status payload")
			}
		}
	}
	if telem != 2 {
		t.Errorf("TELEMETRY events over 5 cycles: got %d, want 2", telem)
	}
}

func TestShutdownPublishesRetainedEvent(t *testing.T) {
	f := newFixture(pings(100))

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- f.ctl.run(tick, sig) }()

	tick <- time.Time{}
	tick <- time.Time{}
	sig <- syscall.SIGTERM
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(f.pub.SystemEvents) == 0 {
		t.Fatal("no system events published")
	}
	last := f.pub.SystemEvents[len(f.pub.SystemEvents)-1]
	if last.Event != "SHUTDOWN" {
		t.Errorf("last system event: got %q, want SHUTDOWN", last.Event)
	}
	if last.Reason != "SIGTERM" {
		t.Errorf("shutdown reason: got %q, want SIGTERM", last.Reason)
	}
	if !last.Retained {
		t.Error("shutdown event not retained")
	}
	if last.RawPayload == nil {
		t.Error("shutdown event without status payload")
	}
	if f.disp.Cleared != 1 {
		t.Errorf("display cleared %d times, want 1", f.disp.Cleared)
	}
	if f.alerts.On {
		t.Error("alerts still on after shutdown")
	}
}

func TestReadNetworkInfoUnset(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("got %+v, want nil", info)
	}
}

func TestReadNetworkInfo(t *testing.T) {
	t.Setenv(envNetworkStatus, "online")
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.42")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "workshop")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("got nil, want info")
	}
	if info.Status != "online" || info.Type != "wifi" || info.IP != "192.168.1.42" {
		t.Errorf("network info: got %+v", info)
	}
	if info.SSID != "workshop" {
		t.Errorf("SSID: got %q, want workshop", info.SSID)
	}
}
