// Command radar-sensor sweeps an ultrasonic ranging head across a bounded
// arc, latches an alert when an object enters the configured detection
// radius, and republishes telemetry over HTTP and MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/radar-sensor/internal/display"
	"github.com/sweeney/radar-sensor/internal/eventlog"
	"github.com/sweeney/radar-sensor/internal/hw"
	"github.com/sweeney/radar-sensor/internal/latch"
	"github.com/sweeney/radar-sensor/internal/mqtt"
	"github.com/sweeney/radar-sensor/internal/rangecfg"
	"github.com/sweeney/radar-sensor/internal/ranging"
	"github.com/sweeney/radar-sensor/internal/sweep"
	"github.com/sweeney/radar-sensor/internal/telemetry"
	"github.com/sweeney/radar-sensor/internal/web"
)

// options collects the flag-configurable settings.
type options struct {
	settle         time.Duration
	hold           time.Duration
	telemetryEvery time.Duration
	broker         string
	httpAddr       string
	dbPath         string
	lcdPort        string
	lcdBaud        int
	chipName       string
	pinTrig        int
	pinEcho        int
	pinLED         int
	pinBuzzer      int
	pinEncClk      int
	pinEncData     int
	pinReset       int
	pwmChip        int
	pwmChannel     int
	printRange     bool
}

func main() {
	var opts options
	flag.DurationVar(&opts.settle, "settle", 200*time.Millisecond, "Actuator settle delay (also the cycle period)")
	flag.DurationVar(&opts.hold, "hold", time.Second, "Transient display banner hold")
	flag.DurationVar(&opts.telemetryEvery, "telemetry", time.Minute, "MQTT telemetry republish interval (0 to disable)")
	flag.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&opts.httpAddr, "http", ":80", "HTTP telemetry address (empty to disable)")
	flag.StringVar(&opts.dbPath, "db", "radar-events.db", "Event log sqlite path (empty to disable)")
	flag.StringVar(&opts.lcdPort, "lcd", "", "Serial LCD port, e.g. /dev/ttyAMA0 (empty to disable)")
	flag.IntVar(&opts.lcdBaud, "lcd-baud", 9600, "Serial LCD baud rate")
	flag.StringVar(&opts.chipName, "gpiochip", hw.DefaultChip, "GPIO character device")
	flag.IntVar(&opts.pinTrig, "pin-trig", hw.DefaultPinTrig, "BCM pin for the ranging trigger")
	flag.IntVar(&opts.pinEcho, "pin-echo", hw.DefaultPinEcho, "BCM pin for the ranging echo")
	flag.IntVar(&opts.pinLED, "pin-led", hw.DefaultPinLED, "BCM pin for the alert light")
	flag.IntVar(&opts.pinBuzzer, "pin-buzzer", hw.DefaultPinBuzzer, "BCM pin for the alert sounder")
	flag.IntVar(&opts.pinEncClk, "pin-enc-clk", hw.DefaultPinEncClk, "BCM pin for the encoder clock")
	flag.IntVar(&opts.pinEncData, "pin-enc-data", hw.DefaultPinEncData, "BCM pin for the encoder data")
	flag.IntVar(&opts.pinReset, "pin-reset", hw.DefaultPinReset, "BCM pin for the range reset button")
	flag.IntVar(&opts.pwmChip, "pwm-chip", 0, "PWM sysfs chip number for the servo")
	flag.IntVar(&opts.pwmChannel, "pwm-channel", 0, "PWM sysfs channel number for the servo")
	flag.BoolVar(&opts.printRange, "print-range", false, "Measure once, print the distance, and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	ranger, err := hw.NewRealRanger(opts.chipName, opts.pinTrig, opts.pinEcho)
	if err != nil {
		return fmt.Errorf("init ranger: %w", err)
	}
	defer ranger.Close()

	filter := ranging.NewFilter(ranger, nil)

	// Print range mode
	if opts.printRange {
		fmt.Printf("%.1f cm\n", filter.Measure())
		return nil
	}

	servo, err := hw.NewRealServo(opts.pwmChip, opts.pwmChannel)
	if err != nil {
		return fmt.Errorf("init servo: %w", err)
	}
	defer servo.Close()

	alerts, err := hw.NewRealAlerts(opts.chipName, opts.pinLED, opts.pinBuzzer)
	if err != nil {
		return fmt.Errorf("init alerts: %w", err)
	}
	defer alerts.Close()

	// The encoder handler is the only writer of the counter cell; the
	// configurator reads it once per cycle.
	var cell atomic.Int64
	encoder, err := hw.NewRealEncoder(opts.chipName, opts.pinEncClk, opts.pinEncData, &cell)
	if err != nil {
		return fmt.Errorf("init encoder: %w", err)
	}
	defer encoder.Close()

	button, err := hw.NewRealButton(opts.chipName, opts.pinReset)
	if err != nil {
		return fmt.Errorf("init reset button: %w", err)
	}
	defer button.Close()

	var disp display.Display = display.Nop{}
	if opts.lcdPort != "" {
		sd, err := display.NewSerialDisplay(opts.lcdPort, opts.lcdBaud)
		if err != nil {
			return fmt.Errorf("init display: %w", err)
		}
		disp = sd
	}
	defer disp.Close()

	runID := uuid.NewString()

	publisher := mqtt.NewRealPublisher(opts.broker, "radar-sensor-"+runID[:8])
	defer publisher.Close()

	var store *eventlog.Store
	if opts.dbPath != "" {
		store, err = eventlog.Open(opts.dbPath, runID)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer store.Close()
	}

	startTime := time.Now()
	tracker := telemetry.NewTracker(startTime, telemetry.Config{
		SettleMs:    opts.settle.Milliseconds(),
		TelemetryMs: opts.telemetryEvery.Milliseconds(),
		Broker:      opts.broker,
		HTTPAddr:    opts.httpAddr,
		DBPath:      opts.dbPath,
		RunID:       runID,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: telemetry.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP telemetry server
	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http telemetry server listening on %s", opts.httpAddr)
	}

	// Ready banner; the second line carries the address the viewer polls.
	addr := opts.httpAddr
	if net := readNetworkInfo(); net != nil && net.IP != "" {
		addr = net.IP + opts.httpAddr
	}
	disp.Show("Radar Ready", addr)

	log.Printf("started: settle=%v broker=%s telemetry=%v run=%s", opts.settle, opts.broker, opts.telemetryEvery, runID)

	ticker := time.NewTicker(opts.settle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	c := &controller{
		servo:          servo,
		alerts:         alerts,
		button:         button,
		filter:         filter,
		sweeper:        sweep.NewController(sweep.DefaultStep),
		cfg:            rangecfg.New(&cell),
		disp:           disp,
		pub:            publisher,
		mqttStatus:     publisher,
		tracker:        tracker,
		store:          store,
		hold:           opts.hold,
		settle:         opts.settle,
		telemetryEvery: opts.telemetryEvery,
		lastTelemetry:  startTime,
		pause:          time.Sleep,
		now:            time.Now,
	}
	return c.run(ticker.C, sigCh)
}

// controller bundles the collaborators of the fixed-period scan cycle.
// All state is owned by the single loop goroutine; the one exception is the
// encoder counter cell inside the configurator, which tolerates a
// one-cycle-stale read.
type controller struct {
	servo      hw.Servo
	alerts     hw.Alerts
	button     hw.Button
	filter     *ranging.Filter
	sweeper    *sweep.Controller
	cfg        *rangecfg.Configurator
	lat        latch.Latch
	disp       display.Display
	pub        mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *telemetry.Tracker
	store      *eventlog.Store // nil disables the event log

	counts         telemetry.Counts
	settle         time.Duration
	hold           time.Duration
	telemetryEvery time.Duration
	lastTelemetry  time.Time
	pause          func(time.Duration)
	now            func() time.Time
}

// run drives the control loop until a shutdown signal arrives. Once a cycle
// starts it runs to completion; there is no cancellation inside a cycle.
func (c *controller) run(tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			reason := "UNKNOWN"
			if s == syscall.SIGINT {
				reason = "SIGINT"
			} else if s == syscall.SIGTERM {
				reason = "SIGTERM"
			}
			c.setAlerts(false)
			c.disp.Clear()
			snap := c.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  c.now(),
				Event:      "SHUTDOWN",
				Reason:     reason,
				Retained:   true,
				RawPayload: telemetry.FormatStatusEvent(snap, "SHUTDOWN", reason),
			}
			if err := c.pub.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			c.cycle()
		}
	}
}

// cycle runs one fixed-period iteration: service the reset button,
// reconcile the threshold, command and settle the head at the current
// angle, measure, evaluate the latch, publish the snapshot, and advance the
// sweep only while clear.
func (c *controller) cycle() {
	t := c.now()

	pressed, err := c.button.Pressed()
	if err != nil {
		log.Printf("reset button read error: %v", err)
		pressed = false
	}
	if c.cfg.HandleReset(pressed) {
		c.counts.Resets++
		log.Printf("range reset to %.0f cm", c.cfg.Threshold())
		c.disp.Show("Range Reset", fmt.Sprintf("%.0f cm", c.cfg.Threshold()))
		c.publishRange(mqtt.EventRangeReset, t)
		c.pause(c.hold)
	}
	if threshold, changed := c.cfg.Reconcile(); changed {
		c.counts.RangeChanges++
		log.Printf("range set to %.0f cm", threshold)
		c.disp.Show("Range", fmt.Sprintf("%.0f cm", threshold))
		c.publishRange(mqtt.EventRangeSet, t)
		c.pause(c.hold)
	}

	// Command the head to the current (not yet advanced) angle. There is
	// no position feedback; the settle pause stands in for it.
	angle := c.sweeper.Angle()
	if err := c.servo.SetAngle(angle); err != nil {
		log.Printf("servo command error: %v", err)
	}
	c.pause(c.settle)

	distance := c.filter.Measure()
	threshold := c.cfg.Threshold()

	switch c.lat.Observe(distance, threshold) {
	case latch.Entered:
		c.counts.Detections++
		log.Printf("object detected: %.1f cm at %d deg", distance, angle)
		c.setAlerts(true)
		c.disp.Show("Object Detected!", fmt.Sprintf("%.1f cm @ %ddeg", distance, angle))
		c.record(mqtt.EventDetected, angle, distance, threshold, t)
	case latch.Exited:
		c.counts.Clears++
		log.Printf("object cleared: %.1f cm at %d deg", distance, angle)
		c.setAlerts(false)
		c.disp.Show("Object Cleared", "")
		c.record(mqtt.EventCleared, angle, distance, threshold, t)
		c.pause(c.hold)
	case latch.None:
		if !c.lat.Latched() {
			c.disp.Show(fmt.Sprintf("Scanning %3ddeg", angle), fmt.Sprintf("%.1f cm", distance))
		}
	}

	c.tracker.Update(angle, distance, threshold, c.lat.Latched(), c.counts)
	if c.mqttStatus != nil {
		c.tracker.SetMQTTConnected(c.mqttStatus.IsConnected())
	}
	c.maybeTelemetry(t)

	// The head holds its angle while latched; re-measuring continues so
	// the clear transition is observed as soon as the obstruction moves.
	if !c.lat.Latched() {
		c.sweeper.Advance()
	}
}

// record publishes a detection transition and appends it to the event log.
func (c *controller) record(typ mqtt.EventType, angle int, distance, threshold float64, t time.Time) {
	event := mqtt.Event{
		Timestamp: t,
		Type:      typ,
		Angle:     angle,
		Distance:  distance,
		Threshold: threshold,
	}
	if err := c.pub.Publish(event); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}
	if c.store != nil {
		if err := c.store.Record(string(typ), angle, distance, threshold, t); err != nil {
			log.Printf("event log error: %v", err)
		}
	}
}

// publishRange records a threshold change or reset.
func (c *controller) publishRange(typ mqtt.EventType, t time.Time) {
	c.record(typ, c.sweeper.Angle(), c.tracker.Snapshot().Distance, c.cfg.Threshold(), t)
}

func (c *controller) setAlerts(on bool) {
	if err := c.alerts.Set(on); err != nil {
		log.Printf("alert output error: %v", err)
	}
}

// maybeTelemetry republishes the full status over MQTT at the configured
// interval (the heartbeat of the scan loop).
func (c *controller) maybeTelemetry(t time.Time) {
	if c.telemetryEvery <= 0 {
		return
	}
	if t.Sub(c.lastTelemetry) < c.telemetryEvery {
		return
	}
	c.lastTelemetry = t

	if net := readNetworkInfo(); net != nil {
		c.tracker.SetNetwork(net)
	}
	snap := c.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  t,
		Event:      "TELEMETRY",
		RawPayload: telemetry.FormatStatusEvent(snap, "TELEMETRY", ""),
	}
	if err := c.pub.PublishSystem(event); err != nil {
		log.Printf("telemetry publish error: %v", err)
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *telemetry.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &telemetry.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
