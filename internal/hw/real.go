//go:build linux

package hw

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealRanger fires the trigger pulse and times the echo from GPIO edge
// events on actual hardware.
type RealRanger struct {
	chip   *gpiocdev.Chip
	trig   *gpiocdev.Line
	echo   *gpiocdev.Line
	events chan gpiocdev.LineEvent
}

// NewRealRanger opens the trigger and echo lines on the given chip.
func NewRealRanger(chipName string, pinTrig, pinEcho int) (*RealRanger, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealRanger{chip: chip, events: make(chan gpiocdev.LineEvent, 16)}

	r.trig, err = chip.RequestLine(pinTrig, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request trig pin %d: %w", pinTrig, err)
	}

	r.echo, err = chip.RequestLine(pinEcho,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			select {
			case r.events <- evt:
			default:
			}
		}))
	if err != nil {
		r.trig.Close()
		chip.Close()
		return nil, fmt.Errorf("request echo pin %d: %w", pinEcho, err)
	}

	return r, nil
}

// Ping fires one 10µs trigger pulse and returns the time between the rising
// and falling echo edges, using the kernel event timestamps. Returns
// ErrEchoTimeout if the echo does not complete within EchoTimeout.
func (r *RealRanger) Ping() (time.Duration, error) {
	// Drop edges left over from a previous ping. Single consumer, so a
	// length check is safe here.
	for len(r.events) > 0 {
		<-r.events
	}

	if err := r.trig.SetValue(0); err != nil {
		return 0, fmt.Errorf("clear trig: %w", err)
	}
	time.Sleep(2 * time.Microsecond)
	if err := r.trig.SetValue(1); err != nil {
		return 0, fmt.Errorf("raise trig: %w", err)
	}
	time.Sleep(10 * time.Microsecond)
	if err := r.trig.SetValue(0); err != nil {
		return 0, fmt.Errorf("drop trig: %w", err)
	}

	deadline := time.NewTimer(EchoTimeout)
	defer deadline.Stop()

	var rise time.Duration
	for {
		select {
		case evt := <-r.events:
			if evt.Type == gpiocdev.LineEventRisingEdge {
				rise = evt.Timestamp
			} else if rise != 0 {
				return evt.Timestamp - rise, nil
			}
		case <-deadline.C:
			return 0, ErrEchoTimeout
		}
	}
}

// Close releases the ranging lines.
func (r *RealRanger) Close() error {
	var errs []error
	if err := r.echo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close echo: %w", err))
	}
	if err := r.trig.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close trig: %w", err))
	}
	if err := r.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealAlerts drives the alert light and sounder output lines.
type RealAlerts struct {
	chip   *gpiocdev.Chip
	led    *gpiocdev.Line
	buzzer *gpiocdev.Line
}

// NewRealAlerts opens the LED and buzzer lines, both initially off.
func NewRealAlerts(chipName string, pinLED, pinBuzzer int) (*RealAlerts, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	led, err := chip.RequestLine(pinLED, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request led pin %d: %w", pinLED, err)
	}

	buzzer, err := chip.RequestLine(pinBuzzer, gpiocdev.AsOutput(0))
	if err != nil {
		led.Close()
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pinBuzzer, err)
	}

	return &RealAlerts{chip: chip, led: led, buzzer: buzzer}, nil
}

// Set asserts or releases both alert outputs together.
func (a *RealAlerts) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := a.led.SetValue(v); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	if err := a.buzzer.SetValue(v); err != nil {
		return fmt.Errorf("set buzzer: %w", err)
	}
	return nil
}

// Close releases both outputs after turning them off.
func (a *RealAlerts) Close() error {
	a.Set(false)
	var errs []error
	if err := a.led.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close led: %w", err))
	}
	if err := a.buzzer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close buzzer: %w", err))
	}
	if err := a.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealEncoder decodes the quadrature rotary input into the shared counter
// cell. The edge handler is the cell's ONLY writer: it reads the data line
// level and adds ±1, nothing else. Bounced edges are rejected in the kernel
// (WithDebounce), so they never reach the handler.
type RealEncoder struct {
	chip *gpiocdev.Chip
	clk  *gpiocdev.Line
	data *gpiocdev.Line
}

// NewRealEncoder attaches the falling-edge handler to the clock line.
func NewRealEncoder(chipName string, pinClk, pinData int, cell *atomic.Int64) (*RealEncoder, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	data, err := chip.RequestLine(pinData, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request encoder data pin %d: %w", pinData, err)
	}

	clk, err := chip.RequestLine(pinClk,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(EncoderDebounce),
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			// On the falling clock edge the data level gives direction.
			v, err := data.Value()
			if err != nil {
				return
			}
			if v != 0 {
				cell.Add(1)
			} else {
				cell.Add(-1)
			}
		}))
	if err != nil {
		data.Close()
		chip.Close()
		return nil, fmt.Errorf("request encoder clock pin %d: %w", pinClk, err)
	}

	return &RealEncoder{chip: chip, clk: clk, data: data}, nil
}

// Close detaches the handler and releases the encoder lines.
func (e *RealEncoder) Close() error {
	var errs []error
	if err := e.clk.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close encoder clock: %w", err))
	}
	if err := e.data.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close encoder data: %w", err))
	}
	if err := e.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButton reads the momentary reset input.
type RealButton struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealButton opens the reset line as a pulled-up, kernel-debounced
// input. The button is wired active-low.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithDebounce(ButtonDebounce))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request reset pin %d: %w", pin, err)
	}

	return &RealButton{chip: chip, line: line}, nil
}

// Pressed returns the logical button level (active-low input inverted).
func (b *RealButton) Pressed() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read reset pin: %w", err)
	}
	return v == 0, nil
}

// Close releases the reset line.
func (b *RealButton) Close() error {
	var errs []error
	if err := b.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close reset: %w", err))
	}
	if err := b.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
