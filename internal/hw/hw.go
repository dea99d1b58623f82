// Package hw provides access to the radar head hardware with abstraction
// for testing: trigger/echo ranging, the sweep servo, alert outputs, the
// quadrature rotary encoder, and the reset button. Real implementations use
// the Linux GPIO character device (and the PWM sysfs class for the servo);
// fakes allow testing without hardware.
package hw

import (
	"errors"
	"time"
)

// Default pin assignments (BCM numbering).
const (
	DefaultPinTrig    = 23
	DefaultPinEcho    = 24
	DefaultPinLED     = 17
	DefaultPinBuzzer  = 27
	DefaultPinEncClk  = 5
	DefaultPinEncData = 6
	DefaultPinReset   = 13
)

// DefaultChip is the GPIO character device name.
const DefaultChip = "gpiochip0"

// EchoTimeout bounds one time-of-flight sample. A missing echo resolves to
// ErrEchoTimeout, which the ranging filter absorbs as "nothing in range".
const EchoTimeout = 30 * time.Millisecond

// EncoderDebounce is the minimum interval between accepted encoder edges.
const EncoderDebounce = 5 * time.Millisecond

// ButtonDebounce is the minimum interval between accepted button edges.
const ButtonDebounce = 20 * time.Millisecond

// ErrEchoTimeout reports that the echo never returned within EchoTimeout.
var ErrEchoTimeout = errors.New("hw: echo timeout")

// Servo commands the sweep actuator to an angle in degrees. Write-only:
// there is no feedback that the angle was reached; callers allow a fixed
// settle delay instead.
type Servo interface {
	SetAngle(deg int) error
	Close() error
}

// Alerts drives the binary alert outputs (light and sounder together).
type Alerts interface {
	Set(on bool) error
	Close() error
}

// Button reads the debounced reset input level once per cycle.
// Edge and release detection are the caller's state machine.
type Button interface {
	Pressed() (bool, error)
	Close() error
}
