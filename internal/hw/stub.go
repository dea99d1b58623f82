//go:build !linux

package hw

import (
	"errors"
	"sync/atomic"
	"time"
)

var errNotSupported = errors.New("hw: not supported on this platform (requires Linux)")

// RealRanger is not available on non-Linux platforms.
type RealRanger struct{}

// NewRealRanger returns an error on non-Linux platforms.
func NewRealRanger(chipName string, pinTrig, pinEcho int) (*RealRanger, error) {
	return nil, errNotSupported
}

func (r *RealRanger) Ping() (time.Duration, error) { return 0, errNotSupported }
func (r *RealRanger) Close() error                 { return nil }

// RealAlerts is not available on non-Linux platforms.
type RealAlerts struct{}

// NewRealAlerts returns an error on non-Linux platforms.
func NewRealAlerts(chipName string, pinLED, pinBuzzer int) (*RealAlerts, error) {
	return nil, errNotSupported
}

func (a *RealAlerts) Set(on bool) error { return errNotSupported }
func (a *RealAlerts) Close() error      { return nil }

// RealEncoder is not available on non-Linux platforms.
type RealEncoder struct{}

// NewRealEncoder returns an error on non-Linux platforms.
func NewRealEncoder(chipName string, pinClk, pinData int, cell *atomic.Int64) (*RealEncoder, error) {
	return nil, errNotSupported
}

func (e *RealEncoder) Close() error { return nil }

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	return nil, errNotSupported
}

func (b *RealButton) Pressed() (bool, error) { return false, errNotSupported }
func (b *RealButton) Close() error           { return nil }
