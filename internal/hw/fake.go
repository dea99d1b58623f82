package hw

import (
	"errors"
	"time"
)

// PingSample is one scripted time-of-flight result.
type PingSample struct {
	TOF time.Duration
	Err error
}

// FakePinger returns scripted time-of-flight samples.
// If samples are exhausted, the last sample repeats.
type FakePinger struct {
	Samples []PingSample
	index   int
}

// NewFakePinger creates a FakePinger with the given samples.
func NewFakePinger(samples []PingSample) *FakePinger {
	return &FakePinger{Samples: samples}
}

// Ping returns the next scripted sample.
func (f *FakePinger) Ping() (time.Duration, error) {
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.TOF, s.Err
}

// FakeServo records commanded angles.
type FakeServo struct {
	Angles   []int
	SetError error
	Closed   bool
}

// SetAngle records the commanded angle.
func (f *FakeServo) SetAngle(deg int) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Angles = append(f.Angles, deg)
	return nil
}

// Close marks the servo as closed.
func (f *FakeServo) Close() error {
	f.Closed = true
	return nil
}

// FakeAlerts records alert output changes.
type FakeAlerts struct {
	On       bool
	Changes  []bool
	SetError error
	Closed   bool
}

// Set records the new alert state.
func (f *FakeAlerts) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.Changes = append(f.Changes, on)
	return nil
}

// Close marks the alerts as closed.
func (f *FakeAlerts) Close() error {
	f.Closed = true
	return nil
}

// FakeButton returns scripted button levels, one per Pressed call.
// If levels are exhausted, the last level repeats; with no levels
// configured the button reads released.
type FakeButton struct {
	Levels    []bool
	ReadError error
	Closed    bool
	index     int
}

// Pressed returns the next scripted level.
func (f *FakeButton) Pressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Levels) == 0 {
		return false, nil
	}
	v := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}
