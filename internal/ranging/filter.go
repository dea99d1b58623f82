// Package ranging turns raw time-of-flight samples into one de-noised
// distance reading. This package has NO hardware dependencies; the pinger
// and the inter-sample pause are injected.
package ranging

import "time"

// MaxRange is the sensor ceiling in cm. Readings that cannot be trusted
// (missing echo, non-positive, beyond the ceiling) resolve to exactly
// MaxRange and mean "nothing in range" — never an error.
const MaxRange = 400.0

// SamplePause separates the three sub-readings of one measurement.
const SamplePause = 10 * time.Millisecond

// cmPerMicrosecond converts round-trip time of flight to distance:
// speed of sound, halved for the out-and-back path.
const cmPerMicrosecond = 0.0343 / 2

// Pinger produces one raw time-of-flight reading. Implementations must be
// bounded by a hard timeout so a missing echo resolves to an error rather
// than blocking the cycle.
type Pinger interface {
	Ping() (time.Duration, error)
}

// Filter is the median-of-3 ranging filter. The median (not the mean)
// rejects a single outlier echo.
type Filter struct {
	pinger Pinger
	pause  func(time.Duration)
}

// NewFilter creates a Filter over the given pinger. pause may be nil, in
// which case time.Sleep is used.
func NewFilter(p Pinger, pause func(time.Duration)) *Filter {
	if pause == nil {
		pause = time.Sleep
	}
	return &Filter{pinger: p, pause: pause}
}

// Measure fires three pings separated by SamplePause and returns the median
// distance in cm, clamped to (0, MaxRange]. A failed or implausible sample
// contributes MaxRange; Measure itself never fails. Blocks the caller for
// at most three sample windows plus the fixed pauses.
func (f *Filter) Measure() float64 {
	var d [3]float64
	for i := range d {
		if i > 0 {
			f.pause(SamplePause)
		}
		d[i] = f.sample()
	}
	return median3(d[0], d[1], d[2])
}

func (f *Filter) sample() float64 {
	tof, err := f.pinger.Ping()
	if err != nil {
		return MaxRange
	}
	cm := float64(tof.Microseconds()) * cmPerMicrosecond
	if cm <= 0 || cm > MaxRange {
		return MaxRange
	}
	return cm
}

func median3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	// median = max(a, min(b, c))
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}
