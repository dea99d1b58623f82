// Package latch holds the sticky detection state machine: two states,
// Clear and Latched, with edge-triggered transitions. Actuator and display
// side effects belong to the caller; the latch itself is pure.
package latch

// Transition reports the edge produced by one observation.
type Transition int

const (
	// None means the state did not change.
	None Transition = iota
	// Entered is the Clear -> Latched edge: assert the alert actuators.
	Entered
	// Exited is the Latched -> Clear edge: release the alert actuators.
	Exited
)

// Latch is the two-state detection machine. Intentionally sticky: a single
// out-of-range sample does not guarantee exit, because observations come
// from the median-filtered reading and the state only flips on a reading
// that is newly on the other side of the threshold.
type Latch struct {
	latched bool
}

// Latched reports whether the alert is currently asserted. While latched,
// the sweep must hold its angle.
func (l *Latch) Latched() bool {
	return l.latched
}

// Observe evaluates one filtered distance against the threshold and returns
// the transition edge, if any. Detection is distance <= threshold.
func (l *Latch) Observe(distance, threshold float64) Transition {
	detected := distance <= threshold
	switch {
	case detected && !l.latched:
		l.latched = true
		return Entered
	case !detected && l.latched:
		l.latched = false
		return Exited
	default:
		return None
	}
}
