// Package rangecfg reconciles the rotary encoder counter into a bounded
// detection threshold. Pure logic over an atomic counter cell; no hardware
// imports.
package rangecfg

import (
	"math"
	"sync/atomic"
)

// Threshold bounds and encoder step, in cm.
const (
	MinLimit = 30.0
	MaxLimit = 400.0
	Step     = 5.0 // cm per encoder click
)

// Configurator owns the detection threshold. The atomic cell is written
// only by the encoder edge handler; the configurator reads it exactly once
// per Reconcile and never writes it. Clamping is absorbed by a private
// offset, so an encoder spun far past a limit starts moving the threshold
// again on the first reverse click instead of having to unwind the
// overshoot.
type Configurator struct {
	cell      *atomic.Int64
	threshold float64
	offset    int64 // subtracted from every cell read
	lastPos   int64 // effective position at the previous reconcile
	held      bool  // reset fired, awaiting release
}

// New creates a Configurator reading encoder movement from cell.
// The threshold starts at MinLimit.
func New(cell *atomic.Int64) *Configurator {
	return &Configurator{cell: cell, threshold: MinLimit}
}

// Threshold returns the current detection threshold in cm.
func (c *Configurator) Threshold() float64 {
	return c.threshold
}

// Reconcile folds encoder movement since the previous call into the
// threshold and reports whether the threshold changed. A zero delta has no
// effect. A delta that would carry the threshold outside
// [MinLimit, MaxLimit] clamps to the bound and snaps the effective counter
// position to the value that exactly reproduces the clamped threshold.
func (c *Configurator) Reconcile() (float64, bool) {
	raw := c.cell.Load()
	pos := raw - c.offset
	delta := pos - c.lastPos
	if delta == 0 {
		return c.threshold, false
	}

	next := c.threshold + float64(delta)*Step
	if next > MaxLimit {
		c.offset += int64(math.Round((next - MaxLimit) / Step))
		next = MaxLimit
	} else if next < MinLimit {
		c.offset -= int64(math.Round((MinLimit - next) / Step))
		next = MinLimit
	}

	changed := next != c.threshold
	c.threshold = next
	c.lastPos = raw - c.offset
	return c.threshold, changed
}

// HandleReset services the reset button level once per cycle. It fires on
// the pressed edge, stays quiet while the press is held, and re-arms only
// after the input reads released. A reset restores threshold = MinLimit and
// zeroes the effective counter position in the same call, so the following
// Reconcile sees no residual delta.
func (c *Configurator) HandleReset(pressed bool) bool {
	if !pressed {
		c.held = false
		return false
	}
	if c.held {
		return false
	}
	c.held = true
	c.threshold = MinLimit
	c.offset = c.cell.Load()
	c.lastPos = 0
	return true
}
