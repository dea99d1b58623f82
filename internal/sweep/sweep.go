// Package sweep advances the sensor head across a bounded arc.
// Pure triangle-wave motion: no hardware, no time, no external dependencies.
package sweep

// Arc bounds and default step, in degrees.
const (
	MinAngle    = 0
	MaxAngle    = 180
	DefaultStep = 5
)

// Controller produces the deterministic back-and-forth scan angle.
// Callers command the actuator to Angle(), and call Advance() only when the
// detection latch is clear.
type Controller struct {
	angle   int
	step    int
	forward bool
}

// NewController starts at MinAngle moving forward.
func NewController(step int) *Controller {
	if step <= 0 {
		step = DefaultStep
	}
	return &Controller{step: step, forward: true}
}

// Angle returns the current commanded angle.
func (c *Controller) Angle() int {
	return c.angle
}

// Forward reports the current sweep direction.
func (c *Controller) Forward() bool {
	return c.forward
}

// Advance moves one step in the current direction and returns the new angle.
// An advance that would cross a boundary lands exactly on the boundary and
// flips direction for the following call. The boundary values are never
// skipped and never overshot.
func (c *Controller) Advance() int {
	if c.forward {
		c.angle += c.step
		if c.angle >= MaxAngle {
			c.angle = MaxAngle
			c.forward = false
		}
	} else {
		c.angle -= c.step
		if c.angle <= MinAngle {
			c.angle = MinAngle
			c.forward = true
		}
	}
	return c.angle
}
