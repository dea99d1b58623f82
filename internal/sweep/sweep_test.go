package sweep

import "testing"

func TestNewController(t *testing.T) {
	c := NewController(5)
	if c.Angle() != MinAngle {
		t.Errorf("initial angle: got %d, want %d", c.Angle(), MinAngle)
	}
	if !c.Forward() {
		t.Error("new controller should move forward")
	}
}

func TestNewControllerDefaultsStep(t *testing.T) {
	c := NewController(0)
	if got := c.Advance(); got != DefaultStep {
		t.Errorf("first advance with zero step: got %d, want %d", got, DefaultStep)
	}
	c = NewController(-3)
	if got := c.Advance(); got != DefaultStep {
		t.Errorf("first advance with negative step: got %d, want %d", got, DefaultStep)
	}
}

func TestTriangleWave(t *testing.T) {
	c := NewController(5)

	// Up: 5, 10, ..., 180
	for i := 1; i <= 36; i++ {
		got := c.Advance()
		want := i * 5
		if got != want {
			t.Fatalf("advance %d: got %d, want %d", i, got, want)
		}
	}
	if c.Forward() {
		t.Error("should be moving backward after reaching 180")
	}

	// Down: 175, 170, ..., 0
	for i := 1; i <= 36; i++ {
		got := c.Advance()
		want := 180 - i*5
		if got != want {
			t.Fatalf("descent advance %d: got %d, want %d", i, got, want)
		}
	}
	if !c.Forward() {
		t.Error("should be moving forward after reaching 0")
	}
}

func TestBoundsNeverExceeded(t *testing.T) {
	c := NewController(7) // step that does not divide 180 evenly
	for i := 0; i < 500; i++ {
		got := c.Advance()
		if got < MinAngle || got > MaxAngle {
			t.Fatalf("advance %d: angle %d out of [%d, %d]", i, got, MinAngle, MaxAngle)
		}
	}
}

func TestBoundaryClampExact(t *testing.T) {
	c := NewController(7)
	var hitMax, hitMin bool
	for i := 0; i < 60; i++ {
		switch c.Advance() {
		case MaxAngle:
			hitMax = true
		case MinAngle:
			hitMin = true
		}
	}
	if !hitMax {
		t.Error("sweep never landed exactly on the upper boundary")
	}
	if !hitMin {
		t.Error("sweep never landed exactly on the lower boundary")
	}
}
