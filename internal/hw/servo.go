package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Servo drive parameters: standard 50Hz hobby-servo signal with a
// 500–2500µs pulse mapped onto [0,180] degrees.
const (
	servoPeriodNs   = 20_000_000
	servoMinPulseNs = 500_000
	servoMaxPulseNs = 2_500_000
)

// RealServo commands the sweep actuator through the Linux PWM sysfs class.
type RealServo struct {
	dir string
}

// NewRealServo exports (if needed) and enables the given PWM channel, with
// the pulse parked at 0 degrees.
func NewRealServo(chip, channel int) (*RealServo, error) {
	base := fmt.Sprintf("/sys/class/pwm/pwmchip%d", chip)
	dir := filepath.Join(base, fmt.Sprintf("pwm%d", channel))

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.WriteFile(filepath.Join(base, "export"), []byte(strconv.Itoa(channel)), 0o644); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
	}

	s := &RealServo{dir: dir}
	if err := s.write("period", servoPeriodNs); err != nil {
		return nil, fmt.Errorf("set pwm period: %w", err)
	}
	if err := s.write("duty_cycle", pulseNs(0)); err != nil {
		return nil, fmt.Errorf("set pwm duty cycle: %w", err)
	}
	if err := s.write("enable", 1); err != nil {
		return nil, fmt.Errorf("enable pwm: %w", err)
	}
	return s, nil
}

// SetAngle commands the servo to the given angle, clamped to [0,180].
func (s *RealServo) SetAngle(deg int) error {
	if err := s.write("duty_cycle", pulseNs(deg)); err != nil {
		return fmt.Errorf("command servo to %d: %w", deg, err)
	}
	return nil
}

// Close disables the PWM output, letting the servo relax.
func (s *RealServo) Close() error {
	if err := s.write("enable", 0); err != nil {
		return fmt.Errorf("disable pwm: %w", err)
	}
	return nil
}

func (s *RealServo) write(name string, v int) error {
	return os.WriteFile(filepath.Join(s.dir, name), []byte(strconv.Itoa(v)), 0o644)
}

// pulseNs maps an angle in [0,180] onto the servo pulse width.
func pulseNs(deg int) int {
	if deg < 0 {
		deg = 0
	}
	if deg > 180 {
		deg = 180
	}
	return servoMinPulseNs + deg*(servoMaxPulseNs-servoMinPulseNs)/180
}
