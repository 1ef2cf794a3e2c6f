// Package simmotor provides a simulated hub motor with the same interface
// as the ZLAC8015 driver, for running without hardware.
package simmotor

import (
	"context"
	"errors"
	"math"
	"time"
)

// CountsPerRev is the simulated encoder resolution.
const CountsPerRev = 4096

// DefaultTimeConstant is the first-order speed response of the motor.
const DefaultTimeConstant = 100 * time.Millisecond

var (
	// ErrNotConnected is returned by operations before Begin.
	ErrNotConnected = errors.New("simmotor: motor not connected")
	// ErrChecksum is returned by injected read failures.
	ErrChecksum = errors.New("simmotor: crc check error")
)

// Motor is a simulated motor. Its speed follows the setpoint with a
// first-order lag while enabled and decays to zero while disabled.
type Motor struct {
	TimeConstant time.Duration

	now      func() time.Time
	last     time.Time
	begun    bool
	address  byte
	enabled  bool
	maxSpeed float64
	setpoint float64
	speed    float64 // rpm
	counts   float64

	rpm      float64
	position int32

	failReads int
	calls     []string
}

// New returns an unconnected simulated motor driven by the wall clock.
func New() *Motor {
	return &Motor{TimeConstant: DefaultTimeConstant, now: time.Now}
}

// NewManual returns a motor that only advances on Step.
func NewManual() *Motor {
	return &Motor{TimeConstant: DefaultTimeConstant}
}

func (m *Motor) record(call string) error {
	m.calls = append(m.calls, call)
	if !m.begun {
		return ErrNotConnected
	}
	return nil
}

// Calls returns the driver calls received so far.
func (m *Motor) Calls() []string {
	return m.calls
}

// FailReads makes the next n ReadMotor calls fail with ErrChecksum.
func (m *Motor) FailReads(n int) {
	m.failReads = n
}

// Begin connects the motor.
func (m *Motor) Begin(ctx context.Context, port string, baudRate int, address byte) error {
	m.calls = append(m.calls, "begin")
	m.begun = true
	m.address = address
	if m.now != nil {
		m.last = m.now()
	}
	return nil
}

// Close disconnects the motor.
func (m *Motor) Close() error {
	m.calls = append(m.calls, "close")
	m.begun = false
	return nil
}

func (m *Motor) SetVelocityMode(ctx context.Context) error { return m.record("velocity_mode") }
func (m *Motor) SetAccelTime(ctx context.Context, ms int) error { return m.record("accel_time") }
func (m *Motor) SetDecelTime(ctx context.Context, ms int) error { return m.record("decel_time") }
func (m *Motor) SetKp(ctx context.Context, kp int) error { return m.record("kp") }
func (m *Motor) SetKi(ctx context.Context, ki int) error { return m.record("ki") }

// SetMaxSpeed limits the setpoint magnitude.
func (m *Motor) SetMaxSpeed(ctx context.Context, rpm int) error {
	if err := m.record("max_speed"); err != nil {
		return err
	}
	m.maxSpeed = float64(rpm)
	return nil
}

// Enable energizes the motor.
func (m *Motor) Enable(ctx context.Context) error {
	if err := m.record("enable"); err != nil {
		return err
	}
	m.advance()
	m.enabled = true
	return nil
}

// Disable releases the motor and clears the setpoint.
func (m *Motor) Disable(ctx context.Context) error {
	if err := m.record("disable"); err != nil {
		return err
	}
	m.advance()
	m.enabled = false
	m.setpoint = 0
	return nil
}

// SetRPM sets the speed setpoint. It has no effect while disabled.
func (m *Motor) SetRPM(ctx context.Context, rpm float64) error {
	if err := m.record("set_rpm"); err != nil {
		return err
	}
	m.advance()
	if !m.enabled {
		return nil
	}
	if m.maxSpeed > 0 {
		rpm = math.Max(-m.maxSpeed, math.Min(m.maxSpeed, rpm))
	}
	m.setpoint = rpm
	return nil
}

// ReadMotor samples speed and position.
func (m *Motor) ReadMotor(ctx context.Context) error {
	if err := m.record("read_motor"); err != nil {
		return err
	}
	m.advance()
	if m.failReads > 0 {
		m.failReads--
		return ErrChecksum
	}
	m.rpm = math.Round(m.speed*10) / 10
	m.position = int32(math.Round(m.counts))
	return nil
}

// RPM returns the speed sampled by the last successful ReadMotor.
func (m *Motor) RPM() float64 { return m.rpm }

// Position returns the encoder count sampled by the last successful ReadMotor.
func (m *Motor) Position() int32 { return m.position }

// Enabled reports whether the motor is energized.
func (m *Motor) Enabled() bool { return m.enabled }

// Setpoint returns the current speed setpoint in rpm.
func (m *Motor) Setpoint() float64 { return m.setpoint }

func (m *Motor) advance() {
	if m.now == nil {
		return
	}
	t := m.now()
	if !m.last.IsZero() {
		m.Step(t.Sub(m.last))
	}
	m.last = t
}

// Step advances the simulation by dt.
func (m *Motor) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	target := 0.0
	if m.enabled {
		target = m.setpoint
	}
	tau := m.TimeConstant.Seconds()
	alpha := 1.0
	if tau > 0 {
		alpha = 1 - math.Exp(-dt.Seconds()/tau)
	}
	prev := m.speed
	m.speed += (target - m.speed) * alpha
	// trapezoidal integration of rpm into encoder counts
	m.counts += (prev + m.speed) / 2 / 60 * dt.Seconds() * CountsPerRev
}
