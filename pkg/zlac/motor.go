package zlac

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"go.bug.st/serial"
)

// Motor is one ZLAC8015 controller on a shared bus.
type Motor struct {
	pool *Pool
	bus  *Bus
	addr byte

	position int32
	rpm      float64
}

// NewMotor returns an unconnected motor that opens its bus from DefaultPool.
func NewMotor() *Motor {
	return NewMotorOnPool(DefaultPool)
}

// NewMotorOnPool returns an unconnected motor that opens its bus from p.
func NewMotorOnPool(p *Pool) *Motor {
	return &Motor{pool: p}
}

// Begin connects the motor to the controller at address on port.
func (m *Motor) Begin(ctx context.Context, port string, baudRate int, address byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.bus != nil {
		return fmt.Errorf("zlac: motor %d already connected", m.addr)
	}
	bus, err := m.pool.Acquire(port, baudRate)
	if err != nil {
		return err
	}
	m.bus = bus
	m.addr = address
	return nil
}

// Close releases the motor's reference on its bus.
func (m *Motor) Close() error {
	if m.bus == nil {
		return nil
	}
	err := m.pool.Release(m.bus)
	m.bus = nil
	return err
}

func (m *Motor) write(ctx context.Context, reg, value uint16) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.bus == nil {
		return ErrNotConnected
	}
	if err := m.bus.writeRegister(m.addr, reg, value); err != nil {
		return fmt.Errorf("motor %d: write 0x%04X: %w", m.addr, reg, err)
	}
	return nil
}

// SetVelocityMode selects closed-loop speed control.
func (m *Motor) SetVelocityMode(ctx context.Context) error {
	return m.write(ctx, regMode, modeVelocity)
}

// SetAccelTime sets the acceleration ramp in ms.
func (m *Motor) SetAccelTime(ctx context.Context, ms int) error {
	return m.write(ctx, regAccelTime, uint16(ms))
}

// SetDecelTime sets the deceleration ramp in ms.
func (m *Motor) SetDecelTime(ctx context.Context, ms int) error {
	return m.write(ctx, regDecelTime, uint16(ms))
}

// SetKp sets the speed loop proportional gain.
func (m *Motor) SetKp(ctx context.Context, kp int) error {
	return m.write(ctx, regKp, uint16(kp))
}

// SetKi sets the speed loop integral gain.
func (m *Motor) SetKi(ctx context.Context, ki int) error {
	return m.write(ctx, regKi, uint16(ki))
}

// SetMaxSpeed limits the motor speed in rpm.
func (m *Motor) SetMaxSpeed(ctx context.Context, rpm int) error {
	return m.write(ctx, regMaxSpeed, uint16(rpm))
}

// Enable energizes the motor.
func (m *Motor) Enable(ctx context.Context) error {
	return m.write(ctx, regControl, ctrlEnable)
}

// Disable releases the motor.
func (m *Motor) Disable(ctx context.Context) error {
	return m.write(ctx, regControl, ctrlDisable)
}

// ClearFault clears a latched controller alarm.
func (m *Motor) ClearFault(ctx context.Context) error {
	return m.write(ctx, regControl, ctrlClearFault)
}

// SetRPM sets the target speed. The controller accepts whole rpm.
func (m *Motor) SetRPM(ctx context.Context, rpm float64) error {
	v := math.Round(rpm)
	v = math.Max(math.MinInt16, math.Min(math.MaxInt16, v))
	return m.write(ctx, regTargetSpeed, uint16(int16(v)))
}

// ReadMotor polls position and speed in one transaction and caches them.
func (m *Motor) ReadMotor(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.bus == nil {
		return ErrNotConnected
	}
	data, err := m.bus.readRegisters(m.addr, regPosition, feedbackRegisters)
	if err != nil {
		return fmt.Errorf("motor %d: read feedback: %w", m.addr, err)
	}
	speed := int(regActualSpeed-regPosition) * 2
	m.position = int32(binary.BigEndian.Uint32(data[0:speed]))
	m.rpm = float64(int16(binary.BigEndian.Uint16(data[speed:speed+2]))) / 10
	return nil
}

// RPM returns the speed from the last successful ReadMotor.
func (m *Motor) RPM() float64 {
	return m.rpm
}

// Position returns the encoder count from the last successful ReadMotor.
func (m *Motor) Position() int32 {
	return m.position
}

// ListPorts returns the serial ports that may carry a motor bus.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	var result []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		result = append(result, port)
	}
	return result, nil
}
