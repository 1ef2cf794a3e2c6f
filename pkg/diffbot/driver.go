// Package diffbot binds the two wheel joints of a differential-drive robot
// to a pair of serial-bus motor controllers.
package diffbot

import "context"

// MotorDriver is a single motor controller on the serial bus.
//
// Every method except RPM, Position and Close is a blocking bus
// transaction. RPM and Position return the values cached by the last
// successful ReadMotor.
type MotorDriver interface {
	Begin(ctx context.Context, port string, baudRate int, address byte) error
	SetVelocityMode(ctx context.Context) error
	SetAccelTime(ctx context.Context, ms int) error
	SetDecelTime(ctx context.Context, ms int) error
	SetKp(ctx context.Context, kp int) error
	SetKi(ctx context.Context, ki int) error
	SetMaxSpeed(ctx context.Context, rpm int) error
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	SetRPM(ctx context.Context, rpm float64) error
	ReadMotor(ctx context.Context) error
	RPM() float64
	Position() int32
	Close() error
}

// faultClearer is implemented by drivers that can reset a latched alarm.
// OnConfigure clears faults before the other setup steps when supported.
type faultClearer interface {
	ClearFault(ctx context.Context) error
}
