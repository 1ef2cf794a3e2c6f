// Package diffbot drives a differential-drive robot on two ZLAC8015 hub
// motor drivers.
//
// The motor bridge exposes both wheel joints as position and velocity state
// plus a velocity command, and runs the drivers over one shared Modbus RTU
// bus. The drivers are disabled whenever both wheel commands are exactly
// zero and enabled again on the first non-zero command.
//
// # Installation
//
//	go install github.com/gwillem/diffbot/cmd/diffbot@latest
//
// # Usage
//
// First, run setup to select the serial port (or simulated motors):
//
//	diffbot setup
//
// Check both motors, then drive from the keyboard:
//
//	diffbot info
//	diffbot drive
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/diffbot: CLI with setup, run, drive and info commands
//   - pkg/hardware: hardware component lifecycle, handles and registry
//   - pkg/diffbot: the motor bridge component
//   - pkg/zlac: ZLAC8015 driver over Modbus RTU
//   - pkg/simmotor: simulated motor for running without hardware
//   - pkg/robot: robot description and configuration file
//   - pkg/control: drive loop, kinematics and odometry
package diffbot
