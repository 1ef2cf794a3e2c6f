// Package robot describes the delivery robot: its wheel joints and the
// configuration file that ties the hardware description to the controller.
package robot

import "github.com/gwillem/diffbot/pkg/hardware"

// WheelName identifies a wheel joint in the robot description.
type WheelName string

// Wheel joints of the delivery robot.
const (
	LeftWheel  WheelName = "left_wheel_joint"
	RightWheel WheelName = "right_wheel_joint"
)

// AllWheels returns the wheel joints in joint order (matching bus addresses 1-2).
func AllWheels() []WheelName {
	return []WheelName{LeftWheel, RightWheel}
}

// wheelJoint describes a velocity-commanded wheel.
func wheelJoint(name WheelName) hardware.ComponentInfo {
	return hardware.ComponentInfo{
		Name: string(name),
		CommandInterfaces: []hardware.InterfaceInfo{
			{Name: hardware.Velocity, Min: "-1", Max: "1"},
		},
		StateInterfaces: []hardware.InterfaceInfo{
			{Name: hardware.Position},
			{Name: hardware.Velocity},
		},
	}
}
