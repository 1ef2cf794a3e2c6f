package diffbot

import "math"

// DefaultCountsPerRev is the encoder resolution of the hub motors.
const DefaultCountsPerRev = 4096

const (
	rpmToRadPerSec = math.Pi / 30
	radPerSecToRPM = 30 / math.Pi
)

// Wheel holds the unit conversion for one wheel.
// Reversed wheels are mounted mirrored, so their sign is flipped to make
// forward positive on both sides.
type Wheel struct {
	Name         string
	Address      byte
	Reversed     bool
	CountsPerRev int
}

func (w Wheel) sign() float64 {
	if w.Reversed {
		return -1
	}
	return 1
}

// Velocity converts a measured motor speed in rpm to rad/s.
func (w Wheel) Velocity(rpm float64) float64 {
	return w.sign() * rpm * rpmToRadPerSec
}

// Position converts raw encoder counts to radians.
func (w Wheel) Position(counts int32) float64 {
	return w.sign() * float64(counts) / float64(w.countsPerRev()) * 2 * math.Pi
}

// Command converts a wheel velocity command in rad/s to a motor rpm setpoint.
func (w Wheel) Command(radPerSec float64) float64 {
	return w.sign() * radPerSec * radPerSecToRPM
}

func (w Wheel) countsPerRev() int {
	if w.CountsPerRev <= 0 {
		return DefaultCountsPerRev
	}
	return w.CountsPerRev
}
