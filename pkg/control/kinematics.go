package control

import "math"

// DiffDrive holds the geometry of a differential-drive base.
type DiffDrive struct {
	WheelRadius     float64 // m
	WheelSeparation float64 // m
}

// WheelSpeeds converts a body twist (m/s, rad/s) to left and right wheel
// velocities in rad/s.
func (d DiffDrive) WheelSpeeds(linear, angular float64) (left, right float64) {
	half := angular * d.WheelSeparation / 2
	return (linear - half) / d.WheelRadius, (linear + half) / d.WheelRadius
}

// Twist converts wheel velocities in rad/s back to a body twist.
func (d DiffDrive) Twist(left, right float64) (linear, angular float64) {
	l, r := left*d.WheelRadius, right*d.WheelRadius
	return (l + r) / 2, (r - l) / d.WheelSeparation
}

// Pose is a planar pose in the odometry frame.
type Pose struct {
	X, Y    float64 // m
	Heading float64 // rad
}

// Odometry integrates wheel positions into a pose.
type Odometry struct {
	Drive DiffDrive

	pose       Pose
	lastLeft   float64
	lastRight  float64
	hasSamples bool
}

// Update advances the pose using the wheel positions in rad. The first
// sample and samples containing NaN only set the reference.
func (o *Odometry) Update(left, right float64) Pose {
	if math.IsNaN(left) || math.IsNaN(right) {
		return o.pose
	}
	if !o.hasSamples {
		o.lastLeft, o.lastRight = left, right
		o.hasSamples = true
		return o.pose
	}

	dl := (left - o.lastLeft) * o.Drive.WheelRadius
	dr := (right - o.lastRight) * o.Drive.WheelRadius
	o.lastLeft, o.lastRight = left, right

	ds := (dl + dr) / 2
	dtheta := (dr - dl) / o.Drive.WheelSeparation
	mid := o.pose.Heading + dtheta/2
	o.pose.X += ds * math.Cos(mid)
	o.pose.Y += ds * math.Sin(mid)
	o.pose.Heading = normalizeAngle(o.pose.Heading + dtheta)
	return o.pose
}

// Pose returns the current pose.
func (o *Odometry) Pose() Pose {
	return o.pose
}

// Reset returns the pose to the origin and drops the wheel reference.
func (o *Odometry) Reset() {
	o.pose = Pose{}
	o.hasSamples = false
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
