package diffbot

import (
	"fmt"

	"go.uber.org/multierr"
)

// Configuration steps, in the order they are applied to each wheel.
const (
	StepBegin        = "begin"
	StepClearFault   = "clear_fault"
	StepVelocityMode = "velocity_mode"
	StepAccelTime    = "accel_time"
	StepDecelTime    = "decel_time"
	StepKp           = "kp"
	StepKi           = "ki"
	StepMaxSpeed     = "max_speed"
	StepEnable       = "enable"
)

// StepResult is the outcome of one configuration step on one wheel.
type StepResult struct {
	Wheel string
	Step  string
	Err   error
}

// SetupReport collects the outcome of every configuration step of the last
// OnConfigure. Only a failed begin aborts configuration; the host decides
// whether any other failure is acceptable.
type SetupReport struct {
	Steps []StepResult
}

func (r *SetupReport) record(wheel, step string, err error) error {
	r.Steps = append(r.Steps, StepResult{Wheel: wheel, Step: step, Err: err})
	return err
}

// Failed returns the steps that returned an error.
func (r SetupReport) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// OK reports whether every step succeeded.
func (r SetupReport) OK() bool {
	return len(r.Failed()) == 0
}

// Err combines the failed steps into one error, or nil.
func (r SetupReport) Err() error {
	var err error
	for _, s := range r.Failed() {
		err = multierr.Append(err, fmt.Errorf("%s motor %s: %w", s.Wheel, s.Step, s.Err))
	}
	return err
}
