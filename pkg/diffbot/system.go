package diffbot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"

	"github.com/gwillem/diffbot/pkg/hardware"
	"github.com/gwillem/diffbot/pkg/simmotor"
	"github.com/gwillem/diffbot/pkg/zlac"
)

// TypeName is the name the bridge is registered under.
const TypeName = "diffbot/DiffBotSystemHardware"

func init() {
	hardware.Register(TypeName, func(logger golog.Logger) hardware.System {
		return NewSystem(logger, nil, nil)
	})
}

const (
	left  = 0
	right = 1
)

// System is the motor bridge of a two-wheel differential-drive robot.
//
// Joint 0 is the left wheel and joint 1 the right wheel. The right wheel is
// mounted mirrored; its readings and commands are negated so that forward
// is positive on both wheels.
//
// System is not safe for concurrent use. The host calls it from a single
// goroutine and only touches the exported handles between calls.
type System struct {
	logger golog.Logger

	info    hardware.HardwareInfo
	params  Params
	wheels  [2]Wheel
	drivers [2]MotorDriver
	open    bool

	positions  []float64
	velocities []float64
	commands   []float64

	enabled      bool
	setup        SetupReport
	readFailures [2]int
}

var _ hardware.System = (*System)(nil)

// NewSystem creates a bridge. When either driver is nil both drivers are
// created in OnInit from the "driver" hardware parameter.
func NewSystem(logger golog.Logger, leftDriver, rightDriver MotorDriver) *System {
	return &System{
		logger:  logger.Named("DiffBotSystemHardware"),
		drivers: [2]MotorDriver{leftDriver, rightDriver},
	}
}

// OnInit validates the joint description and allocates the state and
// command buffers.
func (s *System) OnInit(info hardware.HardwareInfo) error {
	if err := validateJoints(info); err != nil {
		s.logger.Errorw("invalid hardware description", "error", err)
		return err
	}
	params, err := ParseParams(info)
	if err != nil {
		s.logger.Errorw("invalid hardware parameters", "error", err)
		return err
	}

	s.info = info
	s.params = params
	s.wheels = [2]Wheel{
		{Name: "left", Address: byte(params.LeftAddress), CountsPerRev: params.CountsPerRev},
		{Name: "right", Address: byte(params.RightAddress), Reversed: true, CountsPerRev: params.CountsPerRev},
	}
	if s.drivers[left] == nil || s.drivers[right] == nil {
		s.drivers = newDrivers(params.Driver)
	}

	n := len(info.Joints)
	s.positions = nanSlice(n)
	s.velocities = nanSlice(n)
	s.commands = nanSlice(n)
	s.readFailures = [2]int{}
	return nil
}

func newDrivers(kind string) [2]MotorDriver {
	if kind == DriverSim {
		return [2]MotorDriver{simmotor.New(), simmotor.New()}
	}
	return [2]MotorDriver{zlac.NewMotor(), zlac.NewMotor()}
}

func validateJoints(info hardware.HardwareInfo) error {
	if len(info.Joints) != 2 {
		return &hardware.ConfigError{Component: info.Name, Reason: fmt.Sprintf("%d joints found, 2 expected", len(info.Joints))}
	}
	for _, joint := range info.Joints {
		if len(joint.CommandInterfaces) != 1 {
			return &hardware.ConfigError{Component: info.Name, Joint: joint.Name, Reason: fmt.Sprintf("%d command interfaces found, 1 expected", len(joint.CommandInterfaces))}
		}
		if name := joint.CommandInterfaces[0].Name; name != hardware.Velocity {
			return &hardware.ConfigError{Component: info.Name, Joint: joint.Name, Interface: name, Reason: fmt.Sprintf("unexpected command interface, '%s' expected", hardware.Velocity)}
		}
		if len(joint.StateInterfaces) != 2 {
			return &hardware.ConfigError{Component: info.Name, Joint: joint.Name, Reason: fmt.Sprintf("%d state interfaces found, 2 expected", len(joint.StateInterfaces))}
		}
		if name := joint.StateInterfaces[0].Name; name != hardware.Position {
			return &hardware.ConfigError{Component: info.Name, Joint: joint.Name, Interface: name, Reason: fmt.Sprintf("unexpected first state interface, '%s' expected", hardware.Position)}
		}
		if name := joint.StateInterfaces[1].Name; name != hardware.Velocity {
			return &hardware.ConfigError{Component: info.Name, Joint: joint.Name, Interface: name, Reason: fmt.Sprintf("unexpected second state interface, '%s' expected", hardware.Velocity)}
		}
	}
	return nil
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// ExportStateInterfaces returns a position and a velocity handle per joint.
func (s *System) ExportStateInterfaces() []hardware.StateInterface {
	handles := make([]hardware.StateInterface, 0, 2*len(s.info.Joints))
	for i, joint := range s.info.Joints {
		handles = append(handles,
			hardware.NewStateInterface(joint.Name, hardware.Position, &s.positions[i]),
			hardware.NewStateInterface(joint.Name, hardware.Velocity, &s.velocities[i]),
		)
	}
	return handles
}

// ExportCommandInterfaces returns a velocity command handle per joint.
func (s *System) ExportCommandInterfaces() []hardware.CommandInterface {
	handles := make([]hardware.CommandInterface, 0, len(s.info.Joints))
	for i, joint := range s.info.Joints {
		handles = append(handles, hardware.NewCommandInterface(joint.Name, hardware.Velocity, &s.commands[i]))
	}
	return handles
}

// OnConfigure opens both motors, applies the velocity-mode setup and
// enables them. Only a failure to open a motor is returned; the outcome of
// every other step is available from LastSetup.
func (s *System) OnConfigure(ctx context.Context) error {
	s.logger.Info("Configuring ...please wait...")
	s.setup = SetupReport{}

	if !s.open {
		for i, w := range s.wheels {
			err := s.drivers[i].Begin(ctx, s.params.Port, s.params.BaudRate, w.Address)
			if s.setup.record(w.Name, StepBegin, err) != nil {
				s.logger.Errorw("cannot open motor", "wheel", w.Name, "port", s.params.Port, "address", w.Address, "error", err)
				for j := 0; j < i; j++ {
					s.drivers[j].Close()
				}
				return fmt.Errorf("open %s motor: %w", w.Name, err)
			}
		}
		s.open = true
	}

	for i, w := range s.wheels {
		s.configureWheel(ctx, w, s.drivers[i])
	}
	s.enabled = true
	s.logger.Infow("motors enabled", "enabled", s.enabled)

	for i := range s.positions {
		if math.IsNaN(s.positions[i]) {
			s.positions[i] = 0
		}
		if math.IsNaN(s.velocities[i]) {
			s.velocities[i] = 0
		}
		if math.IsNaN(s.commands[i]) {
			s.commands[i] = 0
		}
	}

	if failed := s.setup.Failed(); len(failed) > 0 {
		s.logger.Warnw("configured with errors", "failed_steps", len(failed))
	} else {
		s.logger.Info("Successfully configured!")
	}
	return nil
}

type setupStep struct {
	name string
	fn   func() error
}

func (s *System) configureWheel(ctx context.Context, w Wheel, d MotorDriver) {
	p := s.params
	var steps []setupStep
	if fc, ok := d.(faultClearer); ok {
		steps = append(steps, setupStep{StepClearFault, func() error { return fc.ClearFault(ctx) }})
	}
	steps = append(steps,
		setupStep{StepVelocityMode, func() error { return d.SetVelocityMode(ctx) }},
		setupStep{StepAccelTime, func() error { return d.SetAccelTime(ctx, p.AccelTime) }},
		setupStep{StepDecelTime, func() error { return d.SetDecelTime(ctx, p.DecelTime) }},
		setupStep{StepKp, func() error { return d.SetKp(ctx, p.Kp) }},
		setupStep{StepKi, func() error { return d.SetKi(ctx, p.Ki) }},
		setupStep{StepMaxSpeed, func() error { return d.SetMaxSpeed(ctx, p.MaxSpeed) }},
		setupStep{StepEnable, func() error { return d.Enable(ctx) }},
	)
	for _, step := range steps {
		if err := s.setup.record(w.Name, step.name, step.fn()); err != nil {
			s.logger.Warnw("setup step failed", "wheel", w.Name, "step", step.name, "error", err)
		}
	}
}

// LastSetup returns the per-step outcome of the last OnConfigure.
func (s *System) LastSetup() SetupReport {
	return s.setup
}

// SetupError combines the failed steps of the last OnConfigure, or nil.
func (s *System) SetupError() error {
	return s.setup.Err()
}

// OnCleanup disables and closes both motors.
func (s *System) OnCleanup(ctx context.Context) error {
	s.logger.Info("Cleaning up ...please wait...")
	if !s.open {
		s.logger.Info("Successfully cleaned!")
		return nil
	}
	s.disableAll(ctx)
	var err error
	for i, w := range s.wheels {
		if cerr := s.drivers[i].Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s motor: %w", w.Name, cerr))
		}
	}
	s.open = false
	s.logger.Info("Successfully cleaned!")
	return err
}

// OnActivate has no hardware effect; motors were enabled by OnConfigure.
func (s *System) OnActivate(ctx context.Context) error {
	s.logger.Info("Activating ...please wait...")
	s.logger.Info("Successfully activated!")
	return nil
}

// OnDeactivate disables both motors. The motors stay open so the system can
// be activated again without reconfiguring.
func (s *System) OnDeactivate(ctx context.Context) error {
	s.logger.Info("Deactivating ...please wait...")
	if s.open {
		s.disableAll(ctx)
	}
	s.logger.Info("Successfully deactivated!")
	return nil
}

func (s *System) disableAll(ctx context.Context) {
	for i, w := range s.wheels {
		if err := s.drivers[i].Disable(ctx); err != nil {
			s.logger.Errorw("disable failed", "wheel", w.Name, "error", err)
		}
	}
	s.enabled = false
}

func (s *System) enableAll(ctx context.Context) {
	for i, w := range s.wheels {
		if err := s.drivers[i].Enable(ctx); err != nil {
			s.logger.Errorw("enable failed", "wheel", w.Name, "error", err)
		}
	}
	s.enabled = true
}

// Read polls both motors and updates the position and velocity buffers.
// A wheel whose poll fails keeps its previous values.
func (s *System) Read(ctx context.Context, _ time.Time, _ time.Duration) error {
	for i, w := range s.wheels {
		d := s.drivers[i]
		if err := d.ReadMotor(ctx); err != nil {
			s.readFailures[i]++
			s.logger.Warnw("motor read failed", "wheel", w.Name, "error", err)
			continue
		}
		s.velocities[i] = w.Velocity(d.RPM())
		s.positions[i] = w.Position(d.Position())
	}
	return nil
}

// Write applies the enable policy and, while enabled, sends the velocity
// commands to both motors.
//
// Both commands exactly zero disable the motors; any non-zero command
// enables them again.
func (s *System) Write(ctx context.Context, _ time.Time, _ time.Duration) error {
	idle := s.commands[left] == 0.0 && s.commands[right] == 0.0
	switch {
	case s.enabled && idle:
		s.disableAll(ctx)
		s.logger.Infow("disable motors", "enabled", s.enabled)
	case !s.enabled && !idle:
		s.enableAll(ctx)
		s.logger.Infow("enable motors", "enabled", s.enabled)
	}
	if !s.enabled {
		return nil
	}
	for i, w := range s.wheels {
		if err := s.drivers[i].SetRPM(ctx, w.Command(s.commands[i])); err != nil {
			s.logger.Warnw("set rpm failed", "wheel", w.Name, "error", err)
		}
	}
	return nil
}

// Enabled reports whether the motors are currently energized.
func (s *System) Enabled() bool {
	return s.enabled
}

// ReadFailures returns the number of failed polls per wheel since OnInit.
func (s *System) ReadFailures() (leftFailures, rightFailures int) {
	return s.readFailures[left], s.readFailures[right]
}
