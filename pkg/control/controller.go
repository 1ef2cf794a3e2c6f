// Package control drives a hardware system through its lifecycle and runs
// the fixed-rate read, compute, write loop of a differential-drive base.
package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gwillem/diffbot/pkg/hardware"
)

// ErrAlreadyRunning is returned by Start when the loop is running.
var ErrAlreadyRunning = errors.New("already running")

// State is a snapshot of the base after one control cycle.
type State struct {
	Positions  [2]float64 // rad, left and right
	Velocities [2]float64 // rad/s
	Commands   [2]float64 // rad/s
	Linear     float64    // measured m/s
	Angular    float64    // measured rad/s
	Pose       Pose
	Enabled    bool
	Timestamp  time.Time
	Error      error
}

// Config holds configuration for the controller.
type Config struct {
	Hz          int
	Drive       DiffDrive
	MaxLinear   float64 // m/s
	MaxAngular  float64 // rad/s
	StrictSetup bool    // fail Start if any motor setup step failed
	LogLevel    zapcore.Level
}

// setupChecker is implemented by systems that report partial configuration.
type setupChecker interface {
	SetupError() error
}

// enabledReporter is implemented by systems that expose their motor state.
type enabledReporter interface {
	Enabled() bool
}

type wheelHandles struct {
	position hardware.StateInterface
	velocity hardware.StateInterface
	command  hardware.CommandInterface
}

// Controller owns a hardware system and is the only caller into it.
type Controller struct {
	system hardware.System
	info   hardware.HardwareInfo
	cfg    Config
	logger golog.Logger

	wheels [2]wheelHandles
	odom   Odometry

	mu      sync.Mutex
	running bool
	linear  float64
	angular float64

	stateCh chan State
	logCh   chan string
}

// NewController instantiates the component registered under info.Plugin.
// Log lines of the controller and the component go to base, if not nil,
// and to the Logs channel.
func NewController(info hardware.HardwareInfo, cfg Config, base golog.Logger) (*Controller, error) {
	c, err := newController(info, cfg, base)
	if err != nil {
		return nil, err
	}
	system, err := hardware.New(info.Plugin, c.logger)
	if err != nil {
		return nil, fmt.Errorf("create hardware: %w", err)
	}
	c.system = system
	return c, nil
}

// NewControllerWithSystem wraps an already created system.
func NewControllerWithSystem(system hardware.System, info hardware.HardwareInfo, cfg Config, base golog.Logger) (*Controller, error) {
	c, err := newController(info, cfg, base)
	if err != nil {
		return nil, err
	}
	c.system = system
	return c, nil
}

func newController(info hardware.HardwareInfo, cfg Config, base golog.Logger) (*Controller, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 50
	}
	if cfg.Drive.WheelRadius <= 0 || cfg.Drive.WheelSeparation <= 0 {
		return nil, fmt.Errorf("wheel radius and separation must be > 0, got %g and %g", cfg.Drive.WheelRadius, cfg.Drive.WheelSeparation)
	}
	if len(info.Joints) != 2 {
		return nil, fmt.Errorf("expected 2 wheel joints, got %d", len(info.Joints))
	}

	logCh := make(chan string, 32)
	core := newChannelLogger(logCh, cfg.LogLevel).Desugar().Core()
	if base != nil {
		core = zapcore.NewTee(base.Desugar().Core(), core)
	}

	return &Controller{
		info:    info,
		cfg:     cfg,
		logger:  zap.New(core).Sugar(),
		odom:    Odometry{Drive: cfg.Drive},
		stateCh: make(chan State, 1),
		logCh:   logCh,
	}, nil
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log lines.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.cfg.Hz
}

// SetTwist sets the commanded body velocity, clamped to the configured limits.
func (c *Controller) SetTwist(linear, angular float64) {
	if c.cfg.MaxLinear > 0 {
		linear = clamp(linear, c.cfg.MaxLinear)
	}
	if c.cfg.MaxAngular > 0 {
		angular = clamp(angular, c.cfg.MaxAngular)
	}
	c.mu.Lock()
	c.linear, c.angular = linear, angular
	c.mu.Unlock()
}

// Twist returns the commanded body velocity.
func (c *Controller) Twist() (linear, angular float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.linear, c.angular
}

// Start brings the system up and runs the control loop until ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.mu.Unlock()

	if err := c.bringUp(ctx); err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return err
	}

	c.logger.Infof("Control loop started at %d Hz", c.cfg.Hz)

	ticker := time.NewTicker(time.Second / time.Duration(c.cfg.Hz))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case now := <-ticker.C:
			c.step(ctx, now, now.Sub(last))
			last = now
		}
	}
}

func (c *Controller) bringUp(ctx context.Context) error {
	if err := c.system.OnInit(c.info); err != nil {
		return fmt.Errorf("init hardware: %w", err)
	}
	if err := c.bindHandles(); err != nil {
		return err
	}
	if err := c.system.OnConfigure(ctx); err != nil {
		return fmt.Errorf("configure hardware: %w", err)
	}
	if sc, ok := c.system.(setupChecker); ok {
		if err := sc.SetupError(); err != nil {
			if c.cfg.StrictSetup {
				c.logger.Errorw("motor setup incomplete, refusing to run", "error", err)
				c.cleanup()
				return fmt.Errorf("configure hardware: %w", err)
			}
			c.logger.Warnw("motor setup incomplete, continuing", "error", err)
		}
	}
	if err := c.system.OnActivate(ctx); err != nil {
		c.cleanup()
		return fmt.Errorf("activate hardware: %w", err)
	}
	c.odom.Reset()
	return nil
}

func (c *Controller) bindHandles() error {
	states := c.system.ExportStateInterfaces()
	cmds := c.system.ExportCommandInterfaces()
	for i, joint := range c.info.Joints {
		pos, ok := hardware.FindState(states, joint.Name, hardware.Position)
		if !ok {
			return fmt.Errorf("joint %s: no position state interface", joint.Name)
		}
		vel, ok := hardware.FindState(states, joint.Name, hardware.Velocity)
		if !ok {
			return fmt.Errorf("joint %s: no velocity state interface", joint.Name)
		}
		cmd, ok := hardware.FindCommand(cmds, joint.Name, hardware.Velocity)
		if !ok {
			return fmt.Errorf("joint %s: no velocity command interface", joint.Name)
		}
		c.wheels[i] = wheelHandles{position: pos, velocity: vel, command: cmd}
	}
	return nil
}

func (c *Controller) step(ctx context.Context, now time.Time, period time.Duration) {
	var stepErr error
	if err := c.system.Read(ctx, now, period); err != nil {
		c.logger.Errorw("read failed", "error", err)
		stepErr = err
	}

	var s State
	for i, w := range c.wheels {
		s.Positions[i] = w.position.Value()
		s.Velocities[i] = w.velocity.Value()
	}
	s.Pose = c.odom.Update(s.Positions[0], s.Positions[1])
	s.Linear, s.Angular = c.cfg.Drive.Twist(s.Velocities[0], s.Velocities[1])

	linear, angular := c.Twist()
	s.Commands[0], s.Commands[1] = c.cfg.Drive.WheelSpeeds(linear, angular)
	for i, w := range c.wheels {
		w.command.SetValue(s.Commands[i])
	}

	if err := c.system.Write(ctx, now, period); err != nil {
		c.logger.Errorw("write failed", "error", err)
		stepErr = err
	}

	if er, ok := c.system.(enabledReporter); ok {
		s.Enabled = er.Enabled()
	}
	s.Timestamp = now
	s.Error = stepErr
	c.sendState(s)
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.linear, c.angular = 0, 0
	c.mu.Unlock()

	ctx := context.Background()
	for _, w := range c.wheels {
		w.command.SetValue(0)
	}
	if err := c.system.Write(ctx, time.Now(), 0); err != nil {
		c.logger.Warnw("final write failed", "error", err)
	}
	if err := c.system.OnDeactivate(ctx); err != nil {
		c.logger.Warnw("deactivate failed", "error", err)
	}
	c.cleanup()
	c.logger.Info("Control loop stopped")
}

func (c *Controller) cleanup() {
	if err := c.system.OnCleanup(context.Background()); err != nil {
		c.logger.Warnw("cleanup failed", "error", err)
	}
}
