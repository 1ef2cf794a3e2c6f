package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edaniels/golog"

	"github.com/gwillem/diffbot/pkg/control"
)

type RunCommand struct {
	Linear  float64       `long:"linear" description:"Forward speed to hold in m/s"`
	Angular float64       `long:"angular" description:"Turn rate to hold in rad/s"`
	Report  time.Duration `long:"report" default:"1s" description:"State report interval"`
}

func (c *RunCommand) Execute(args []string) error {
	cfg := loadConfig()
	logger := golog.NewDevelopmentLogger("diffbot")

	ctrl, err := control.NewController(cfg.Hardware, cfg.ControlConfig(), logger)
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}
	ctrl.SetTwist(c.Linear, c.Angular)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go drainLogs(ctx, ctrl)
	go c.report(ctx, ctrl, logger)

	if err := ctrl.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// report logs the latest state at the report interval.
func (c *RunCommand) report(ctx context.Context, ctrl *control.Controller, logger golog.Logger) {
	if c.Report <= 0 {
		c.Report = time.Second
	}
	ticker := time.NewTicker(c.Report)
	defer ticker.Stop()

	var last control.State
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-ctrl.States():
			last = s
		case <-ticker.C:
			if last.Timestamp.IsZero() {
				continue
			}
			logger.Infow("state",
				"enabled", last.Enabled,
				"left_vel", last.Velocities[0],
				"right_vel", last.Velocities[1],
				"x", last.Pose.X,
				"y", last.Pose.Y,
				"heading", last.Pose.Heading,
			)
		}
	}
}

// drainLogs discards the log channel; the base logger already prints.
func drainLogs(ctx context.Context, ctrl *control.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ctrl.Logs():
		}
	}
}
