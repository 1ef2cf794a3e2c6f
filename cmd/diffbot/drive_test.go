package main

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gwillem/diffbot/pkg/control"
	"github.com/gwillem/diffbot/pkg/diffbot"
	"github.com/gwillem/diffbot/pkg/robot"
)

func simConfig() *robot.Config {
	cfg := robot.DefaultConfig()
	cfg.SetDriver(diffbot.DriverSim, "")
	return cfg
}

func loopDone(t *testing.T, loop *loopResult) tea.Msg {
	t.Helper()
	msgCh := make(chan tea.Msg, 1)
	go func() { msgCh <- waitForLoop(loop)() }()
	select {
	case msg := <-msgCh:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("control loop did not finish")
		return nil
	}
}

func TestDriveModel_QuitsWhenBringUpFails(t *testing.T) {
	cfg := simConfig()
	cfg.Hardware.Joints[0].CommandInterfaces = nil

	ctrl, err := control.NewController(cfg.Hardware, cfg.ControlConfig(), nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	loop := startLoop(context.Background(), ctrl)
	m := initialDriveModel(ctrl, loop, cfg, 0.05, 0.1)

	next, cmd := m.Update(loopDone(t, loop))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
	dm := next.(driveModel)
	if dm.err == nil || !strings.Contains(dm.err.Error(), "init hardware") {
		t.Errorf("err = %v, want init hardware error", dm.err)
	}
	if view := dm.View(); !strings.Contains(view, "Controller error") {
		t.Errorf("View() = %q, want controller error", view)
	}
}

func TestDriveModel_CanceledLoopIsNotAnError(t *testing.T) {
	cfg := simConfig()
	ctrl, err := control.NewController(cfg.Hardware, cfg.ControlConfig(), nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	loop := startLoop(ctx, ctrl)
	m := initialDriveModel(ctrl, loop, cfg, 0.05, 0.1)
	cancel()

	next, _ := m.Update(loopDone(t, loop))
	dm := next.(driveModel)
	if dm.err != nil {
		t.Errorf("err = %v, want nil after cancel", dm.err)
	}
	if view := dm.View(); view != "Drive stopped.\n" {
		t.Errorf("View() = %q", view)
	}
}
