package simmotor_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gwillem/diffbot/pkg/diffbot"
	"github.com/gwillem/diffbot/pkg/simmotor"
)

var _ diffbot.MotorDriver = (*simmotor.Motor)(nil)

func TestMotor_RequiresBegin(t *testing.T) {
	m := simmotor.NewManual()
	if err := m.Enable(context.Background()); !errors.Is(err, simmotor.ErrNotConnected) {
		t.Errorf("Enable before Begin = %v, want ErrNotConnected", err)
	}
}

func TestMotor_FollowsSetpoint(t *testing.T) {
	ctx := context.Background()
	m := simmotor.NewManual()
	if err := m.Begin(ctx, "sim", 115200, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.Enable(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRPM(ctx, 60); err != nil {
		t.Fatal(err)
	}

	// 10 time constants
	for i := 0; i < 100; i++ {
		m.Step(10 * time.Millisecond)
	}
	if err := m.ReadMotor(ctx); err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.RPM()-60) > 0.1 {
		t.Errorf("RPM() = %f, want ~60", m.RPM())
	}
	// ~0.9 s at 60 rpm after the ramp: roughly 0.9 rev
	if m.Position() < 3000 || m.Position() > 4096 {
		t.Errorf("Position() = %d, want between 3000 and 4096", m.Position())
	}
}

func TestMotor_DisabledIgnoresSetpoint(t *testing.T) {
	ctx := context.Background()
	m := simmotor.NewManual()
	if err := m.Begin(ctx, "sim", 115200, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRPM(ctx, 60); err != nil {
		t.Fatal(err)
	}
	m.Step(time.Second)
	if err := m.ReadMotor(ctx); err != nil {
		t.Fatal(err)
	}
	if m.RPM() != 0 {
		t.Errorf("disabled motor moved: RPM() = %f", m.RPM())
	}
}

func TestMotor_MaxSpeed(t *testing.T) {
	ctx := context.Background()
	m := simmotor.NewManual()
	if err := m.Begin(ctx, "sim", 115200, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.SetMaxSpeed(ctx, 100); err != nil {
		t.Fatal(err)
	}
	if err := m.Enable(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRPM(ctx, -500); err != nil {
		t.Fatal(err)
	}
	if m.Setpoint() != -100 {
		t.Errorf("Setpoint() = %f, want -100", m.Setpoint())
	}
}

func TestMotor_FailReads(t *testing.T) {
	ctx := context.Background()
	m := simmotor.NewManual()
	if err := m.Begin(ctx, "sim", 115200, 1); err != nil {
		t.Fatal(err)
	}
	m.FailReads(2)
	for i := 0; i < 2; i++ {
		if err := m.ReadMotor(ctx); !errors.Is(err, simmotor.ErrChecksum) {
			t.Errorf("read %d = %v, want ErrChecksum", i, err)
		}
	}
	if err := m.ReadMotor(ctx); err != nil {
		t.Errorf("read after injected failures = %v", err)
	}
}
