package hardware

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edaniels/golog"
)

const testDescription = `
name: DiffBot
type: system
plugin: test/Wheels
parameters:
  port: /dev/ttyUSB0
  baud_rate: "115200"
  right_address: "0x02"
joints:
  - name: left_wheel_joint
    command_interfaces:
      - name: velocity
        min: "-1"
        max: "1"
    state_interfaces:
      - name: position
      - name: velocity
  - name: right_wheel_joint
    command_interfaces:
      - name: velocity
    state_interfaces:
      - name: position
      - name: velocity
`

func TestParseDescription(t *testing.T) {
	info, err := ParseDescription([]byte(testDescription))
	if err != nil {
		t.Fatalf("ParseDescription: %v", err)
	}
	if info.Plugin != "test/Wheels" {
		t.Errorf("Plugin = %q, want test/Wheels", info.Plugin)
	}
	if len(info.Joints) != 2 {
		t.Fatalf("got %d joints, want 2", len(info.Joints))
	}
	left := info.Joints[0]
	if left.Name != "left_wheel_joint" {
		t.Errorf("joint 0 name = %q", left.Name)
	}
	if len(left.CommandInterfaces) != 1 || left.CommandInterfaces[0].Name != Velocity {
		t.Errorf("unexpected command interfaces: %+v", left.CommandInterfaces)
	}
	if left.CommandInterfaces[0].Max != "1" {
		t.Errorf("max = %q, want 1", left.CommandInterfaces[0].Max)
	}
	if len(left.StateInterfaces) != 2 || left.StateInterfaces[0].Name != Position || left.StateInterfaces[1].Name != Velocity {
		t.Errorf("unexpected state interfaces: %+v", left.StateInterfaces)
	}
}

func TestParseDescription_RequiresPlugin(t *testing.T) {
	if _, err := ParseDescription([]byte("name: x\njoints: []\n")); err == nil {
		t.Fatal("expected error for missing plugin")
	}
}

func TestLoadDescription(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.yaml")
	if err := os.WriteFile(path, []byte(testDescription), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := LoadDescription(path)
	if err != nil {
		t.Fatalf("LoadDescription: %v", err)
	}
	if info.Name != "DiffBot" {
		t.Errorf("Name = %q", info.Name)
	}

	if _, err := LoadDescription(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHardwareInfo_Params(t *testing.T) {
	info, err := ParseDescription([]byte(testDescription))
	if err != nil {
		t.Fatal(err)
	}

	if got := info.Param("port", "/dev/zlac"); got != "/dev/ttyUSB0" {
		t.Errorf("Param(port) = %q", got)
	}
	if got := info.Param("driver", "zlac"); got != "zlac" {
		t.Errorf("Param(driver) default = %q", got)
	}

	tests := []struct {
		key  string
		def  int
		want int
	}{
		{"baud_rate", 9600, 115200},
		{"right_address", 0, 2},
		{"left_address", 1, 1},
	}
	for _, tt := range tests {
		got, err := info.IntParam(tt.key, tt.def)
		if err != nil {
			t.Errorf("IntParam(%s): %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("IntParam(%s) = %d, want %d", tt.key, got, tt.want)
		}
	}

	info.Parameters["kp"] = "fast"
	_, err = info.IntParam("kp", 750)
	if !IsConfigError(err) {
		t.Errorf("IntParam(kp) error = %v, want ConfigError", err)
	}
}

func TestHandles(t *testing.T) {
	buf := []float64{1.5, 0}
	s := NewStateInterface("left_wheel_joint", Position, &buf[0])
	c := NewCommandInterface("left_wheel_joint", Velocity, &buf[1])

	if s.Name() != "left_wheel_joint/position" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.Value() != 1.5 {
		t.Errorf("Value() = %f", s.Value())
	}

	c.SetValue(2.5)
	if buf[1] != 2.5 {
		t.Errorf("SetValue did not write through, buf[1] = %f", buf[1])
	}
	buf[0] = 3
	if s.Value() != 3 {
		t.Errorf("state handle does not track buffer, got %f", s.Value())
	}

	if _, ok := FindState([]StateInterface{s}, "left_wheel_joint", Position); !ok {
		t.Error("FindState did not find handle")
	}
	if _, ok := FindCommand([]CommandInterface{c}, "right_wheel_joint", Velocity); ok {
		t.Error("FindCommand found a handle that does not exist")
	}
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{
			&ConfigError{Component: "DiffBot", Joint: "left_wheel_joint", Interface: "effort", Reason: "'velocity' expected"},
			"joint 'left_wheel_joint' interface 'effort': 'velocity' expected",
		},
		{
			&ConfigError{Component: "DiffBot", Joint: "left_wheel_joint", Reason: "3 state interfaces found, 2 expected"},
			"joint 'left_wheel_joint': 3 state interfaces found, 2 expected",
		},
		{
			&ConfigError{Component: "DiffBot", Reason: "3 joints found, 2 expected"},
			"component 'DiffBot': 3 joints found, 2 expected",
		},
		{
			&ConfigError{Component: "DiffBot", Parameter: "kp", Reason: "parameter \"x\" is not an integer"},
			"component 'DiffBot' parameter 'kp': parameter \"x\" is not an integer",
		},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	wrapped := errors.Join(errors.New("init"), tests[0].err)
	if !IsConfigError(wrapped) {
		t.Error("IsConfigError did not unwrap")
	}
}

type nopSystem struct{}

func (nopSystem) OnInit(HardwareInfo) error { return nil }
func (nopSystem) OnConfigure(context.Context) error { return nil }
func (nopSystem) OnCleanup(context.Context) error { return nil }
func (nopSystem) OnActivate(context.Context) error { return nil }
func (nopSystem) OnDeactivate(context.Context) error { return nil }
func (nopSystem) ExportStateInterfaces() []StateInterface { return nil }
func (nopSystem) ExportCommandInterfaces() []CommandInterface { return nil }
func (nopSystem) Read(context.Context, time.Time, time.Duration) error { return nil }
func (nopSystem) Write(context.Context, time.Time, time.Duration) error { return nil }

func TestRegistry(t *testing.T) {
	Register("test/Nop", func(golog.Logger) System { return nopSystem{} })

	sys, err := New("test/Nop", golog.NewTestLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := sys.(nopSystem); !ok {
		t.Errorf("New returned %T", sys)
	}

	if _, err := New("test/Missing", golog.NewTestLogger(t)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("New(missing) error = %v, want ErrUnknownType", err)
	}

	found := false
	for _, name := range Registered() {
		if name == "test/Nop" {
			found = true
		}
	}
	if !found {
		t.Errorf("Registered() = %v, missing test/Nop", Registered())
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register("test/Nop", func(golog.Logger) System { return nopSystem{} })
}
