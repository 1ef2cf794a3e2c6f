package robot

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/gwillem/diffbot/pkg/control"
	"github.com/gwillem/diffbot/pkg/diffbot"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Hardware.Plugin != diffbot.TypeName {
		t.Errorf("Plugin = %q, want %q", cfg.Hardware.Plugin, diffbot.TypeName)
	}
	for i, name := range AllWheels() {
		if cfg.Hardware.Joints[i].Name != string(name) {
			t.Errorf("joint %d = %q, want %q", i, cfg.Hardware.Joints[i].Name, name)
		}
	}
	if cfg.Simulated() {
		t.Error("default config should use real motors")
	}
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	cfg := DefaultConfig()
	cfg.SetDriver(diffbot.DriverSim, "/dev/ttyUSB0")
	cfg.Controller.Hz = 100
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if !loaded.Simulated() {
		t.Error("driver not preserved")
	}
	if got := loaded.Hardware.Param("port", ""); got != "/dev/ttyUSB0" {
		t.Errorf("port = %q", got)
	}
	if loaded.Controller.Hz != 100 {
		t.Errorf("Hz = %d, want 100", loaded.Controller.Hz)
	}
	if len(loaded.Hardware.Joints[1].StateInterfaces) != 2 {
		t.Errorf("state interfaces lost: %+v", loaded.Hardware.Joints[1])
	}
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	data := `
hardware:
  name: DiffBot
  joints:
    - name: left_wheel_joint
      command_interfaces: [{name: velocity}]
      state_interfaces: [{name: position}, {name: velocity}]
    - name: right_wheel_joint
      command_interfaces: [{name: velocity}]
      state_interfaces: [{name: position}, {name: velocity}]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	def := defaultController()
	if cfg.Controller != def {
		t.Errorf("Controller = %+v, want %+v", cfg.Controller, def)
	}
	if cfg.Hardware.Plugin != diffbot.TypeName {
		t.Errorf("Plugin = %q", cfg.Hardware.Plugin)
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"one_joint.yaml": "hardware:\n  joints:\n    - name: left_wheel_joint\n",
		"fast.yaml":      "controller:\n  hz: 5000\n",
		"broken.yaml":    "hardware: [",
	}
	for name, data := range tests {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFrom(path); err == nil {
			t.Errorf("LoadConfigFrom(%s) succeeded, want error", name)
		}
	}
	if _, err := LoadConfigFrom(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfig_NewSystem(t *testing.T) {
	sys, err := DefaultConfig().NewSystem(zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	if err := sys.OnInit(DefaultConfig().Hardware); err != nil {
		t.Errorf("OnInit with default description: %v", err)
	}
}

func TestConfig_ControlConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Controller.StrictSetup = true
	cc := cfg.ControlConfig()
	if cc.Hz != 50 || !cc.StrictSetup {
		t.Errorf("ControlConfig = %+v", cc)
	}
	if cc.Drive.WheelRadius != 0.0825 || cc.Drive.WheelSeparation != 0.45 {
		t.Errorf("Drive = %+v", cc.Drive)
	}
	if _, err := control.NewController(cfg.Hardware, cc, zap.NewNop().Sugar()); err != nil {
		t.Errorf("NewController from default config: %v", err)
	}
}

func TestConfig_DefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if ConfigExists() {
		t.Fatal("ConfigExists in empty directory")
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig without a file should fail")
	}

	cfg := DefaultConfig()
	cfg.SetDriver(diffbot.DriverSim, "")
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !ConfigExists() {
		t.Fatalf("ConfigExists false after Save")
	}
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		t.Errorf("Save did not write %s: %v", DefaultConfigFile, err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !loaded.Simulated() {
		t.Error("driver not preserved")
	}
}
