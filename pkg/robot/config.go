package robot

import (
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"gopkg.in/yaml.v3"

	"github.com/gwillem/diffbot/pkg/control"
	"github.com/gwillem/diffbot/pkg/diffbot"
	"github.com/gwillem/diffbot/pkg/hardware"
)

const DefaultConfigFile = "diffbot.yaml"

// Config holds the robot configuration
type Config struct {
	Hardware   hardware.HardwareInfo `yaml:"hardware"`
	Controller ControllerConfig      `yaml:"controller"`
}

// ControllerConfig holds the parameters of the drive controller
type ControllerConfig struct {
	Hz              int     `yaml:"hz"`
	WheelRadius     float64 `yaml:"wheel_radius"`     // m
	WheelSeparation float64 `yaml:"wheel_separation"` // m, between wheel contact points
	MaxLinear       float64 `yaml:"max_linear"`       // m/s
	MaxAngular      float64 `yaml:"max_angular"`      // rad/s
	StrictSetup     bool    `yaml:"strict_setup"`     // refuse to run if any motor setup step failed
}

// DefaultConfig returns the configuration of the delivery robot.
func DefaultConfig() *Config {
	p := diffbot.DefaultParams()
	return &Config{
		Hardware: hardware.HardwareInfo{
			Name:   "DiffBot",
			Type:   "system",
			Plugin: diffbot.TypeName,
			Parameters: map[string]string{
				"driver":    p.Driver,
				"port":      p.Port,
				"baud_rate": fmt.Sprint(p.BaudRate),
			},
			Joints: []hardware.ComponentInfo{wheelJoint(LeftWheel), wheelJoint(RightWheel)},
		},
		Controller: defaultController(),
	}
}

func defaultController() ControllerConfig {
	return ControllerConfig{
		Hz:              50,
		WheelRadius:     0.0825,
		WheelSeparation: 0.45,
		MaxLinear:       0.5,
		MaxAngular:      1.5,
	}
}

// applyDefaults fills unset controller fields.
func (c *Config) applyDefaults() {
	def := defaultController()
	if c.Controller.Hz <= 0 {
		c.Controller.Hz = def.Hz
	}
	if c.Controller.WheelRadius <= 0 {
		c.Controller.WheelRadius = def.WheelRadius
	}
	if c.Controller.WheelSeparation <= 0 {
		c.Controller.WheelSeparation = def.WheelSeparation
	}
	if c.Controller.MaxLinear <= 0 {
		c.Controller.MaxLinear = def.MaxLinear
	}
	if c.Controller.MaxAngular <= 0 {
		c.Controller.MaxAngular = def.MaxAngular
	}
	if c.Hardware.Plugin == "" {
		c.Hardware.Plugin = diffbot.TypeName
	}
}

// Validate checks the parts of the configuration the controller relies on.
// Joint interfaces are validated by the hardware component itself.
func (c *Config) Validate() error {
	if c.Controller.Hz > 1000 {
		return fmt.Errorf("controller.hz must be <= 1000, got %d", c.Controller.Hz)
	}
	if len(c.Hardware.Joints) != len(AllWheels()) {
		return fmt.Errorf("hardware must describe %d wheel joints, got %d", len(AllWheels()), len(c.Hardware.Joints))
	}
	return nil
}

// SetDriver selects the motor driver ("zlac" or "sim") and serial port.
func (c *Config) SetDriver(driver, port string) {
	if c.Hardware.Parameters == nil {
		c.Hardware.Parameters = make(map[string]string)
	}
	c.Hardware.Parameters["driver"] = driver
	if port != "" {
		c.Hardware.Parameters["port"] = port
	}
}

// Simulated reports whether the configuration uses simulated motors.
func (c *Config) Simulated() bool {
	return c.Hardware.Param("driver", diffbot.DriverZLAC) == diffbot.DriverSim
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}

// NewSystem instantiates the hardware component named by the configuration.
func (c *Config) NewSystem(logger golog.Logger) (hardware.System, error) {
	return hardware.New(c.Hardware.Plugin, logger)
}

// ControlConfig returns the controller settings for the drive loop.
func (c *Config) ControlConfig() control.Config {
	return control.Config{
		Hz: c.Controller.Hz,
		Drive: control.DiffDrive{
			WheelRadius:     c.Controller.WheelRadius,
			WheelSeparation: c.Controller.WheelSeparation,
		},
		MaxLinear:   c.Controller.MaxLinear,
		MaxAngular:  c.Controller.MaxAngular,
		StrictSetup: c.Controller.StrictSetup,
	}
}
