// Package hardware defines the contract between a motion-control host and
// the hardware components it loads: robot descriptions, state and command
// handles, the System lifecycle, and the component registry.
package hardware

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Interface kinds.
const (
	Position     = "position"
	Velocity     = "velocity"
	Acceleration = "acceleration"
	Effort       = "effort"
)

// InterfaceInfo describes a single state or command interface of a joint.
type InterfaceInfo struct {
	Name         string `yaml:"name"`
	Min          string `yaml:"min,omitempty"`
	Max          string `yaml:"max,omitempty"`
	InitialValue string `yaml:"initial_value,omitempty"`
}

// ComponentInfo describes a joint and the interfaces it exposes.
type ComponentInfo struct {
	Name              string            `yaml:"name"`
	Type              string            `yaml:"type,omitempty"`
	CommandInterfaces []InterfaceInfo   `yaml:"command_interfaces"`
	StateInterfaces   []InterfaceInfo   `yaml:"state_interfaces"`
	Parameters        map[string]string `yaml:"parameters,omitempty"`
}

// HardwareInfo is the description of one hardware component as declared in
// the robot description.
type HardwareInfo struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Plugin     string            `yaml:"plugin"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
	Joints     []ComponentInfo   `yaml:"joints"`
}

// Param returns the hardware parameter for key, or def if unset.
func (h HardwareInfo) Param(key, def string) string {
	if v, ok := h.Parameters[key]; ok && v != "" {
		return v
	}
	return def
}

// IntParam returns the hardware parameter for key parsed as an integer.
// Hex values ("0x02") are accepted.
func (h HardwareInfo) IntParam(key string, def int) (int, error) {
	v, ok := h.Parameters[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return 0, &ConfigError{Component: h.Name, Parameter: key, Reason: fmt.Sprintf("parameter %q is not an integer", v)}
	}
	return int(n), nil
}

// ParseDescription parses a YAML hardware description.
func ParseDescription(data []byte) (HardwareInfo, error) {
	var info HardwareInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return HardwareInfo{}, fmt.Errorf("parse description: %w", err)
	}
	if info.Plugin == "" {
		return HardwareInfo{}, fmt.Errorf("parse description: plugin is required")
	}
	return info, nil
}

// LoadDescription reads a YAML hardware description from path.
func LoadDescription(path string) (HardwareInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HardwareInfo{}, fmt.Errorf("read description file: %w", err)
	}
	return ParseDescription(data)
}
