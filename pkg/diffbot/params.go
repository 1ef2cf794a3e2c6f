package diffbot

import (
	"fmt"

	"github.com/gwillem/diffbot/pkg/hardware"
)

// Driver kinds accepted by the "driver" hardware parameter.
const (
	DriverZLAC = "zlac"
	DriverSim  = "sim"
)

// Params are the hardware parameters of the bridge. Zero-valued fields of a
// description fall back to DefaultParams.
type Params struct {
	Driver       string
	Port         string
	BaudRate     int
	LeftAddress  int
	RightAddress int
	Kp           int
	Ki           int
	AccelTime    int
	DecelTime    int
	MaxSpeed     int
	CountsPerRev int
}

// DefaultParams returns the parameters of the delivery robot.
func DefaultParams() Params {
	return Params{
		Driver:       DriverZLAC,
		Port:         "/dev/zlac",
		BaudRate:     115200,
		LeftAddress:  0x01,
		RightAddress: 0x02,
		Kp:           750,
		Ki:           100,
		AccelTime:    1,
		DecelTime:    1,
		MaxSpeed:     100,
		CountsPerRev: DefaultCountsPerRev,
	}
}

// ParseParams reads Params from the hardware parameters of info.
func ParseParams(info hardware.HardwareInfo) (Params, error) {
	p := DefaultParams()
	p.Driver = info.Param("driver", p.Driver)
	p.Port = info.Param("port", p.Port)

	ints := []struct {
		key string
		dst *int
	}{
		{"baud_rate", &p.BaudRate},
		{"left_address", &p.LeftAddress},
		{"right_address", &p.RightAddress},
		{"kp", &p.Kp},
		{"ki", &p.Ki},
		{"accel_time", &p.AccelTime},
		{"decel_time", &p.DecelTime},
		{"max_speed", &p.MaxSpeed},
		{"counts_per_rev", &p.CountsPerRev},
	}
	for _, f := range ints {
		v, err := info.IntParam(f.key, *f.dst)
		if err != nil {
			return Params{}, err
		}
		*f.dst = v
	}

	switch p.Driver {
	case DriverZLAC, DriverSim:
	default:
		return Params{}, &hardware.ConfigError{Component: info.Name, Parameter: "driver", Reason: fmt.Sprintf("unknown driver %q", p.Driver)}
	}
	for _, a := range []struct {
		key string
		v   int
	}{{"left_address", p.LeftAddress}, {"right_address", p.RightAddress}} {
		if a.v < 1 || a.v > 247 {
			return Params{}, &hardware.ConfigError{Component: info.Name, Parameter: a.key, Reason: fmt.Sprintf("bus address %d out of range 1-247", a.v)}
		}
	}
	if p.LeftAddress == p.RightAddress {
		return Params{}, &hardware.ConfigError{Component: info.Name, Parameter: "right_address", Reason: "left and right motors share a bus address"}
	}
	if p.CountsPerRev <= 0 {
		return Params{}, &hardware.ConfigError{Component: info.Name, Parameter: "counts_per_rev", Reason: "must be positive"}
	}
	return p, nil
}
