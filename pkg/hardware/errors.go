package hardware

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when no factory is registered under a type name.
var ErrUnknownType = errors.New("unknown hardware type")

// ConfigError reports a mismatch between a hardware description and what a
// component supports. It is fatal: the component must not be loaded.
//
// Joint is empty for errors about the component as a whole, such as a bad
// parameter or a wrong joint count.
type ConfigError struct {
	Component string
	Joint     string
	Interface string
	Parameter string
	Reason    string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Joint != "" && e.Interface != "":
		return fmt.Sprintf("joint '%s' interface '%s': %s", e.Joint, e.Interface, e.Reason)
	case e.Joint != "":
		return fmt.Sprintf("joint '%s': %s", e.Joint, e.Reason)
	case e.Parameter != "":
		return fmt.Sprintf("component '%s' parameter '%s': %s", e.Component, e.Parameter, e.Reason)
	default:
		return fmt.Sprintf("component '%s': %s", e.Component, e.Reason)
	}
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
