package hardware

// StateInterface is a read-only handle onto a value owned by a component.
type StateInterface struct {
	Prefix    string
	Interface string
	value     *float64
}

// NewStateInterface binds a state handle to v.
func NewStateInterface(prefix, iface string, v *float64) StateInterface {
	return StateInterface{Prefix: prefix, Interface: iface, value: v}
}

// Name returns "prefix/interface".
func (s StateInterface) Name() string {
	return s.Prefix + "/" + s.Interface
}

// Value returns the current value.
func (s StateInterface) Value() float64 {
	return *s.value
}

// CommandInterface is a read-write handle onto a value owned by a component.
type CommandInterface struct {
	Prefix    string
	Interface string
	value     *float64
}

// NewCommandInterface binds a command handle to v.
func NewCommandInterface(prefix, iface string, v *float64) CommandInterface {
	return CommandInterface{Prefix: prefix, Interface: iface, value: v}
}

// Name returns "prefix/interface".
func (c CommandInterface) Name() string {
	return c.Prefix + "/" + c.Interface
}

// Value returns the current command.
func (c CommandInterface) Value() float64 {
	return *c.value
}

// SetValue stores a new command.
func (c CommandInterface) SetValue(v float64) {
	*c.value = v
}

// FindState returns the handle named prefix/iface.
func FindState(handles []StateInterface, prefix, iface string) (StateInterface, bool) {
	for _, h := range handles {
		if h.Prefix == prefix && h.Interface == iface {
			return h, true
		}
	}
	return StateInterface{}, false
}

// FindCommand returns the handle named prefix/iface.
func FindCommand(handles []CommandInterface, prefix, iface string) (CommandInterface, bool) {
	for _, h := range handles {
		if h.Prefix == prefix && h.Interface == iface {
			return h, true
		}
	}
	return CommandInterface{}, false
}
