package hardware

import (
	"fmt"
	"sort"
	"sync"

	"github.com/edaniels/golog"
)

// Factory creates an uninitialized component.
type Factory func(logger golog.Logger) System

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a component available under typeName. It panics if
// typeName is registered twice or f is nil.
func Register(typeName string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		panic("hardware: Register factory is nil")
	}
	if _, dup := factories[typeName]; dup {
		panic("hardware: Register called twice for " + typeName)
	}
	factories[typeName] = f
}

// New instantiates the component registered under typeName.
func New(typeName string, logger golog.Logger) (System, error) {
	registryMu.RLock()
	f, ok := factories[typeName]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return f(logger), nil
}

// Registered returns the sorted list of registered type names.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
