package hardware

import (
	"context"
	"time"
)

// System is a hardware component driven by the host.
//
// The host calls every method from a single goroutine, in lifecycle order:
// OnInit once, then OnConfigure, OnActivate, repeated Read/Write pairs,
// OnDeactivate and OnCleanup. Exported handles stay valid for the lifetime
// of the component and may be read or written by the host between calls.
type System interface {
	OnInit(info HardwareInfo) error
	OnConfigure(ctx context.Context) error
	OnCleanup(ctx context.Context) error
	OnActivate(ctx context.Context) error
	OnDeactivate(ctx context.Context) error

	ExportStateInterfaces() []StateInterface
	ExportCommandInterfaces() []CommandInterface

	Read(ctx context.Context, now time.Time, period time.Duration) error
	Write(ctx context.Context, now time.Time, period time.Duration) error
}
