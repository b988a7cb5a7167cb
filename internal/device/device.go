package device

import (
	"context"
	"errors"
	"time"

	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
)

// ErrSuspended is returned by host suspenders in place of never returning.
// The runtime treats it as the end of the wake session.
var ErrSuspended = errors.New("device suspended")

// Clock is the trusted calendar time source with an alarm-match register.
type Clock interface {
	// Now returns the current calendar time.
	Now(ctx context.Context) (time.Time, error)
	// AlarmRegister returns the alarm time stored in the hardware register.
	AlarmRegister(ctx context.Context) (time.Time, error)
	// SetAlarmRegister programs the alarm-match register and enables its interrupt.
	SetAlarmRegister(ctx context.Context, at time.Time) error
	// ClearAlarmRegister disables the alarm-match interrupt.
	ClearAlarmRegister(ctx context.Context) error
	// WakeCause reports why the device resumed. Valid once per boot.
	WakeCause(ctx context.Context) (domain.WakeCause, error)
}

// CounterStore is durable key to integer storage.
// Errors are fatal to the caller, nothing is retried.
type CounterStore interface {
	// ReadCounter returns the stored value, or 0 if the key is absent.
	ReadCounter(ctx context.Context, key string) (int, error)
	// WriteCounter durably stores the value.
	WriteCounter(ctx context.Context, key string, value int) error
}

// TokenVerifier answers whether an authorized token is present right now.
type TokenVerifier interface {
	// Poll waits at most timeout. A miss returns false.
	Poll(ctx context.Context, timeout time.Duration) bool
}

// Buttons gives polled and edge-triggered access to the control buttons.
type Buttons interface {
	// IsPressed reads the current level of the button.
	IsPressed(id domain.ButtonID) bool
	// OnRisingEdge arms an interrupt that sets flag on every rising edge.
	OnRisingEdge(id domain.ButtonID, flag *EdgeFlag)
	// Detach disarms the interrupt, the button is back to polled reads.
	Detach(id domain.ButtonID)
}

// Tone is the alarm sound.
type Tone interface {
	Start()
	Stop()
	IsActive() bool
}

// Suspender hands the device over to low-power standby.
type Suspender interface {
	// ArmWake programs the sources allowed to wake the device.
	ArmWake(ctx context.Context, sources domain.WakeSources) error
	// SuspendNow enters standby. On hardware it does not return;
	// host implementations return ErrSuspended.
	SuspendNow(ctx context.Context) error
}
