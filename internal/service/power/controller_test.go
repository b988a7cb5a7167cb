package power

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bedside-alarm/internal/device"
	"github.com/oshokin/bedside-alarm/internal/device/devicetest"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/service/machine"
	"github.com/oshokin/bedside-alarm/internal/service/scheduler"
)

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 10, 19, hour, minute, second, 0, time.UTC)
}

// TestEvaluate covers the idle timeout, immediate outcomes and alarm states.
func TestEvaluate(t *testing.T) {
	t.Parallel()

	c := NewController(nil, nil, 10*time.Second)
	now := at(22, 0, 10)

	require.Equal(t, RequestSuspend, c.Evaluate(domain.Idle, now, now.Add(-10*time.Second), machine.Continue))
	require.Equal(t, StaySuspendNever, c.Evaluate(domain.Idle, now, now.Add(-9*time.Second), machine.Continue))
	require.Equal(t, RequestSuspend, c.Evaluate(domain.Idle, now, now, machine.SuspendLongSnooze))
	require.Equal(t, RequestSuspend, c.Evaluate(domain.Idle, now, now, machine.SuspendDisabled))

	for _, state := range []domain.State{domain.Ringing, domain.Snoozed, domain.Escalated} {
		require.Equal(t, StaySuspendNever, c.Evaluate(state, now, now.Add(-time.Hour), machine.Continue), state.String())
		require.Equal(t, StaySuspendNever, c.Evaluate(state, now, now, machine.SuspendLongSnooze), state.String())
	}
}

// TestSuspend_CommitsAndArmsTimerAndButtons matches the idle-timeout standby.
func TestSuspend_CommitsAndArmsTimerAndButtons(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := devicetest.NewClock(at(22, 0, 10), at(7, 0, 30))
	engine := scheduler.NewEngine(clock, at(7, 0, 30), 2*time.Hour)
	suspender := new(devicetest.Suspender)

	err := NewController(engine, suspender, 10*time.Second).Suspend(ctx, at(22, 0, 10))
	require.ErrorIs(t, err, device.ErrSuspended)

	require.Equal(t, time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC), clock.Register)
	require.Equal(t, 1, clock.RegisterWrites)
	require.Equal(t, domain.WakeOnTimer|domain.WakeOnButtons, suspender.Sources)
	require.Equal(t, 1, suspender.Suspends)
}

// TestSuspend_DisabledArmsButtonsOnly skips the commit for a disabled alarm.
func TestSuspend_DisabledArmsButtonsOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := devicetest.NewClock(at(22, 0, 10), at(7, 0, 0))
	engine := scheduler.NewEngine(clock, at(7, 0, 0), 2*time.Hour)
	suspender := new(devicetest.Suspender)

	require.NoError(t, engine.Disable(ctx))

	err := NewController(engine, suspender, 10*time.Second).Suspend(ctx, at(22, 0, 10))
	require.ErrorIs(t, err, device.ErrSuspended)
	require.Zero(t, clock.RegisterWrites)
	require.Equal(t, domain.WakeOnButtons, suspender.Sources)
}

// TestSuspend_CommitFailureDoesNotSuspend keeps the device awake when the register write fails.
func TestSuspend_CommitFailureDoesNotSuspend(t *testing.T) {
	t.Parallel()

	clock := devicetest.NewClock(at(22, 0, 10), at(7, 0, 0))
	clock.Fail = true

	engine := scheduler.NewEngine(clock, at(7, 0, 0), 2*time.Hour)
	suspender := new(devicetest.Suspender)

	err := NewController(engine, suspender, 10*time.Second).Suspend(context.Background(), at(22, 0, 10))
	require.ErrorIs(t, err, devicetest.ErrInjected)
	require.Zero(t, suspender.Suspends)
}
