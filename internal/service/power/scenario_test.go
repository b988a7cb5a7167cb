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

// session wires a machine and a controller over shared fakes.
type session struct {
	clock      *devicetest.Clock
	counters   *devicetest.Counters
	buttons    *devicetest.Buttons
	suspender  *devicetest.Suspender
	machine    *machine.Machine
	controller *Controller
}

func boot(t *testing.T, cause domain.WakeCause, now, alarmAt time.Time, counters *devicetest.Counters) *session {
	t.Helper()

	limits := domain.DefaultLimits()
	s := &session{
		clock:     devicetest.NewClock(now, alarmAt),
		counters:  counters,
		buttons:   devicetest.NewButtons(),
		suspender: new(devicetest.Suspender),
	}

	engine := scheduler.NewEngine(s.clock, alarmAt, limits.LockWindow)

	m, err := machine.New(context.Background(), machine.Deps{
		Clock:    s.clock,
		Counters: counters,
		Token:    new(devicetest.Token),
		Buttons:  s.buttons,
		Tone:     new(devicetest.Tone),
	}, engine, limits, cause, now)
	require.NoError(t, err)

	s.machine = m
	s.controller = NewController(engine, s.suspender, limits.ButtonHoldTime)

	return s
}

// tick runs one poll and, when asked to, the standby hand-off.
func (s *session) tick(t *testing.T) (Decision, error) {
	t.Helper()

	outcome, err := s.machine.Step(context.Background())
	require.NoError(t, err)

	decision := s.controller.Evaluate(s.machine.State(), s.machine.Now(), s.machine.LastInteraction(), outcome)
	if decision != RequestSuspend {
		return decision, nil
	}

	return decision, s.controller.Suspend(context.Background(), s.machine.Now())
}

// TestLongSnoozeSuspendsImmediately walks a long snooze from ringing to standby.
func TestLongSnoozeSuspendsImmediately(t *testing.T) {
	t.Parallel()

	counters := devicetest.NewCounters()
	counters.Values[machine.EscalationCounterKey] = 1
	counters.Values[machine.EscalationStampKey] = int(at(6, 56, 0).Unix())

	s := boot(t, domain.WakeTimerMatch, at(7, 0, 0), at(7, 0, 0), counters)

	s.buttons.Press(domain.Button1)
	decision, err := s.tick(t)
	require.NoError(t, err)
	require.Equal(t, StaySuspendNever, decision)
	s.buttons.Release(domain.Button1)

	s.clock.Advance(time.Second)
	s.buttons.Press(domain.Button2)

	decision, err = s.tick(t)
	require.Equal(t, RequestSuspend, decision)
	require.ErrorIs(t, err, device.ErrSuspended)

	require.Equal(t, 2, counters.Get(machine.EscalationCounterKey))
	require.Equal(t, time.Date(2026, 10, 20, 7, 4, 0, 0, time.UTC), s.clock.Register)
	require.Equal(t, domain.WakeOnTimer|domain.WakeOnButtons, s.suspender.Sources)
	require.Equal(t, 1, s.suspender.Suspends)
}

// TestIdleTimeoutSuspends commits the next-day alarm after BUTTON_HOLD_TIME without presses.
func TestIdleTimeoutSuspends(t *testing.T) {
	t.Parallel()

	s := boot(t, domain.WakeManualButton, at(21, 59, 55), at(7, 0, 0), devicetest.NewCounters())

	s.clock.Set(at(22, 0, 4))
	decision, err := s.tick(t)
	require.NoError(t, err)
	require.Equal(t, StaySuspendNever, decision)

	s.clock.Set(at(22, 0, 5))
	decision, err = s.tick(t)
	require.Equal(t, RequestSuspend, decision)
	require.ErrorIs(t, err, device.ErrSuspended)

	require.Equal(t, time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC), s.clock.Register)
	require.Equal(t, domain.WakeOnTimer|domain.WakeOnButtons, s.suspender.Sources)
}

// TestRingingNeverSuspends keeps an unattended alarm awake far past the idle timeout.
func TestRingingNeverSuspends(t *testing.T) {
	t.Parallel()

	s := boot(t, domain.WakeTimerMatch, at(7, 0, 0), at(7, 0, 0), devicetest.NewCounters())

	for range 10 {
		s.clock.Advance(time.Minute)

		decision, err := s.tick(t)
		require.NoError(t, err)
		require.Equal(t, StaySuspendNever, decision)
	}

	require.Zero(t, s.suspender.Suspends)
}
