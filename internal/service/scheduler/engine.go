package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
)

// ErrAdjustmentLocked is returned when an adjustment falls in the locked
// window and no token has been verified this session.
var ErrAdjustmentLocked = errors.New("alarm adjustment is locked")

// Engine holds the alarm time for one wake session.
type Engine struct {
	// clock receives the committed alarm register.
	clock device.Clock
	// lockWindow is the span before the alarm during which adjustment is locked.
	lockWindow time.Duration
	// alarmTime is the pending alarm.
	alarmTime time.Time
	// unlocked is set after a token verification and lasts until suspend.
	unlocked bool
	// disabled means the alarm register was cleared this session.
	disabled bool
	// committed is the value last written to the register, nil before the first commit.
	committed *time.Time
}

// NewEngine creates an engine seeded with the alarm read from the clock register.
func NewEngine(clock device.Clock, alarmTime time.Time, lockWindow time.Duration) *Engine {
	return &Engine{
		clock:      clock,
		lockWindow: lockWindow,
		alarmTime:  alarmTime,
	}
}

// IsAdjustmentLocked reports whether now lies in [alarmTime-window, alarmTime)
// on the wrapped 24-hour clock. Dates are ignored.
func IsAdjustmentLocked(now, alarmTime time.Time, window time.Duration) bool {
	windowSeconds := int(window / time.Second)
	if windowSeconds <= 0 {
		return false
	}

	// Seconds from now until the alarm on the clock face, in [0, day).
	untilAlarm := ((domain.SecondsOfDay(alarmTime)-domain.SecondsOfDay(now))%domain.SecondsPerDay +
		domain.SecondsPerDay) % domain.SecondsPerDay

	return untilAlarm > 0 && untilAlarm <= windowSeconds
}

// NextOccurrence returns the alarm moved to the day after now, keeping hour
// and minute and zeroing the seconds.
func NextOccurrence(now, alarmTime time.Time) time.Time {
	year, month, day := now.Date()

	return time.Date(year, month, day+1, alarmTime.Hour(), alarmTime.Minute(), 0, 0, now.Location())
}

// AlarmTime returns the pending alarm.
func (e *Engine) AlarmTime() time.Time {
	return e.alarmTime
}

// Locked reports whether a direct adjustment at now would be rejected.
func (e *Engine) Locked(now time.Time) bool {
	return !e.unlocked && IsAdjustmentLocked(now, e.alarmTime, e.lockWindow)
}

// Unlock allows adjustment for the rest of the wake session.
func (e *Engine) Unlock() {
	e.unlocked = true
}

// Disabled reports whether the alarm was switched off this session.
func (e *Engine) Disabled() bool {
	return e.disabled
}

// RequestAdjustment moves the alarm by delta unless it is locked and the
// caller is not authorized. A rejection leaves the alarm unchanged.
func (e *Engine) RequestAdjustment(
	ctx context.Context,
	delta time.Duration,
	now time.Time,
	authorized bool,
) (time.Time, error) {
	if !authorized && e.Locked(now) {
		logger.DebugKV(ctx, "Adjustment rejected", "alarm_time", domain.FormatTimeOfDay(e.alarmTime), "delta", delta)

		return e.alarmTime, ErrAdjustmentLocked
	}

	e.alarmTime = e.alarmTime.Add(delta)

	logger.DebugKV(ctx, "Alarm adjusted", "alarm_time", domain.FormatTimeOfDay(e.alarmTime), "delta", delta)

	return e.alarmTime, nil
}

// Advance moves the alarm without consulting the lock. Used by long snooze.
func (e *Engine) Advance(d time.Duration) time.Time {
	e.alarmTime = e.alarmTime.Add(d)

	return e.alarmTime
}

// CommitForNextOccurrence normalizes the alarm to its next occurrence and
// writes it to the clock register. Repeating the call with the same result
// does not rewrite the register.
func (e *Engine) CommitForNextOccurrence(ctx context.Context, now time.Time) (time.Time, error) {
	next := NextOccurrence(now, e.alarmTime)

	if e.committed != nil && e.committed.Equal(next) {
		return next, nil
	}

	if err := e.clock.SetAlarmRegister(ctx, next); err != nil {
		return e.alarmTime, fmt.Errorf("set alarm register: %w", err)
	}

	e.alarmTime = next
	e.committed = &next

	logger.InfoKV(ctx, "Alarm committed", "alarm_at", next.Format(time.DateTime))

	return next, nil
}

// Disable clears the alarm register so the next standby has no timer wake.
func (e *Engine) Disable(ctx context.Context) error {
	if err := e.clock.ClearAlarmRegister(ctx); err != nil {
		return fmt.Errorf("clear alarm register: %w", err)
	}

	e.disabled = true

	logger.Info(ctx, "Alarm disabled")

	return nil
}
