package sim

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
)

// fakeTime is a settable time source.
type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *fakeTime) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = t
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, time.October, 19, hour, minute, second, 0, time.UTC)
}

// TestRTC_FreshClockUsesDefaultAlarm seeds the register from the default alarm.
func TestRTC_FreshClockUsesDefaultAlarm(t *testing.T) {
	t.Parallel()

	clock := &fakeTime{now: at(22, 15, 0)}

	rtc, err := NewRTC(filepath.Join(t.TempDir(), "rtc.yaml"), at(7, 0, 0), WithTimeSource(clock.Now))
	require.NoError(t, err)

	register, err := rtc.AlarmRegister(context.Background())
	require.NoError(t, err)
	require.Equal(t, at(7, 0, 0), register)
	require.True(t, rtc.AlarmEnabled())
}

// TestRTC_NowAppliesOffsetAndTruncates checks the reading granularity.
func TestRTC_NowAppliesOffsetAndTruncates(t *testing.T) {
	t.Parallel()

	clock := &fakeTime{now: at(6, 59, 0).Add(700 * time.Millisecond)}

	rtc, err := NewRTC(filepath.Join(t.TempDir(), "rtc.yaml"), at(7, 0, 0),
		WithTimeSource(clock.Now), WithOffset(30*time.Second))
	require.NoError(t, err)

	now, err := rtc.Now(context.Background())
	require.NoError(t, err)
	require.Equal(t, at(6, 59, 30), now)
}

// TestRTC_StateSurvivesReload persists the register and the wake cause.
func TestRTC_StateSurvivesReload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rtc.yaml")
	clock := &fakeTime{now: at(7, 0, 30)}

	rtc, err := NewRTC(path, at(7, 0, 0), WithTimeSource(clock.Now))
	require.NoError(t, err)

	next := time.Date(2026, time.October, 20, 7, 4, 0, 0, time.UTC)
	require.NoError(t, rtc.SetAlarmRegister(ctx, next))
	require.NoError(t, rtc.SetWakeCause(domain.WakeTimerMatch))

	reloaded, err := NewRTC(path, at(9, 0, 0), WithTimeSource(clock.Now))
	require.NoError(t, err)

	register, err := reloaded.AlarmRegister(ctx)
	require.NoError(t, err)
	require.True(t, next.Equal(register))

	cause, err := reloaded.WakeCause(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.WakeTimerMatch, cause)

	// Consumed: the next boot is cold unless something wakes it.
	cause, err = reloaded.WakeCause(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.WakeColdBoot, cause)
}

// TestRTC_AlarmMatches matches on time of day while armed only.
func TestRTC_AlarmMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeTime{now: at(23, 0, 0)}

	rtc, err := NewRTC(filepath.Join(t.TempDir(), "rtc.yaml"), at(7, 0, 0), WithTimeSource(clock.Now))
	require.NoError(t, err)

	require.NoError(t, rtc.SetAlarmRegister(ctx, time.Date(2026, time.October, 20, 7, 0, 0, 0, time.UTC)))
	require.False(t, rtc.AlarmMatches())

	clock.Set(at(7, 0, 0))
	require.True(t, rtc.AlarmMatches())

	require.NoError(t, rtc.ClearAlarmRegister(ctx))
	require.False(t, rtc.AlarmMatches())
}
