package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSnoozeSession_Countdown verifies deadline, remaining time and expiry.
func TestSnoozeSession_Countdown(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 19, 7, 0, 5, 0, time.UTC)
	s := &SnoozeSession{StartedAt: start, Occurrence: 1, Duration: 30 * time.Second}

	require.Equal(t, start.Add(30*time.Second), s.Deadline())
	require.Equal(t, 10*time.Second, s.Remaining(start.Add(20*time.Second)))
	require.False(t, s.Expired(start.Add(29*time.Second)))
	require.True(t, s.Expired(start.Add(30*time.Second)))
	require.Zero(t, s.Remaining(start.Add(time.Minute)))
}

// TestStatusClone verifies the session payload is copied.
func TestStatusClone(t *testing.T) {
	t.Parallel()

	s := &Status{State: Snoozed, Session: &SnoozeSession{Occurrence: 2}}
	c := s.Clone()

	require.Equal(t, s, c)
	require.NotSame(t, s.Session, c.Session)
	require.Nil(t, (&Status{State: Idle}).Clone().Session)
}

// TestStatePredicates checks which states forbid suspension.
func TestStatePredicates(t *testing.T) {
	t.Parallel()

	require.False(t, Idle.Alarming())
	require.True(t, Ringing.Alarming())
	require.True(t, Snoozed.Alarming())
	require.True(t, Escalated.Alarming())
	require.False(t, Ringing.Snoozing())
	require.Equal(t, "escalated", Escalated.String())
}

// TestParseWakeCause covers names, aliases and rejection.
func TestParseWakeCause(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]WakeCause{
		"":       WakeColdBoot,
		"cold":   WakeColdBoot,
		"Timer":  WakeTimerMatch,
		"button": WakeManualButton,
	} {
		got, err := ParseWakeCause(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseWakeCause("lightning")
	require.Error(t, err)
}

// TestWakeSources checks set membership and rendering.
func TestWakeSources(t *testing.T) {
	t.Parallel()

	both := WakeOnTimer | WakeOnButtons
	require.True(t, both.Has(WakeOnTimer))
	require.True(t, both.Has(WakeOnButtons))
	require.False(t, WakeOnButtons.Has(WakeOnTimer))
	require.Equal(t, "timer+buttons", both.String())
	require.Equal(t, "none", WakeSources(0).String())
}

// TestMatchesTimeOfDay ignores the date and compares all three fields.
func TestMatchesTimeOfDay(t *testing.T) {
	t.Parallel()

	alarmAt := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)

	require.True(t, MatchesTimeOfDay(time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC), alarmAt))
	require.False(t, MatchesTimeOfDay(time.Date(2026, 10, 19, 7, 0, 1, 0, time.UTC), alarmAt))
	require.Equal(t, 7*3600, SecondsOfDay(alarmAt))
}
