package alarm

import "time"

// State is the runtime mode of the device.
type State int

const (
	// Idle is the normal wake window: time display and alarm adjustment.
	Idle State = iota
	// Ringing means the tone is active and the device listens for a dismiss press.
	Ringing
	// Snoozed means the tone is stopped and a short countdown is running.
	Snoozed
	// Escalated is a snooze countdown using the shortened duration.
	Escalated
)

// String returns the state name used in logs and the panel API.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ringing:
		return "ringing"
	case Snoozed:
		return "snoozed"
	case Escalated:
		return "escalated"
	default:
		return "unknown"
	}
}

// Snoozing reports whether a snooze countdown is active.
func (s State) Snoozing() bool {
	return s == Snoozed || s == Escalated
}

// Alarming reports whether the device is in the middle of an alarm and must not suspend.
func (s State) Alarming() bool {
	return s == Ringing || s.Snoozing()
}

// SnoozeSession is the payload of an active snooze countdown.
type SnoozeSession struct {
	// StartedAt is when the ringing alarm was acknowledged.
	StartedAt time.Time
	// Occurrence is the number of short snoozes in this wake session, this one included.
	Occurrence int
	// Duration is the countdown length chosen for this occurrence.
	Duration time.Duration
}

// Deadline returns the instant the alarm rings again.
func (s *SnoozeSession) Deadline() time.Time {
	return s.StartedAt.Add(s.Duration)
}

// Remaining returns the countdown left at now, never negative.
func (s *SnoozeSession) Remaining(now time.Time) time.Duration {
	left := s.Deadline().Sub(now)
	if left < 0 {
		return 0
	}

	return left
}

// Expired reports whether the countdown is over at now.
func (s *SnoozeSession) Expired(now time.Time) bool {
	return !now.Before(s.Deadline())
}

// Status is the state variant together with its payload.
// Session is non-nil only while the state is Snoozed or Escalated.
type Status struct {
	// State is the current runtime mode.
	State State
	// Now is the clock reading the snapshot was taken at.
	Now time.Time
	// Session is the active snooze countdown, if any.
	Session *SnoozeSession
	// AlarmTime is the alarm currently held by the scheduling engine.
	AlarmTime time.Time
	// Locked reports whether adjustment is currently locked.
	Locked bool
	// EscalationCount is the cached long-snooze counter.
	EscalationCount int
}

// Clone returns a copy that does not share the session pointer.
func (s *Status) Clone() *Status {
	cloned := *s

	if s.Session != nil {
		session := *s.Session
		cloned.Session = &session
	}

	return &cloned
}
