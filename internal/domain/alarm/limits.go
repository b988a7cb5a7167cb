package alarm

import "time"

// Limits carries the timing constants of the alarm behaviour.
type Limits struct {
	// SnoozeTime is the short snooze countdown.
	SnoozeTime time.Duration `yaml:"snooze_time" env:"SNOOZE_TIME"`
	// SnoozeLimit is the occurrence count after which SnoozeLimitTime applies.
	SnoozeLimit int `yaml:"snooze_limit" env:"SNOOZE_LIMIT"`
	// SnoozeLimitTime is the shortened countdown.
	SnoozeLimitTime time.Duration `yaml:"snooze_limit_time" env:"SNOOZE_LIMIT_TIME"`
	// LongSnoozeLength is how far a long snooze moves the alarm.
	LongSnoozeLength time.Duration `yaml:"long_snooze_length" env:"LONG_SNOOZE_LENGTH"`
	// LongSnoozeLimit bounds the escalation counter.
	LongSnoozeLimit int `yaml:"long_snooze_limit" env:"LONG_SNOOZE_LIMIT"`
	// ButtonHoldTime is the idle timeout before standby.
	ButtonHoldTime time.Duration `yaml:"button_hold_time" env:"BUTTON_HOLD_TIME"`
	// LockWindow is the span before the alarm during which adjustment is locked.
	LockWindow time.Duration `yaml:"lock_window" env:"LOCK_WINDOW"`
	// AdjustStep is the per-poll change while an adjustment button is held.
	AdjustStep time.Duration `yaml:"adjust_step" env:"ADJUST_STEP"`
	// DisableHoldTime is how long the middle button must be held to disable the alarm.
	DisableHoldTime time.Duration `yaml:"disable_hold_time" env:"DISABLE_HOLD_TIME"`
	// TokenTimeout bounds one token verifier poll.
	TokenTimeout time.Duration `yaml:"token_timeout" env:"TOKEN_TIMEOUT"`
	// EscalationCycleGap separates two days' alarm cycles for the escalation counter.
	EscalationCycleGap time.Duration `yaml:"escalation_cycle_gap" env:"ESCALATION_CYCLE_GAP"`
}

// DefaultLimits returns the factory timing of the device.
func DefaultLimits() Limits {
	return Limits{
		SnoozeTime:         30 * time.Second,
		SnoozeLimit:        5,
		SnoozeLimitTime:    15 * time.Second,
		LongSnoozeLength:   4 * time.Minute,
		LongSnoozeLimit:    2,
		ButtonHoldTime:     10 * time.Second,
		LockWindow:         2 * time.Hour,
		AdjustStep:         10 * time.Second,
		DisableHoldTime:    3 * time.Second,
		TokenTimeout:       100 * time.Millisecond,
		EscalationCycleGap: 12 * time.Hour,
	}
}

// WithDefaults fills zero fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()

	if l.SnoozeTime <= 0 {
		l.SnoozeTime = d.SnoozeTime
	}

	if l.SnoozeLimit <= 0 {
		l.SnoozeLimit = d.SnoozeLimit
	}

	if l.SnoozeLimitTime <= 0 {
		l.SnoozeLimitTime = d.SnoozeLimitTime
	}

	if l.LongSnoozeLength <= 0 {
		l.LongSnoozeLength = d.LongSnoozeLength
	}

	if l.LongSnoozeLimit <= 0 {
		l.LongSnoozeLimit = d.LongSnoozeLimit
	}

	if l.ButtonHoldTime <= 0 {
		l.ButtonHoldTime = d.ButtonHoldTime
	}

	if l.LockWindow <= 0 {
		l.LockWindow = d.LockWindow
	}

	if l.AdjustStep <= 0 {
		l.AdjustStep = d.AdjustStep
	}

	if l.DisableHoldTime <= 0 {
		l.DisableHoldTime = d.DisableHoldTime
	}

	if l.TokenTimeout <= 0 {
		l.TokenTimeout = d.TokenTimeout
	}

	if l.EscalationCycleGap <= 0 {
		l.EscalationCycleGap = d.EscalationCycleGap
	}

	return l
}

// SnoozeDuration returns the countdown for the given occurrence count:
// SnoozeTime up to and including SnoozeLimit, SnoozeLimitTime after it.
func (l Limits) SnoozeDuration(occurrence int) time.Duration {
	if occurrence > l.SnoozeLimit {
		return l.SnoozeLimitTime
	}

	return l.SnoozeTime
}

// SnoozeState returns Escalated once the occurrence count passes SnoozeLimit.
func (l Limits) SnoozeState(occurrence int) State {
	if occurrence > l.SnoozeLimit {
		return Escalated
	}

	return Snoozed
}
