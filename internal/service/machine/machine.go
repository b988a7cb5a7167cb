package machine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
	"github.com/oshokin/bedside-alarm/internal/service/scheduler"
)

const (
	// EscalationCounterKey stores how many long snoozes the current alarm used.
	EscalationCounterKey = "long_snooze_count"
	// EscalationStampKey stores the unix time of the last long snooze.
	EscalationStampKey = "long_snooze_stamp"
)

var (
	// ErrClockUnavailable means the time source failed. The machine holds in Ringing.
	ErrClockUnavailable = errors.New("clock unavailable")
	// ErrCounterStore means the durable counter could not be read or written.
	ErrCounterStore = errors.New("counter store failure")
)

// Outcome tells the power controller what a step asks for beyond the state itself.
type Outcome int

const (
	// Continue asks for nothing special.
	Continue Outcome = iota
	// SuspendLongSnooze asks for immediate standby after a long snooze.
	SuspendLongSnooze
	// SuspendDisabled asks for immediate standby after the alarm was switched off.
	SuspendDisabled
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case SuspendLongSnooze:
		return "long-snooze"
	case SuspendDisabled:
		return "disabled"
	default:
		return "continue"
	}
}

// Deps are the collaborators the machine calls into.
type Deps struct {
	Clock    device.Clock
	Counters device.CounterStore
	Token    device.TokenVerifier
	Buttons  device.Buttons
	Tone     device.Tone
}

// Machine is the runtime state of one wake session.
// It is not safe for concurrent use; only the poll loop calls it.
type Machine struct {
	deps   Deps
	limits domain.Limits
	engine *scheduler.Engine

	state   domain.State
	session *domain.SnoozeSession
	// edge is set by button interrupts while Ringing.
	edge device.EdgeFlag

	// snoozeCount is the number of short snoozes in this wake session.
	snoozeCount int
	// escalation is the cached durable long-snooze counter.
	escalation int
	// middleReleased turns true once the middle button is seen up during a snooze.
	middleReleased bool
	// middleHeldSince is when the middle button went down in Idle, zero when up.
	middleHeldSince time.Time

	now             time.Time
	lastInteraction time.Time
}

// New seeds the machine from the wake cause: a timer match starts ringing,
// anything else starts in Idle.
func New(
	ctx context.Context,
	deps Deps,
	engine *scheduler.Engine,
	limits domain.Limits,
	cause domain.WakeCause,
	now time.Time,
) (*Machine, error) {
	escalation, err := deps.Counters.ReadCounter(ctx, EscalationCounterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrCounterStore, EscalationCounterKey, err)
	}

	m := &Machine{
		deps:            deps,
		limits:          limits,
		engine:          engine,
		state:           domain.Idle,
		escalation:      escalation,
		now:             now,
		lastInteraction: now,
	}

	logger.InfoKV(ctx, "Machine booted",
		"wake_cause", cause.String(),
		"alarm_time", domain.FormatTimeOfDay(engine.AlarmTime()),
		"escalation_count", escalation,
	)

	if cause == domain.WakeTimerMatch {
		if err = m.enterRinging(ctx, now, true); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// State returns the current runtime state.
func (m *Machine) State() domain.State {
	return m.state
}

// Now returns the clock reading of the last step.
func (m *Machine) Now() time.Time {
	return m.now
}

// LastInteraction returns when a button was last seen pressed in Idle.
func (m *Machine) LastInteraction() time.Time {
	return m.lastInteraction
}

// EscalationCount returns the cached long-snooze counter.
func (m *Machine) EscalationCount() int {
	return m.escalation
}

// Session returns the active snooze session or nil.
func (m *Machine) Session() *domain.SnoozeSession {
	return m.session
}

// Status returns a snapshot for observers outside the poll loop.
func (m *Machine) Status() *domain.Status {
	status := &domain.Status{
		State:           m.state,
		Now:             m.now,
		AlarmTime:       m.engine.AlarmTime(),
		Locked:          m.engine.Locked(m.now),
		EscalationCount: m.escalation,
	}

	if m.session != nil {
		session := *m.session
		status.Session = &session
	}

	return status
}

// Step runs one poll tick.
func (m *Machine) Step(ctx context.Context) (Outcome, error) {
	now, err := m.deps.Clock.Now(ctx)
	if err != nil {
		m.holdRinging(ctx)

		return Continue, fmt.Errorf("%w: %w", ErrClockUnavailable, err)
	}

	m.now = now

	switch m.state {
	case domain.Ringing:
		return m.stepRinging(ctx, now)
	case domain.Snoozed, domain.Escalated:
		return m.stepSnoozed(ctx, now)
	default:
		return m.stepIdle(ctx, now)
	}
}

func (m *Machine) stepRinging(ctx context.Context, now time.Time) (Outcome, error) {
	if m.edge.TakeAndClear() {
		m.snooze(ctx, now)

		return Continue, nil
	}

	// The tone plays a finite clip; restart it until the alarm is acknowledged.
	if !m.deps.Tone.IsActive() {
		m.deps.Tone.Start()
	}

	return Continue, nil
}

func (m *Machine) stepSnoozed(ctx context.Context, now time.Time) (Outcome, error) {
	if !m.deps.Buttons.IsPressed(domain.Button2) {
		m.middleReleased = true
	} else if m.middleReleased {
		committed, err := m.longSnooze(ctx, now)
		if err != nil {
			return Continue, err
		}

		if committed {
			return SuspendLongSnooze, nil
		}
	}

	if m.deps.Token.Poll(ctx, m.limits.TokenTimeout) {
		return Continue, m.dismiss(ctx, now)
	}

	if m.session.Expired(now) {
		logger.InfoKV(ctx, "Snooze expired", "occurrence", m.session.Occurrence)

		return Continue, m.enterRinging(ctx, now, false)
	}

	return Continue, nil
}

//nolint:cyclop // Adjustment, unlock and disable share the same button reads.
func (m *Machine) stepIdle(ctx context.Context, now time.Time) (Outcome, error) {
	if !m.engine.Disabled() && domain.MatchesTimeOfDay(now, m.engine.AlarmTime()) {
		return Continue, m.enterRinging(ctx, now, true)
	}

	var (
		minus  = m.deps.Buttons.IsPressed(domain.Button1)
		middle = m.deps.Buttons.IsPressed(domain.Button2)
		plus   = m.deps.Buttons.IsPressed(domain.Button3)
	)

	if !minus && !middle && !plus {
		m.middleHeldSince = time.Time{}

		return Continue, nil
	}

	m.lastInteraction = now

	if m.engine.Locked(now) {
		if !m.deps.Token.Poll(ctx, m.limits.TokenTimeout) {
			// Rejected silently, the display layer shows the lock.
			logger.DebugKV(ctx, "Adjustment locked", "alarm_time", domain.FormatTimeOfDay(m.engine.AlarmTime()))

			return Continue, nil
		}

		m.engine.Unlock()
		m.middleHeldSince = time.Time{}

		logger.Info(ctx, "Token verified, adjustment unlocked")
	}

	if minus {
		m.adjust(ctx, -m.limits.AdjustStep, now)
	}

	if plus {
		m.adjust(ctx, m.limits.AdjustStep, now)
	}

	if !middle {
		m.middleHeldSince = time.Time{}

		return Continue, nil
	}

	if m.middleHeldSince.IsZero() {
		m.middleHeldSince = now

		return Continue, nil
	}

	if now.Sub(m.middleHeldSince) < m.limits.DisableHoldTime {
		return Continue, nil
	}

	if err := m.engine.Disable(ctx); err != nil {
		return Continue, fmt.Errorf("%w: %w", ErrClockUnavailable, err)
	}

	return SuspendDisabled, nil
}

func (m *Machine) adjust(ctx context.Context, delta time.Duration, now time.Time) {
	if _, err := m.engine.RequestAdjustment(ctx, delta, now, false); err != nil {
		logger.DebugKV(ctx, "Adjustment rejected", "error", err)
	}
}

// enterRinging starts the tone and arms edge interrupts on every button.
// fresh is false when a snooze countdown runs out.
func (m *Machine) enterRinging(ctx context.Context, now time.Time, fresh bool) error {
	if fresh {
		if err := m.startCycle(ctx, now); err != nil {
			return err
		}
	}

	m.state = domain.Ringing
	m.session = nil

	m.armButtons()

	if !m.deps.Tone.IsActive() {
		m.deps.Tone.Start()
	}

	logger.InfoKV(ctx, "Alarm ringing", "at", domain.FormatTimeOfDay(now), "fresh", fresh)

	return nil
}

// startCycle resets the escalation counter when the previous long snooze
// belongs to an earlier day's alarm.
func (m *Machine) startCycle(ctx context.Context, now time.Time) error {
	if m.escalation == 0 {
		return nil
	}

	stamp, err := m.deps.Counters.ReadCounter(ctx, EscalationStampKey)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrCounterStore, EscalationStampKey, err)
	}

	if now.Sub(time.Unix(int64(stamp), 0)) < m.limits.EscalationCycleGap {
		return nil
	}

	if err = m.writeEscalation(ctx, 0); err != nil {
		return err
	}

	logger.Info(ctx, "New alarm cycle, escalation counter reset")

	return nil
}

// holdRinging is the fail-safe when time can no longer be trusted.
func (m *Machine) holdRinging(ctx context.Context) {
	if m.state != domain.Ringing {
		m.state = domain.Ringing
		m.session = nil

		m.armButtons()

		logger.WarnKV(ctx, "Clock lost, holding alarm")
	}

	if !m.deps.Tone.IsActive() {
		m.deps.Tone.Start()
	}
}

// armButtons clears a stale edge and arms the interrupt on every button.
func (m *Machine) armButtons() {
	m.edge.TakeAndClear()

	for _, id := range domain.AllButtons() {
		m.deps.Buttons.OnRisingEdge(id, &m.edge)
	}
}

func (m *Machine) snooze(ctx context.Context, now time.Time) {
	m.deps.Tone.Stop()

	for _, id := range domain.AllButtons() {
		m.deps.Buttons.Detach(id)
	}

	m.snoozeCount++
	m.session = &domain.SnoozeSession{
		StartedAt:  now,
		Occurrence: m.snoozeCount,
		Duration:   m.limits.SnoozeDuration(m.snoozeCount),
	}
	m.state = m.limits.SnoozeState(m.snoozeCount)
	// A middle press that acknowledged the alarm must be released before it counts as a long snooze.
	m.middleReleased = !m.deps.Buttons.IsPressed(domain.Button2)

	logger.InfoKV(ctx, "Alarm snoozed",
		"state", m.state.String(),
		"occurrence", m.snoozeCount,
		"duration", m.session.Duration,
	)
}

// longSnooze moves the alarm and reports whether the device should suspend.
// Once the counter reaches the limit the press is ignored.
func (m *Machine) longSnooze(ctx context.Context, now time.Time) (bool, error) {
	if m.escalation >= m.limits.LongSnoozeLimit {
		logger.DebugKV(ctx, "Long snooze unavailable", "escalation_count", m.escalation)

		return false, nil
	}

	if err := m.writeEscalation(ctx, m.escalation+1); err != nil {
		return false, err
	}

	if err := m.deps.Counters.WriteCounter(ctx, EscalationStampKey, int(now.Unix())); err != nil {
		return false, fmt.Errorf("%w: write %s: %w", ErrCounterStore, EscalationStampKey, err)
	}

	if m.deps.Tone.IsActive() {
		m.deps.Tone.Stop()
	}

	alarmAt := m.engine.Advance(m.limits.LongSnoozeLength)

	m.state = domain.Idle
	m.session = nil

	logger.InfoKV(ctx, "Long snooze committed",
		"alarm_time", domain.FormatTimeOfDay(alarmAt),
		"remaining", m.limits.LongSnoozeLimit-m.escalation,
	)

	return true, nil
}

// dismiss resolves the snooze session after a verified token.
func (m *Machine) dismiss(ctx context.Context, now time.Time) error {
	if m.deps.Tone.IsActive() {
		m.deps.Tone.Stop()
	}

	if err := m.writeEscalation(ctx, 0); err != nil {
		return err
	}

	m.state = domain.Idle
	m.session = nil
	m.lastInteraction = now

	logger.Info(ctx, "Alarm dismissed")

	return nil
}

func (m *Machine) writeEscalation(ctx context.Context, value int) error {
	if err := m.deps.Counters.WriteCounter(ctx, EscalationCounterKey, value); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrCounterStore, EscalationCounterKey, err)
	}

	m.escalation = value

	return nil
}
