package alarmclock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/bedside-alarm/internal/config"
	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
	"github.com/oshokin/bedside-alarm/internal/service/machine"
	"github.com/oshokin/bedside-alarm/internal/service/power"
	"github.com/oshokin/bedside-alarm/internal/service/scheduler"
)

// service runs wake sessions and serves the panel API.
type service struct {
	hw       *hardware
	counters device.CounterStore
	limits   domain.Limits
	poll     time.Duration
	// exitOnSuspend ends Run after the first standby.
	exitOnSuspend bool

	// status is the last snapshot published by the poll loop.
	status atomic.Pointer[domain.Status]
}

func newService(settings *config.Config, hw *hardware, counters device.CounterStore) *service {
	return &service{
		hw:            hw,
		counters:      counters,
		limits:        settings.Limits,
		poll:          settings.PollInterval,
		exitOnSuspend: settings.Suspend.Mode == config.SuspendExit,
	}
}

// PressButton pushes a panel button down.
func (s *service) PressButton(_ context.Context, id domain.ButtonID) {
	s.hw.panel.Press(id)
}

// ReleaseButton lets a panel button go.
func (s *service) ReleaseButton(_ context.Context, id domain.ButtonID) {
	s.hw.panel.Release(id)
}

// PresentToken places a token on the reader.
func (s *service) PresentToken(_ context.Context, uid string) error {
	normalized, err := config.NormalizeToken(uid)
	if err != nil {
		return err
	}

	s.hw.panel.PresentToken(normalized)

	return nil
}

// RemoveToken takes the token off the reader.
func (s *service) RemoveToken(context.Context) {
	s.hw.panel.RemoveToken()
}

// Status returns the last published snapshot.
func (s *service) Status(context.Context) *domain.Status {
	current := s.status.Load()
	if current == nil {
		return nil
	}

	return current.Clone()
}

// run repeats wake sessions until the context ends.
func (s *service) run(ctx context.Context) error {
	for {
		err := s.session(ctx)

		switch {
		case errors.Is(err, device.ErrSuspended):
			if s.exitOnSuspend {
				return nil
			}
		case ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}
}

// session runs one wake cycle, from reading the wake cause to standby.
//
//nolint:cyclop // Boot reads and the poll loop share the fatal error paths.
func (s *service) session(ctx context.Context) error {
	ctx = logger.WithKV(ctx, "session_id", uuid.NewString())

	cause, err := s.hw.rtc.WakeCause(ctx)
	if err != nil {
		return fmt.Errorf("read wake cause: %w", err)
	}

	alarmAt, err := s.hw.rtc.AlarmRegister(ctx)
	if err != nil {
		return fmt.Errorf("read alarm register: %w", err)
	}

	now, err := s.hw.rtc.Now(ctx)
	if err != nil {
		return fmt.Errorf("read clock: %w", err)
	}

	engine := scheduler.NewEngine(s.hw.rtc, alarmAt, s.limits.LockWindow)
	deps := machine.Deps{
		Clock:    s.hw.rtc,
		Counters: s.counters,
		Token:    s.hw.verifier,
		Buttons:  s.hw.panel,
		Tone:     s.hw.tone,
	}

	m, err := machine.New(ctx, deps, engine, s.limits, cause, now)
	if err != nil {
		return err
	}

	controller := power.NewController(engine, s.hw.suspender, s.limits.ButtonHoldTime)

	s.status.Store(m.Status())

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		outcome, err := m.Step(ctx)

		s.status.Store(m.Status())

		switch {
		case errors.Is(err, machine.ErrClockUnavailable):
			logger.ErrorKV(ctx, "Clock unavailable, holding alarm", "error", err)

			continue
		case err != nil:
			return err
		}

		decision := controller.Evaluate(m.State(), m.Now(), m.LastInteraction(), outcome)
		if decision != power.RequestSuspend {
			continue
		}

		logger.InfoKV(ctx, "Suspend requested", "outcome", outcome.String())

		return controller.Suspend(ctx, m.Now())
	}
}
