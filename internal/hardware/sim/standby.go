package sim

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
)

// Standby keeps the process alive while "suspended" and returns once an
// armed source fires: the clock register matches or a button is pressed.
type Standby struct {
	rtc   *RTC
	panel *Panel
	poll  time.Duration

	mu      sync.Mutex
	sources domain.WakeSources

	// idle runs after a check that found no wake, before waiting. Tests only.
	idle func()
}

// NewStandby creates a standby that checks the wake sources every poll.
func NewStandby(rtc *RTC, panel *Panel, poll time.Duration) *Standby {
	return &Standby{
		rtc:   rtc,
		panel: panel,
		poll:  poll,
	}
}

// ArmWake implements device.Suspender.
func (s *Standby) ArmWake(_ context.Context, sources domain.WakeSources) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = sources

	return nil
}

// SuspendNow implements device.Suspender. It records the wake cause on the
// clock and returns device.ErrSuspended, or the context error.
func (s *Standby) SuspendNow(ctx context.Context) error {
	s.mu.Lock()
	sources := s.sources
	s.mu.Unlock()

	presses := s.panel.Presses()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		// Taken before the check so a press landing after it still wakes us.
		changed := s.panel.Changed()

		cause, woke := s.check(sources, presses)
		if woke {
			logger.InfoKV(ctx, "Woken from standby", "wake_cause", cause.String())

			if err := s.rtc.SetWakeCause(cause); err != nil {
				return err
			}

			return device.ErrSuspended
		}

		if s.idle != nil {
			s.idle()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		case <-ticker.C:
		}
	}
}

func (s *Standby) check(sources domain.WakeSources, presses uint64) (domain.WakeCause, bool) {
	if sources.Has(domain.WakeOnTimer) && s.rtc.AlarmMatches() {
		return domain.WakeTimerMatch, true
	}

	if sources.Has(domain.WakeOnButtons) && s.panel.Presses() > presses {
		return domain.WakeManualButton, true
	}

	return domain.WakeColdBoot, false
}
