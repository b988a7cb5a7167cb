package sim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
)

// rtcFilePermissions is the permission of the clock state file.
const rtcFilePermissions = 0o600

// rtcState is the persisted part of the clock: what survives a power cycle
// on a battery-backed RTC.
type rtcState struct {
	// AlarmAt is the alarm-match register.
	AlarmAt time.Time `yaml:"alarm_at"`
	// AlarmEnabled reports whether the match interrupt is armed.
	AlarmEnabled bool `yaml:"alarm_enabled"`
	// WakeCause is the pending wake reason for the next boot.
	WakeCause string `yaml:"wake_cause,omitempty"`
}

// RTC is a real-time clock backed by the host time and a YAML state file.
type RTC struct {
	path   string
	now    func() time.Time
	offset time.Duration

	mu    sync.Mutex
	state rtcState
}

// RTCOption configures an RTC.
type RTCOption func(*RTC)

// WithTimeSource replaces the host wall clock, mainly for tests.
func WithTimeSource(now func() time.Time) RTCOption {
	return func(r *RTC) {
		if now != nil {
			r.now = now
		}
	}
}

// WithOffset shifts every reading by offset.
func WithOffset(offset time.Duration) RTCOption {
	return func(r *RTC) {
		r.offset = offset
	}
}

// NewRTC loads the clock state from path. A missing file starts a fresh
// clock whose register holds defaultAlarm on today's date.
func NewRTC(path string, defaultAlarm time.Time, opts ...RTCOption) (*RTC, error) {
	r := &RTC{
		path: path,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &r.state); err != nil {
			return nil, fmt.Errorf("unmarshal clock state: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Fresh clock.
	default:
		return nil, fmt.Errorf("read clock state: %w", err)
	}

	if r.state.AlarmAt.IsZero() {
		today := r.reading()
		r.state.AlarmAt = time.Date(
			today.Year(), today.Month(), today.Day(),
			defaultAlarm.Hour(), defaultAlarm.Minute(), 0, 0,
			today.Location(),
		)
		r.state.AlarmEnabled = true
	}

	return r, nil
}

// Now implements device.Clock.
func (r *RTC) Now(context.Context) (time.Time, error) {
	return r.reading(), nil
}

// AlarmRegister implements device.Clock.
func (r *RTC) AlarmRegister(context.Context) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.AlarmAt, nil
}

// SetAlarmRegister implements device.Clock.
func (r *RTC) SetAlarmRegister(_ context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.AlarmAt = at
	r.state.AlarmEnabled = true

	return r.persist()
}

// ClearAlarmRegister implements device.Clock.
func (r *RTC) ClearAlarmRegister(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.AlarmEnabled = false

	return r.persist()
}

// WakeCause implements device.Clock. The pending cause is consumed, so the
// next read reports a cold boot.
func (r *RTC) WakeCause(context.Context) (domain.WakeCause, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cause, err := domain.ParseWakeCause(r.state.WakeCause)
	if err != nil {
		return domain.WakeColdBoot, err
	}

	if r.state.WakeCause == "" {
		return cause, nil
	}

	r.state.WakeCause = ""

	if err = r.persist(); err != nil {
		return domain.WakeColdBoot, err
	}

	return cause, nil
}

// SetWakeCause records the reason reported by the next WakeCause call.
func (r *RTC) SetWakeCause(cause domain.WakeCause) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.WakeCause = cause.String()

	return r.persist()
}

// AlarmMatches reports whether the armed register matches the current second.
func (r *RTC) AlarmMatches() bool {
	now := r.reading()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.AlarmEnabled && domain.MatchesTimeOfDay(now, r.state.AlarmAt)
}

// AlarmEnabled reports whether the match interrupt is armed.
func (r *RTC) AlarmEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.AlarmEnabled
}

func (r *RTC) reading() time.Time {
	return r.now().Add(r.offset).Truncate(time.Second)
}

// persist writes the state; callers hold mu.
func (r *RTC) persist() error {
	data, err := yaml.Marshal(&r.state)
	if err != nil {
		return fmt.Errorf("marshal clock state: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(r.path), data, rtcFilePermissions); err != nil {
		return fmt.Errorf("write clock state: %w", err)
	}

	return nil
}
