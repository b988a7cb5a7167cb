package devicetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
)

// ErrInjected is the error returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// Clock is a settable clock with an alarm register.
type Clock struct {
	mu sync.Mutex

	// Current is returned by Now.
	Current time.Time
	// Register is the alarm register content.
	Register time.Time
	// Enabled reports whether the alarm interrupt is enabled.
	Enabled bool
	// Cause is returned by WakeCause.
	Cause domain.WakeCause
	// Fail makes every call return ErrInjected.
	Fail bool
	// RegisterWrites counts SetAlarmRegister calls.
	RegisterWrites int
}

// NewClock creates a clock showing now with the alarm register set to alarmAt.
func NewClock(now, alarmAt time.Time) *Clock {
	return &Clock{Current: now, Register: alarmAt, Enabled: true}
}

// Now implements device.Clock.
func (c *Clock) Now(context.Context) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return time.Time{}, ErrInjected
	}

	return c.Current, nil
}

// AlarmRegister implements device.Clock.
func (c *Clock) AlarmRegister(context.Context) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return time.Time{}, ErrInjected
	}

	return c.Register, nil
}

// SetAlarmRegister implements device.Clock.
func (c *Clock) SetAlarmRegister(_ context.Context, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return ErrInjected
	}

	c.Register = at
	c.Enabled = true
	c.RegisterWrites++

	return nil
}

// ClearAlarmRegister implements device.Clock.
func (c *Clock) ClearAlarmRegister(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return ErrInjected
	}

	c.Enabled = false

	return nil
}

// WakeCause implements device.Clock.
func (c *Clock) WakeCause(context.Context) (domain.WakeCause, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return domain.WakeColdBoot, ErrInjected
	}

	return c.Cause, nil
}

// SetWakeCause records the cause returned by the next WakeCause call.
func (c *Clock) SetWakeCause(cause domain.WakeCause) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return ErrInjected
	}

	c.Cause = cause

	return nil
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Current = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Current = c.Current.Add(d)
}

// Counters is an in-memory counter store.
type Counters struct {
	mu sync.Mutex

	// Values holds the stored counters.
	Values map[string]int
	// Fail makes every call return ErrInjected.
	Fail bool
	// Writes counts WriteCounter calls.
	Writes int
}

// NewCounters creates an empty store.
func NewCounters() *Counters {
	return &Counters{Values: make(map[string]int)}
}

// ReadCounter implements device.CounterStore.
func (c *Counters) ReadCounter(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return 0, ErrInjected
	}

	return c.Values[key], nil
}

// WriteCounter implements device.CounterStore.
func (c *Counters) WriteCounter(_ context.Context, key string, value int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Fail {
		return ErrInjected
	}

	c.Values[key] = value
	c.Writes++

	return nil
}

// Get returns the stored value for key.
func (c *Counters) Get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Values[key]
}

// Token is a token verifier whose answer is set by the test.
type Token struct {
	mu sync.Mutex

	// Present is returned by Poll.
	Present bool
	// Polls counts Poll calls.
	Polls int
}

// Poll implements device.TokenVerifier.
func (t *Token) Poll(context.Context, time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Polls++

	return t.Present
}

// SetPresent changes the verifier answer.
func (t *Token) SetPresent(present bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Present = present
}

// Buttons simulates button levels and edge interrupts.
type Buttons struct {
	mu sync.Mutex

	pressed map[domain.ButtonID]bool
	armed   map[domain.ButtonID]*device.EdgeFlag
}

// NewButtons creates released, unarmed buttons.
func NewButtons() *Buttons {
	return &Buttons{
		pressed: make(map[domain.ButtonID]bool),
		armed:   make(map[domain.ButtonID]*device.EdgeFlag),
	}
}

// IsPressed implements device.Buttons.
func (b *Buttons) IsPressed(id domain.ButtonID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pressed[id]
}

// OnRisingEdge implements device.Buttons.
func (b *Buttons) OnRisingEdge(id domain.ButtonID, flag *device.EdgeFlag) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.armed[id] = flag
}

// Detach implements device.Buttons.
func (b *Buttons) Detach(id domain.ButtonID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.armed, id)
}

// Press holds the button down and fires its interrupt when armed.
func (b *Buttons) Press(id domain.ButtonID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pressed[id] {
		if flag := b.armed[id]; flag != nil {
			flag.Set()
		}
	}

	b.pressed[id] = true
}

// Release lets the button go.
func (b *Buttons) Release(id domain.ButtonID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pressed[id] = false
}

// Armed reports whether the button has an interrupt attached.
func (b *Buttons) Armed(id domain.ButtonID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.armed[id] != nil
}

// Tone records start and stop calls.
type Tone struct {
	mu sync.Mutex

	active bool
	// Starts counts Start calls.
	Starts int
	// Stops counts Stop calls.
	Stops int
}

// Start implements device.Tone.
func (t *Tone) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = true
	t.Starts++
}

// Stop implements device.Tone.
func (t *Tone) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = false
	t.Stops++
}

// IsActive implements device.Tone.
func (t *Tone) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.active
}

// Finish simulates the tone file reaching its end.
func (t *Tone) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = false
}

// Suspender records the armed sources and suspend requests.
type Suspender struct {
	mu sync.Mutex

	// Sources is the last armed set.
	Sources domain.WakeSources
	// Suspends counts SuspendNow calls.
	Suspends int
}

// ArmWake implements device.Suspender.
func (s *Suspender) ArmWake(_ context.Context, sources domain.WakeSources) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sources = sources

	return nil
}

// SuspendNow implements device.Suspender.
func (s *Suspender) SuspendNow(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Suspends++

	return device.ErrSuspended
}
