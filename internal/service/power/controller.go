package power

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
	"github.com/oshokin/bedside-alarm/internal/service/machine"
	"github.com/oshokin/bedside-alarm/internal/service/scheduler"
)

// Decision is the verdict of one Evaluate call.
type Decision int

const (
	// StaySuspendNever keeps the device awake for this tick.
	StaySuspendNever Decision = iota
	// RequestSuspend asks for standby now.
	RequestSuspend
)

// String returns the decision name for logs.
func (d Decision) String() string {
	if d == RequestSuspend {
		return "suspend"
	}

	return "stay"
}

// Controller owns the standby hand-off of a wake session.
type Controller struct {
	engine    *scheduler.Engine
	suspender device.Suspender
	// holdTime is the idle timeout in Idle.
	holdTime time.Duration
}

// NewController creates a controller for one wake session.
func NewController(engine *scheduler.Engine, suspender device.Suspender, holdTime time.Duration) *Controller {
	return &Controller{
		engine:    engine,
		suspender: suspender,
		holdTime:  holdTime,
	}
}

// Evaluate returns RequestSuspend only from Idle, either right after a long
// snooze or disable, or once no button was pressed for the hold time.
// Ringing and snooze states always stay awake.
func (c *Controller) Evaluate(state domain.State, now, lastInteraction time.Time, outcome machine.Outcome) Decision {
	if state.Alarming() {
		return StaySuspendNever
	}

	if outcome == machine.SuspendLongSnooze || outcome == machine.SuspendDisabled {
		return RequestSuspend
	}

	if state == domain.Idle && now.Sub(lastInteraction) >= c.holdTime {
		return RequestSuspend
	}

	return StaySuspendNever
}

// Suspend commits the next alarm occurrence, arms the wake sources and hands
// off to the suspend primitive. A disabled alarm is not committed and only
// the buttons can wake the device.
func (c *Controller) Suspend(ctx context.Context, now time.Time) error {
	sources := domain.WakeOnTimer | domain.WakeOnButtons

	if c.engine.Disabled() {
		sources = domain.WakeOnButtons
	} else if _, err := c.engine.CommitForNextOccurrence(ctx, now); err != nil {
		return fmt.Errorf("commit alarm: %w", err)
	}

	if err := c.suspender.ArmWake(ctx, sources); err != nil {
		return fmt.Errorf("arm wake sources: %w", err)
	}

	logger.InfoKV(ctx, "Entering standby", "wake_sources", sources.String())

	return c.suspender.SuspendNow(ctx)
}
