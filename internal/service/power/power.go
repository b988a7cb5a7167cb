package power

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
)

// wakeSourcesEnv passes the armed sources to the suspend command.
const wakeSourcesEnv = "ALARM_WAKE_SOURCES"

// wakeAtEnv passes the timer wake instant, in Unix seconds, to the suspend command.
const wakeAtEnv = "ALARM_WAKE_AT"

// WakeAtPlaceholder is replaced in command arguments by the timer wake instant in Unix seconds.
const WakeAtPlaceholder = "{wake_unix}"

// timerWakeWindow is how long after the register time a resume still counts as a timer wake.
const timerWakeWindow = 60

// ErrUnsupportedOS indicates there is no default suspend command for this OS.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// WakeRecorder stores the resume reason for the next session.
type WakeRecorder interface {
	SetWakeCause(cause domain.WakeCause) error
}

// DefaultSuspendCommand returns the built-in suspend command of the OS:
// - Linux:   `systemctl suspend`
// - macOS:   `pmset sleepnow`
// - Windows: `rundll32.exe powrprof.dll,SetSuspendState 0,1,0`.
//
// None of them programs a hardware wake, and `systemctl suspend` returns as
// soon as the job is queued. Use DefaultTimerSuspendCommand when the alarm
// timer must resume the host.
func DefaultSuspendCommand() ([]string, error) {
	osName := strings.ToLower(runtime.GOOS)

	switch {
	case strings.Contains(osName, "linux"):
		return []string{"systemctl", "suspend"}, nil
	case strings.Contains(osName, "darwin"):
		return []string{"pmset", "sleepnow"}, nil
	case strings.Contains(osName, "windows"):
		return []string{"rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"}, nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}

// DefaultTimerSuspendCommand returns the command used when the timer is armed.
// On Linux it is `rtcwake -m mem -t {wake_unix}`, which programs the RTC
// and blocks until resume. Other systems fall back to DefaultSuspendCommand.
func DefaultTimerSuspendCommand() ([]string, error) {
	if strings.Contains(strings.ToLower(runtime.GOOS), "linux") {
		return []string{"rtcwake", "-m", "mem", "-t", WakeAtPlaceholder}, nil
	}

	return DefaultSuspendCommand()
}

// CommandSuspender suspends the host by running an OS command.
// Wake sources are handed to the command through ALARM_WAKE_SOURCES; when
// the timer is armed, the wake instant is passed through ALARM_WAKE_AT and
// substituted for {wake_unix} in the arguments.
//
// The suspend is only as good as the command: it must block until resume
// and program the RTC wake itself, or the timer will not wake the host.
// After the command returns, the resume reason is inferred from the clock
// and recorded when the clock implements WakeRecorder.
type CommandSuspender struct {
	clock        device.Clock
	command      []string
	timerCommand []string

	mu      sync.Mutex
	sources domain.WakeSources
}

// NewCommandSuspender uses command for button-only standby and timerCommand
// when the timer is armed, each falling back to the OS default when empty.
func NewCommandSuspender(clock device.Clock, command, timerCommand []string) (*CommandSuspender, error) {
	var err error

	if len(command) == 0 {
		if command, err = DefaultSuspendCommand(); err != nil {
			return nil, err
		}
	}

	if len(timerCommand) == 0 {
		if timerCommand, err = DefaultTimerSuspendCommand(); err != nil {
			return nil, err
		}
	}

	return &CommandSuspender{
		clock:        clock,
		command:      command,
		timerCommand: timerCommand,
	}, nil
}

// ArmWake implements device.Suspender.
func (s *CommandSuspender) ArmWake(_ context.Context, sources domain.WakeSources) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = sources

	return nil
}

// SuspendNow runs the suspend command and waits for it to return, then
// records the inferred wake cause.
func (s *CommandSuspender) SuspendNow(ctx context.Context) error {
	s.mu.Lock()
	sources := s.sources
	s.mu.Unlock()

	command := s.command
	env := append(os.Environ(), wakeSourcesEnv+"="+sources.String())

	if sources.Has(domain.WakeOnTimer) {
		wakeAt, err := s.wakeAt(ctx)
		if err != nil {
			return err
		}

		command = expandWakeAt(s.timerCommand, wakeAt)
		env = append(env, wakeAtEnv+"="+strconv.FormatInt(wakeAt.Unix(), 10))
	}

	//nolint:gosec // The command comes from the operator's configuration.
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Env = env

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("run %q: %w: %s", strings.Join(command, " "), err, strings.TrimSpace(string(output)))
	}

	if err := s.recordWake(ctx, sources); err != nil {
		return err
	}

	return device.ErrSuspended
}

// wakeAt returns the next instant the alarm register matches.
func (s *CommandSuspender) wakeAt(ctx context.Context) (time.Time, error) {
	now, err := s.clock.Now(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("read clock: %w", err)
	}

	register, err := s.clock.AlarmRegister(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("read alarm register: %w", err)
	}

	return nextMatch(now, register), nil
}

func (s *CommandSuspender) recordWake(ctx context.Context, sources domain.WakeSources) error {
	recorder, ok := s.clock.(WakeRecorder)
	if !ok {
		return nil
	}

	cause := domain.WakeManualButton

	if sources.Has(domain.WakeOnTimer) {
		now, err := s.clock.Now(ctx)
		if err != nil {
			return fmt.Errorf("read clock: %w", err)
		}

		register, err := s.clock.AlarmRegister(ctx)
		if err != nil {
			return fmt.Errorf("read alarm register: %w", err)
		}

		cause = inferWakeCause(now, register)
	}

	logger.InfoKV(ctx, "Host resumed", "wake_cause", cause.String())

	if err := recorder.SetWakeCause(cause); err != nil {
		return fmt.Errorf("record wake cause: %w", err)
	}

	return nil
}

// nextMatch returns the first instant strictly after now whose time of day
// equals the register's.
func nextMatch(now, register time.Time) time.Time {
	delta := domain.SecondsOfDay(register) - domain.SecondsOfDay(now)
	if delta <= 0 {
		delta += domain.SecondsPerDay
	}

	return now.Truncate(time.Second).Add(time.Duration(delta) * time.Second)
}

// inferWakeCause treats a resume shortly after the register time as a timer
// wake and anything else as a button press.
func inferWakeCause(now, register time.Time) domain.WakeCause {
	since := domain.SecondsOfDay(now) - domain.SecondsOfDay(register)
	if since < 0 {
		since += domain.SecondsPerDay
	}

	if since < timerWakeWindow {
		return domain.WakeTimerMatch
	}

	return domain.WakeManualButton
}

func expandWakeAt(command []string, wakeAt time.Time) []string {
	unix := strconv.FormatInt(wakeAt.Unix(), 10)
	expanded := make([]string, len(command))

	for i, arg := range command {
		expanded[i] = strings.ReplaceAll(arg, WakeAtPlaceholder, unix)
	}

	return expanded
}

// ExitSuspender ends the process instead of suspending; a supervisor
// restarts it as a cold boot.
type ExitSuspender struct{}

// ArmWake implements device.Suspender.
func (ExitSuspender) ArmWake(ctx context.Context, sources domain.WakeSources) error {
	logger.DebugKV(ctx, "Wake sources recorded", "wake_sources", sources.String())

	return nil
}

// SuspendNow implements device.Suspender.
func (ExitSuspender) SuspendNow(context.Context) error {
	return device.ErrSuspended
}
