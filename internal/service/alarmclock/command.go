package alarmclock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/mitchellh/go-ps"
	"google.golang.org/grpc"

	"github.com/oshokin/bedside-alarm/internal/api/grpc/panel"
	"github.com/oshokin/bedside-alarm/internal/config"
	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/hardware/sim"
	"github.com/oshokin/bedside-alarm/internal/logger"
	"github.com/oshokin/bedside-alarm/internal/repository/counter"
	"github.com/oshokin/bedside-alarm/internal/service/power"
)

// Options controls the alarm-clock process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// WakeCause overrides the wake cause reported to the first session.
	WakeCause string
}

// ErrAlreadyRunning indicates another alarm-clock process owns the hardware.
var ErrAlreadyRunning = errors.New("another alarm-clock instance is running")

// Run boots the device and blocks until the context is canceled, a fatal
// hardware error occurs or, in exit mode, the device suspends.
//
//nolint:funlen // Boot sequence reads best in one place.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Configure(settings.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	running, err := isAnotherInstanceRunning()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if running {
		return ErrAlreadyRunning
	}

	store, err := counter.Open(ctx, settings.Counter.Kind, settings.Counter.Path)
	if err != nil {
		return fmt.Errorf("open counter store: %w", err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close counter store", "error", closeErr)
		}
	}()

	hw, err := newHardware(ctx, settings)
	if err != nil {
		return err
	}

	if opts.WakeCause != "" {
		cause, parseErr := domain.ParseWakeCause(opts.WakeCause)
		if parseErr != nil {
			return parseErr
		}

		if err = hw.rtc.SetWakeCause(cause); err != nil {
			return fmt.Errorf("set wake cause: %w", err)
		}
	}

	svc := newService(settings, hw, store)

	// Setup TCP listener for the panel server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.Panel.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.Panel.Address, err)
	}

	grpcServer := grpc.NewServer()
	panel.RegisterPanelServer(grpcServer, panel.NewServer(svc))

	logger.InfoKV(ctx, "Panel server listening",
		"listen_address", settings.Panel.Address,
		"counter_store", settings.Counter.Kind,
		"suspend_mode", settings.Suspend.Mode,
	)

	serveErr := make(chan error, 1)

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- fmt.Errorf("serve gRPC: %w", err)
		}

		close(serveErr)
	}()

	runErr := svc.run(ctx)

	logger.Info(ctx, "Shutting down panel server")
	grpcServer.GracefulStop()

	if err := <-serveErr; err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

// hardware bundles the host implementations of the collaborators.
type hardware struct {
	rtc       *sim.RTC
	panel     *sim.Panel
	tone      *sim.Tone
	verifier  *sim.AllowListVerifier
	suspender device.Suspender
}

func newHardware(ctx context.Context, settings *config.Config) (*hardware, error) {
	defaultAlarm, err := config.ParseAlarm(settings.Clock.DefaultAlarm)
	if err != nil {
		return nil, err
	}

	rtc, err := sim.NewRTC(settings.Clock.StateFile, defaultAlarm, sim.WithOffset(settings.Clock.Offset))
	if err != nil {
		return nil, fmt.Errorf("open clock: %w", err)
	}

	front := sim.NewPanel()

	hw := &hardware{
		rtc:      rtc,
		panel:    front,
		tone:     sim.NewTone(logger.FromContext(logger.WithName(ctx, "tone")), settings.Clock.ToneLength),
		verifier: sim.NewAllowListVerifier(front, settings.AuthorizedTokens),
	}

	switch settings.Suspend.Mode {
	case config.SuspendCommand:
		if hw.suspender, err = power.NewCommandSuspender(rtc, settings.Suspend.Command, settings.Suspend.TimerCommand); err != nil {
			return nil, fmt.Errorf("suspend command: %w", err)
		}
	case config.SuspendExit:
		hw.suspender = power.ExitSuspender{}
	default:
		hw.suspender = sim.NewStandby(rtc, front, settings.PollInterval)
	}

	return hw, nil
}

// isAnotherInstanceRunning looks for a process with the same executable.
func isAnotherInstanceRunning() (bool, error) {
	self, err := ps.FindProcess(os.Getpid())
	if err != nil {
		return false, err
	}

	if self == nil {
		return false, nil
	}

	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	for _, process := range processList {
		if process.Pid() == self.Pid() || process.Pid() == self.PPid() {
			continue
		}

		if process.Executable() == self.Executable() {
			return true, nil
		}
	}

	return false, nil
}
