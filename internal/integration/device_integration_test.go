package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bedside-alarm/internal/config"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/hardware/sim"
	"github.com/oshokin/bedside-alarm/internal/repository/counter"
	"github.com/oshokin/bedside-alarm/internal/service/alarmclock"
	"github.com/oshokin/bedside-alarm/internal/service/common"
	"github.com/oshokin/bedside-alarm/internal/service/machine"
)

const testToken = "7A89B280"

// device is a running alarm-clock with its files and a connected client.
type device struct {
	cfg    *config.Config
	client *common.Client
	done   chan error
}

// freeAddress reserves a free local port for the panel server.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startDevice writes a configuration, boots the runtime with the given wake
// cause and connects a panel client.
func startDevice(t *testing.T, counterKind, wake string) *device {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")

	// Keep the alarm far from the current time so adjustment is never locked.
	cfg := &config.Config{
		LogLevel:     "warn",
		PollInterval: 10 * time.Millisecond,
		Counter: config.Counter{
			Kind: counterKind,
			Path: filepath.Join(dir, "counters."+counterKind),
		},
		Clock: config.Clock{
			StateFile:    filepath.Join(dir, "rtc.yaml"),
			DefaultAlarm: time.Now().Add(12 * time.Hour).Format("15:04"),
		},
		Panel:            config.Panel{Address: freeAddress(t), Timeout: 3 * time.Second},
		Suspend:          config.Suspend{Mode: config.SuspendExit},
		AuthorizedTokens: []string{testToken},
	}
	cfg.Limits.DisableHoldTime = 300 * time.Millisecond
	cfg.Limits.ButtonHoldTime = 5 * time.Second

	require.NoError(t, config.Save(cfgPath, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)

	go func() {
		done <- alarmclock.Run(ctx, &alarmclock.Options{
			ConfigPath: cfgPath,
			WakeCause:  wake,
		})
	}()

	c, err := common.Dial(ctx, cfg.Panel.Address, common.WithCallTimeout(cfg.Panel.Timeout))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	dev := &device{cfg: cfg, client: c, done: done}
	dev.waitState(t, "")

	return dev
}

// waitState polls the status until the state matches; an empty want only
// waits for the device to answer.
func (d *device) waitState(t *testing.T, want string) *structpb.Struct {
	t.Helper()

	var last *structpb.Struct

	require.Eventually(t, func() bool {
		current, err := d.client.GetStatus(context.Background())
		if err != nil {
			return false
		}

		last = current

		return want == "" || current.GetFields()["state"].GetStringValue() == want
	}, 5*time.Second, 20*time.Millisecond)

	return last
}

// waitExit waits for the runtime to suspend in exit mode.
func (d *device) waitExit(t *testing.T) {
	t.Helper()

	select {
	case err := <-d.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("device did not suspend")
	}
}

// TestDevice_LongSnooze rings on a timer wake, snoozes, then long-snoozes
// with the middle button and suspends with the alarm four minutes later.
func TestDevice_LongSnooze(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dev := startDevice(t, "sqlite", "timer")

	dev.waitState(t, "ringing")

	require.NoError(t, dev.client.PressButton(ctx, domain.Button2))

	snoozed := dev.waitState(t, "snoozed")
	require.InDelta(t, 1, snoozed.GetFields()["snooze_occurrence"].GetNumberValue(), 0)

	// The acknowledging press must be released before it counts again.
	require.NoError(t, dev.client.ReleaseButton(ctx, domain.Button2))
	time.Sleep(400 * time.Millisecond)
	require.NoError(t, dev.client.PressButton(ctx, domain.Button2))

	dev.waitExit(t)

	store, err := counter.OpenSQLite(ctx, dev.cfg.Counter.Path)
	require.NoError(t, err)

	defer func() {
		_ = store.Close()
	}()

	count, err := store.ReadCounter(ctx, machine.EscalationCounterKey)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	defaultAlarm, err := config.ParseAlarm(dev.cfg.Clock.DefaultAlarm)
	require.NoError(t, err)

	rtc, err := sim.NewRTC(dev.cfg.Clock.StateFile, defaultAlarm)
	require.NoError(t, err)
	require.True(t, rtc.AlarmEnabled())

	register, err := rtc.AlarmRegister(ctx)
	require.NoError(t, err)

	want := defaultAlarm.Add(4 * time.Minute)
	require.Equal(t, domain.FormatTimeOfDay(want), domain.FormatTimeOfDay(register))
}

// TestDevice_TokenDismiss rings, snoozes and is dismissed by a token.
func TestDevice_TokenDismiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dev := startDevice(t, "file", "timer")

	dev.waitState(t, "ringing")

	require.NoError(t, dev.client.PressButton(ctx, domain.Button1))
	dev.waitState(t, "snoozed")

	// Unknown tokens are read but not accepted.
	require.NoError(t, dev.client.PresentToken(ctx, "DEADBEEF"))
	time.Sleep(100 * time.Millisecond)
	dev.waitState(t, "snoozed")

	require.NoError(t, dev.client.PresentToken(ctx, "7a:89:b2:80"))

	idle := dev.waitState(t, "idle")
	require.InDelta(t, 0, idle.GetFields()["escalation_count"].GetNumberValue(), 0)
}

// TestDevice_DisableByHoldingMiddle switches the alarm off and suspends with
// only the buttons armed.
func TestDevice_DisableByHoldingMiddle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dev := startDevice(t, "file", "button")

	dev.waitState(t, "idle")

	require.NoError(t, dev.client.PressButton(ctx, domain.Button2))

	dev.waitExit(t)

	defaultAlarm, err := config.ParseAlarm(dev.cfg.Clock.DefaultAlarm)
	require.NoError(t, err)

	rtc, err := sim.NewRTC(dev.cfg.Clock.StateFile, defaultAlarm)
	require.NoError(t, err)
	require.False(t, rtc.AlarmEnabled())
}

// TestDevice_PanelValidation rejects malformed panel requests.
func TestDevice_PanelValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dev := startDevice(t, "file", "")

	err := dev.client.PressButton(ctx, domain.ButtonID(7))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	err = dev.client.PresentToken(ctx, "not a uid")
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
