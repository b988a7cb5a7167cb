package client

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bedside-alarm/internal/config"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
	"github.com/oshokin/bedside-alarm/internal/service/common"
)

// Options configures how the panel client reaches the device.
type Options struct {
	// ConfigPath to YAML settings file; read only when Address is empty.
	ConfigPath string
	// Address of the device panel server.
	Address string
	// Timeout overrides the per-call timeout when positive.
	Timeout time.Duration
}

// Action is one panel operation performed over an open client.
type Action func(ctx context.Context, client *common.Client) error

// Run connects to the device panel and performs the action.
func Run(ctx context.Context, opts *Options, action Action) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-panel")

	address, timeout := opts.Address, opts.Timeout

	if address == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		address = cfg.Panel.Address

		if timeout <= 0 {
			timeout = cfg.Panel.Timeout
		}
	}

	// Identify current user and hostname for the device log.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(timeout), common.WithActor(actor))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to device panel", "address", address)

	return action(ctx, client)
}

// Press pushes a button. A positive hold keeps it down for that long and
// releases it afterwards.
func Press(id domain.ButtonID, hold time.Duration) Action {
	return func(ctx context.Context, client *common.Client) error {
		if err := client.PressButton(ctx, id); err != nil {
			return err
		}

		if hold <= 0 {
			return nil
		}

		timer := time.NewTimer(hold)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
		}

		// Release even when interrupted so the button does not stay stuck.
		return client.ReleaseButton(context.WithoutCancel(ctx), id)
	}
}

// Release lets a button go.
func Release(id domain.ButtonID) Action {
	return func(ctx context.Context, client *common.Client) error {
		return client.ReleaseButton(ctx, id)
	}
}

// PresentToken places a token on the reader.
func PresentToken(uid string) Action {
	return func(ctx context.Context, client *common.Client) error {
		return client.PresentToken(ctx, uid)
	}
}

// RemoveToken takes the token off the reader.
func RemoveToken() Action {
	return func(ctx context.Context, client *common.Client) error {
		return client.RemoveToken(ctx)
	}
}

// PrintStatus writes the device status to w.
func PrintStatus(w io.Writer) Action {
	return func(ctx context.Context, client *common.Client) error {
		status, err := client.GetStatus(ctx)
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, FormatStatus(status))

		return err
	}
}

// FormatStatus renders the status as sorted "key: value" lines.
func FormatStatus(status *structpb.Struct) string {
	if status == nil {
		return "<nil status>\n"
	}

	fields := status.AsMap()

	var sb strings.Builder

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&sb, "%s: %v\n", key, fields[key])
	}

	return sb.String()
}
