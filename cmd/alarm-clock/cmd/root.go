package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bedside-alarm/internal/config"
	"github.com/oshokin/bedside-alarm/internal/logger"
	"github.com/oshokin/bedside-alarm/internal/service/alarmclock"
	"github.com/oshokin/bedside-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// wakeCause overrides the wake cause of the first session.
	wakeCause string

	// rootCmd represents the base command for running the alarm clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Run the bedside alarm clock.",
		Long: `Runs the bedside alarm clock on simulated hardware.

Each wake session reads the wake cause from the clock: a timer match starts
ringing, anything else starts idle. Ringing is snoozed with any button and
dismissed only with an authorized token. The middle button during a snooze
moves the alarm four minutes later and suspends at once.

The front panel is exposed over gRPC; drive it with alarm-panel.
Use --wake to simulate the reason of the first boot (cold, timer, button).`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			err := alarmclock.Run(ctx, &alarmclock.Options{
				ConfigPath: configPath,
				WakeCause:  wakeCause,
			})
			if err != nil {
				logger.ErrorKV(ctx, "Alarm clock stopped", "error", err)
			}

			return err
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&wakeCause, "wake", "w", "", "wake cause of the first session: cold, timer or button")
}
