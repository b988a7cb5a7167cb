package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/bedside-alarm/internal/config"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/service/client"
	"github.com/oshokin/bedside-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// address overrides the panel address from the configuration.
	address string
	// timeout overrides the call timeout from the configuration.
	timeout time.Duration
	// hold keeps a pressed button down for this long.
	hold time.Duration
	// remove takes the token off the reader instead of presenting one.
	remove bool

	// rootCmd represents the base command of the remote panel.
	rootCmd = &cobra.Command{
		Use:   "alarm-panel",
		Short: "Drive the front panel of a running alarm clock.",
		Long: `Presses buttons, presents tokens and reads the status of a running alarm-clock
over its panel gRPC API.

Buttons are numbered 1 (minus), 2 (middle) and 3 (plus).`,
	}

	pressCmd = &cobra.Command{
		Use:   "press <1|2|3>",
		Short: "Press a button.",
		Long: `Pushes a button down. Without --hold the button stays down until released
with "alarm-panel release"; with --hold it is released after the given time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseButton(args[0])
			if err != nil {
				return err
			}

			return run(client.Press(id, hold))
		},
	}

	releaseCmd = &cobra.Command{
		Use:   "release <1|2|3>",
		Short: "Release a button.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseButton(args[0])
			if err != nil {
				return err
			}

			return run(client.Release(id))
		},
	}

	tokenCmd = &cobra.Command{
		Use:   "token [uid]",
		Short: "Present a token to the reader, or remove it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if remove {
				return run(client.RemoveToken())
			}

			if len(args) == 0 {
				return errTokenRequired
			}

			return run(client.PresentToken(args[0]))
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the device status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(client.PrintStatus(cmd.OutOrStdout()))
		},
	}
)

// errTokenRequired is returned when neither a UID nor --remove was given.
var errTokenRequired = errors.New("token UID is required unless --remove is set")

// Execute runs the alarm-panel CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(action client.Action) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return client.Run(ctx, &client.Options{
		ConfigPath: cfgPath,
		Address:    address,
		Timeout:    timeout,
	}, action)
}

func parseButton(arg string) (domain.ButtonID, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("button %q: %w", arg, err)
	}

	return domain.ParseButton(n)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&address, "address", "a", "", "panel address, overrides the configuration")
	rootCmd.PersistentFlags().
		DurationVarP(&timeout, "timeout", "t", 0, "call timeout, overrides the configuration")

	pressCmd.Flags().DurationVar(&hold, "hold", 0, "release the button after this long")
	tokenCmd.Flags().BoolVar(&remove, "remove", false, "take the token off the reader")

	rootCmd.AddCommand(pressCmd, releaseCmd, tokenCmd, statusCmd)
}
