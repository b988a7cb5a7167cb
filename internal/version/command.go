package version

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// AttachCobraVersionCommand attaches a `version` subcommand to the provided root command.
func AttachCobraVersionCommand(root *cobra.Command) {
	var (
		short  bool
		asYAML bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the build version, commit hash, build timestamp and platform. Version, commit and timestamp are injected at build time via ldflags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			switch {
			case short:
				_, err := fmt.Fprintln(out, Short())

				return err
			case asYAML:
				return yaml.NewEncoder(out).Encode(Current())
			default:
				_, err := fmt.Fprintln(out, Full())

				return err
			}
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the build metadata as YAML")

	root.AddCommand(cmd)
}
