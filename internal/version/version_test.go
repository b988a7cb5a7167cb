package version

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return non-empty consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), Current().Platform)
}

// TestVersionCommand checks the output modes of the version subcommand.
func TestVersionCommand(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{name: "full", args: []string{"version"}, want: "version: " + Version + ", commit: "},
		{name: "short", args: []string{"version", "--short"}, want: Version + "\n"},
		{name: "yaml", args: []string{"version", "--yaml"}, want: "version: " + Version + "\ncommit: "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := &cobra.Command{Use: "alarm-test"}
			AttachCobraVersionCommand(root)

			var out bytes.Buffer

			root.SetOut(&out)
			root.SetArgs(tc.args)

			require.NoError(t, root.Execute())
			require.Contains(t, out.String(), tc.want)
		})
	}
}
