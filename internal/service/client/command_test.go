package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// TestFormatStatus renders fields in key order.
func TestFormatStatus(t *testing.T) {
	t.Parallel()

	status, err := structpb.NewStruct(map[string]any{
		"state":            "snoozed",
		"alarm_time":       "07:00:00",
		"locked":           true,
		"escalation_count": 1,
	})
	require.NoError(t, err)

	require.Equal(t,
		"alarm_time: 07:00:00\nescalation_count: 1\nlocked: true\nstate: snoozed\n",
		FormatStatus(status),
	)
	require.Equal(t, "<nil status>\n", FormatStatus(nil))
}

// TestRun_MissingConfig fails before dialing when no address can be resolved.
func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: t.TempDir() + "/missing.yaml"}, RemoveToken())
	require.Error(t, err)
}
