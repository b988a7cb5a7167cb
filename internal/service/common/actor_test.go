//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bedside-alarm/internal/api/grpc/panel"
)

// TestDetectActor ensures hostname and username are detected and non-empty.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	a, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, a.Hostname)
	require.NotEmpty(t, a.Username)
}

// TestActor_Metadata maps the actor to panel metadata keys.
func TestActor_Metadata(t *testing.T) {
	t.Parallel()

	md := (&Actor{Hostname: "bedroom", Username: "sleeper"}).Metadata()
	require.Equal(t, []string{"bedroom"}, md.Get(panel.ActorHostnameKey))
	require.Equal(t, []string{"sleeper"}, md.Get(panel.ActorUsernameKey))

	var nilActor *Actor
	require.Empty(t, nilActor.Metadata())
}
