//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"google.golang.org/grpc/metadata"

	"github.com/oshokin/bedside-alarm/internal/api/grpc/panel"
)

// Actor identifies who drives the remote panel.
type Actor struct {
	// Hostname is the machine the panel command runs on.
	Hostname string
	// Username is the account running the panel command.
	Username string
}

// DetectActor gathers host and user information for the device log.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// Metadata returns the actor as outgoing gRPC metadata.
func (a *Actor) Metadata() metadata.MD {
	if a == nil {
		return metadata.MD{}
	}

	return metadata.Pairs(
		panel.ActorHostnameKey, a.Hostname,
		panel.ActorUsernameKey, a.Username,
	)
}
