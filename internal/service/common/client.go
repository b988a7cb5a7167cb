//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/bedside-alarm/internal/api/grpc/panel"
	"github.com/oshokin/bedside-alarm/internal/config"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
)

// Client wraps the gRPC PanelService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the device.
	conn *grpc.ClientConn
	// api is the PanelService client.
	api *panel.PanelClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is attached to every call as metadata.
	actor *Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor identifies the caller in the device log.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the device panel.
// Note: this uses insecure transport credentials; the panel is meant for a
// trusted local network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial panel: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         panel.NewPanelClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// PressButton pushes a button down on the device.
func (c *Client) PressButton(ctx context.Context, id domain.ButtonID) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.PressButton(callCtx, wrapperspb.Int32(int32(id))); err != nil { //nolint:gosec // IDs are 1..3.
		return fmt.Errorf("press %s: %w", id, err)
	}

	return nil
}

// ReleaseButton lets a button go on the device.
func (c *Client) ReleaseButton(ctx context.Context, id domain.ButtonID) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.ReleaseButton(callCtx, wrapperspb.Int32(int32(id))); err != nil { //nolint:gosec // IDs are 1..3.
		return fmt.Errorf("release %s: %w", id, err)
	}

	return nil
}

// PresentToken places a token on the device reader.
func (c *Client) PresentToken(ctx context.Context, uid string) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.PresentToken(callCtx, wrapperspb.String(uid)); err != nil {
		return fmt.Errorf("present token: %w", err)
	}

	return nil
}

// RemoveToken takes the token off the device reader.
func (c *Client) RemoveToken(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.RemoveToken(callCtx, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}

	return nil
}

// GetStatus reads the device status.
func (c *Client) GetStatus(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetStatus(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return response, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, if
// any, travels as outgoing metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.actor != nil {
		ctx = metadata.NewOutgoingContext(ctx, c.actor.Metadata())
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
