package panel

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
	"github.com/oshokin/bedside-alarm/internal/logger"
)

// Service abstracts the device operations the transport layer depends on.
type Service interface {
	PressButton(ctx context.Context, id domain.ButtonID)
	ReleaseButton(ctx context.Context, id domain.ButtonID)
	PresentToken(ctx context.Context, uid string) error
	RemoveToken(ctx context.Context)
	// Status returns nil until the first wake session published one.
	Status(ctx context.Context) *domain.Status
}

// Server implements the PanelService gRPC API.
type Server struct {
	// service provides the device operations.
	service Service
}

var _ PanelServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// PressButton pushes a button down.
func (s *Server) PressButton(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	id, err := buttonFromRequest(req)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(withActor(ctx), "Button pressed remotely", "button", id.String())
	s.service.PressButton(ctx, id)

	return new(emptypb.Empty), nil
}

// ReleaseButton lets a button go.
func (s *Server) ReleaseButton(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	id, err := buttonFromRequest(req)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(withActor(ctx), "Button released remotely", "button", id.String())
	s.service.ReleaseButton(ctx, id)

	return new(emptypb.Empty), nil
}

// PresentToken places a token on the reader.
func (s *Server) PresentToken(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req == nil || req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token UID is required")
	}

	if err := s.service.PresentToken(ctx, req.GetValue()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logger.InfoKV(withActor(ctx), "Token presented remotely")

	return new(emptypb.Empty), nil
}

// RemoveToken takes the token off the reader.
func (s *Server) RemoveToken(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.RemoveToken(ctx)

	logger.InfoKV(withActor(ctx), "Token removed remotely")

	return new(emptypb.Empty), nil
}

// GetStatus returns the device status.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	current := s.service.Status(ctx)
	if current == nil {
		return nil, status.Error(codes.Unavailable, "device is booting")
	}

	response, err := ToProtoStatus(current)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return response, nil
}

// ToProtoStatus converts a domain.Status into its wire form.
func ToProtoStatus(current *domain.Status) (*structpb.Struct, error) {
	fields := map[string]any{
		"state":            current.State.String(),
		"now":              current.Now.Format(time.RFC3339),
		"alarm_time":       domain.FormatTimeOfDay(current.AlarmTime),
		"locked":           current.Locked,
		"escalation_count": current.EscalationCount,
	}

	if session := current.Session; session != nil {
		fields["snooze_occurrence"] = session.Occurrence
		fields["snooze_deadline"] = session.Deadline().Format(time.RFC3339)
		fields["snooze_remaining_seconds"] = session.Remaining(current.Now).Seconds()
	}

	return structpb.NewStruct(fields)
}

// buttonFromRequest validates the button identifier of a request.
func buttonFromRequest(req *wrapperspb.Int32Value) (domain.ButtonID, error) {
	if req == nil {
		return 0, status.Error(codes.InvalidArgument, "button is required")
	}

	id, err := domain.ParseButton(int(req.GetValue()))
	if err != nil {
		return 0, status.Error(codes.InvalidArgument, err.Error())
	}

	return id, nil
}

// withActor adds the caller identity from request metadata to the logger.
func withActor(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	hosts := md.Get(ActorHostnameKey)
	users := md.Get(ActorUsernameKey)

	if len(hosts) == 0 || len(users) == 0 {
		return ctx
	}

	return logger.WithFields(ctx, "actor_user", users[0], "actor_host", hosts[0])
}
