package panel

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "bedsidealarm.panel.v1.PanelService"

	// ActorHostnameKey is the metadata key carrying the caller's hostname.
	ActorHostnameKey = "x-actor-hostname"
	// ActorUsernameKey is the metadata key carrying the caller's username.
	ActorUsernameKey = "x-actor-username"

	pressButtonMethod   = "/" + ServiceName + "/PressButton"
	releaseButtonMethod = "/" + ServiceName + "/ReleaseButton"
	presentTokenMethod  = "/" + ServiceName + "/PresentToken"
	removeTokenMethod   = "/" + ServiceName + "/RemoveToken"
	getStatusMethod     = "/" + ServiceName + "/GetStatus"
)

// PanelServer is the server API of the panel service.
//
//nolint:revive // Mirrors the naming of generated gRPC server interfaces.
type PanelServer interface {
	PressButton(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error)
	ReleaseButton(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error)
	PresentToken(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	RemoveToken(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterPanelServer registers srv on the gRPC server.
func RegisterPanelServer(registrar grpc.ServiceRegistrar, srv PanelServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // A service descriptor is static by nature.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PanelServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PressButton",
			Handler: unaryHandler(pressButtonMethod, func(ctx context.Context, srv PanelServer, req *wrapperspb.Int32Value) (any, error) {
				return srv.PressButton(ctx, req)
			}),
		},
		{
			MethodName: "ReleaseButton",
			Handler: unaryHandler(releaseButtonMethod, func(ctx context.Context, srv PanelServer, req *wrapperspb.Int32Value) (any, error) {
				return srv.ReleaseButton(ctx, req)
			}),
		},
		{
			MethodName: "PresentToken",
			Handler: unaryHandler(presentTokenMethod, func(ctx context.Context, srv PanelServer, req *wrapperspb.StringValue) (any, error) {
				return srv.PresentToken(ctx, req)
			}),
		},
		{
			MethodName: "RemoveToken",
			Handler: unaryHandler(removeTokenMethod, func(ctx context.Context, srv PanelServer, req *emptypb.Empty) (any, error) {
				return srv.RemoveToken(ctx, req)
			}),
		},
		{
			MethodName: "GetStatus",
			Handler: unaryHandler(getStatusMethod, func(ctx context.Context, srv PanelServer, req *emptypb.Empty) (any, error) {
				return srv.GetStatus(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bedsidealarm/panel/v1/panel.proto",
}

// unaryHandler adapts a typed call into a grpc.MethodHandler, running the
// server interceptor when one is installed.
func unaryHandler[Req any, PReq interface {
	*Req
}](
	fullMethod string,
	call func(ctx context.Context, srv PanelServer, req PReq) (any, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := PReq(new(Req))
		if err := dec(req); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(ctx, srv.(PanelServer), req) //nolint:forcetypeassert // Guaranteed by HandlerType.
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(ctx, srv.(PanelServer), req.(PReq)) //nolint:forcetypeassert // Guaranteed by HandlerType.
		}

		return interceptor(ctx, req, info, handler)
	}
}

// PanelClient is the client API of the panel service.
//
//nolint:revive // Mirrors the naming of generated gRPC client types.
type PanelClient struct {
	cc grpc.ClientConnInterface
}

// NewPanelClient creates a client over an established connection.
func NewPanelClient(cc grpc.ClientConnInterface) *PanelClient {
	return &PanelClient{cc: cc}
}

// PressButton pushes a button down on the remote panel.
func (c *PanelClient) PressButton(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, pressButtonMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ReleaseButton lets a button go on the remote panel.
func (c *PanelClient) ReleaseButton(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, releaseButtonMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// PresentToken places a token on the remote reader.
func (c *PanelClient) PresentToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, presentTokenMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// RemoveToken takes the token off the remote reader.
func (c *PanelClient) RemoveToken(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, removeTokenMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GetStatus reads the device status.
func (c *PanelClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getStatusMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
