// Package proto describes the sas.HostLink gRPC service. The service carries
// raw SAS frames, so it needs no message types beyond the well-known ones.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	HostLink_Poll_FullMethodName   = "/sas.HostLink/Poll"
	HostLink_Status_FullMethodName = "/sas.HostLink/Status"
)

// HostLinkClient is the client API for HostLink service.
type HostLinkClient interface {
	// Poll sends one addressed long-poll frame and returns the machine's reply.
	// An empty reply means the machine stayed silent.
	Poll(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type hostLinkClient struct {
	cc grpc.ClientConnInterface
}

func NewHostLinkClient(cc grpc.ClientConnInterface) HostLinkClient {
	return &hostLinkClient{cc}
}

func (c *hostLinkClient) Poll(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, HostLink_Poll_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hostLinkClient) Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, HostLink_Status_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HostLinkServer is the server API for HostLink service.
// All implementations must embed UnimplementedHostLinkServer
// for forward compatibility
type HostLinkServer interface {
	Poll(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedHostLinkServer()
}

// UnimplementedHostLinkServer must be embedded to have forward compatible implementations.
type UnimplementedHostLinkServer struct {
}

func (UnimplementedHostLinkServer) Poll(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Poll not implemented")
}
func (UnimplementedHostLinkServer) Status(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Status not implemented")
}
func (UnimplementedHostLinkServer) mustEmbedUnimplementedHostLinkServer() {}

func RegisterHostLinkServer(s grpc.ServiceRegistrar, srv HostLinkServer) {
	s.RegisterService(&HostLink_ServiceDesc, srv)
}

func _HostLink_Poll_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HostLinkServer).Poll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HostLink_Poll_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HostLinkServer).Poll(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _HostLink_Status_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HostLinkServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HostLink_Status_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HostLinkServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// HostLink_ServiceDesc is the grpc.ServiceDesc for HostLink service.
var HostLink_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sas.HostLink",
	HandlerType: (*HostLinkServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Poll",
			Handler:    _HostLink_Poll_Handler,
		},
		{
			MethodName: "Status",
			Handler:    _HostLink_Status_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hostlink.proto",
}
