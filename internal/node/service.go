package node

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service speaks protobuf well-known types only, so it needs no
// generated message code. The target contract of Set and Get travels in
// request metadata.
const (
	ServiceName = "simplestorage.v1.SimpleStorage"

	deployMethod = "/" + ServiceName + "/Deploy"
	setMethod    = "/" + ServiceName + "/Set"
	getMethod    = "/" + ServiceName + "/Get"

	// ContractAddressMetadataKey names the contract a Set or Get targets.
	ContractAddressMetadataKey = "x-contract-address"
	// RequestIDMetadataKey carries an optional caller-chosen request ID.
	RequestIDMetadataKey = "x-request-id"
)

// SimpleStorageServer is the server API for the SimpleStorage service.
type SimpleStorageServer interface {
	// Deploy creates a fresh contract owned by the given owner and returns
	// its hex address.
	Deploy(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// Set stores a decimal value in the contract named by metadata.
	Set(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	// Get returns the decimal value of the contract named by metadata.
	Get(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

// UnimplementedSimpleStorageServer can be embedded to reject every method
// with codes.Unimplemented.
type UnimplementedSimpleStorageServer struct{}

func (UnimplementedSimpleStorageServer) Deploy(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Deploy not implemented")
}

func (UnimplementedSimpleStorageServer) Set(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Set not implemented")
}

func (UnimplementedSimpleStorageServer) Get(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}

// RegisterSimpleStorageServer registers srv on s.
func RegisterSimpleStorageServer(s grpc.ServiceRegistrar, srv SimpleStorageServer) {
	s.RegisterService(&simpleStorageServiceDesc, srv)
}

var simpleStorageServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimpleStorageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Deploy", Handler: deployHandler},
		{MethodName: "Set", Handler: setHandler},
		{MethodName: "Get", Handler: getHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceProtoFile,
}

func deployHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimpleStorageServer).Deploy(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: deployMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimpleStorageServer).Deploy(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func setHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimpleStorageServer).Set(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: setMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimpleStorageServer).Set(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimpleStorageServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimpleStorageServer).Get(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
