package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GatewayClient is the client stub for the Gateway service.
type GatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewGatewayClient(cc grpc.ClientConnInterface) *GatewayClient {
	return &GatewayClient{cc: cc}
}

func (c *GatewayClient) Add(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	return out, c.cc.Invoke(ctx, FullMethod(MethodAdd), in, out, opts...)
}

func (c *GatewayClient) FetchAll(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	return out, c.cc.Invoke(ctx, FullMethod(MethodFetchAll), in, out, opts...)
}

func (c *GatewayClient) RangeQuery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	return out, c.cc.Invoke(ctx, FullMethod(MethodRangeQuery), in, out, opts...)
}

func (c *GatewayClient) UpdateByID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	return out, c.cc.Invoke(ctx, FullMethod(MethodUpdateByID), in, out, opts...)
}

func (c *GatewayClient) DeleteByID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	return out, c.cc.Invoke(ctx, FullMethod(MethodDeleteByID), in, out, opts...)
}

func (c *GatewayClient) Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.cc.Invoke(ctx, FullMethod(MethodGet), in, out, opts...)
}
