// Package rpc defines the userdir.v1.Gateway gRPC service: the service
// descriptor, a client stub, the mapping between user records and protobuf
// well-known types, and the mapping between store errors and gRPC status
// codes.
//
// Messages are google.protobuf Empty, StringValue, Struct and ListValue,
// carried by gRPC's default proto codec.  Records travel as a Struct of
// string values keyed by document field name.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "userdir.v1.Gateway"

// Method names.
const (
	MethodAdd        = "Add"
	MethodFetchAll   = "FetchAll"
	MethodRangeQuery = "RangeQuery"
	MethodUpdateByID = "UpdateByID"
	MethodDeleteByID = "DeleteByID"
	MethodGet        = "Get"
)

// FullMethod returns the "/service/method" path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GatewayServer is the server API for the Gateway service.
type GatewayServer interface {
	// Add takes the new record's fields and returns its id.
	Add(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	FetchAll(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	// RangeQuery takes {field, lower, upper}.
	RangeQuery(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	// UpdateByID takes {id, patch}.
	UpdateByID(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteByID(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Get(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes the Gateway service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodAdd, GatewayServer.Add),
		unary(MethodFetchAll, GatewayServer.FetchAll),
		unary(MethodRangeQuery, GatewayServer.RangeQuery),
		unary(MethodUpdateByID, GatewayServer.UpdateByID),
		unary(MethodDeleteByID, GatewayServer.DeleteByID),
		unary(MethodGet, GatewayServer.Get),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "userdir/v1/gateway",
}

// RegisterGatewayServer registers srv with s.
func RegisterGatewayServer(s grpc.ServiceRegistrar, srv GatewayServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method descriptor for one request/response call,
// running interceptors the way generated code does.
func unary[Req, Resp any](method string, call func(GatewayServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GatewayServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GatewayServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
