// Package client implements store.Gateway on top of the userdir gRPC
// service, so a directory can run against a remote gateway server.
package client

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/rpc"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// gatewayRPC is the subset of *rpc.GatewayClient the client uses.
type gatewayRPC interface {
	Add(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	FetchAll(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	RangeQuery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error)
	UpdateByID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	DeleteByID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

var _ store.Gateway = (*GRPCClient)(nil)

func newGRPCClient(conn *grpc.ClientConn) *GRPCClient {
	return &GRPCClient{conn: conn, rpc: rpc.NewGatewayClient(conn)}
}

func (c *GRPCClient) Add(ctx context.Context, fields store.Fields) (string, error) {
	resp, err := c.rpc.Add(ctx, rpc.FieldsToStruct(fields))
	if err != nil {
		return "", rpc.FromStatus(store.OpAdd, "", err)
	}
	return resp.GetValue(), nil
}

func (c *GRPCClient) FetchAll(ctx context.Context) ([]store.User, error) {
	resp, err := c.rpc.FetchAll(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, rpc.FromStatus(store.OpFetchAll, "", err)
	}
	users, err := rpc.ListToUsers(resp)
	return users, store.Wrap(store.OpFetchAll, "", err)
}

func (c *GRPCClient) RangeQuery(ctx context.Context, field, lower, upper string) ([]store.User, error) {
	resp, err := c.rpc.RangeQuery(ctx, rpc.RangeQueryToStruct(field, lower, upper))
	if err != nil {
		return nil, rpc.FromStatus(store.OpRangeQuery, "", err)
	}
	users, err := rpc.ListToUsers(resp)
	return users, store.Wrap(store.OpRangeQuery, "", err)
}

func (c *GRPCClient) UpdateByID(ctx context.Context, id string, patch store.Patch) error {
	_, err := c.rpc.UpdateByID(ctx, rpc.UpdateToStruct(id, patch))
	return rpc.FromStatus(store.OpUpdate, id, err)
}

func (c *GRPCClient) DeleteByID(ctx context.Context, id string) error {
	_, err := c.rpc.DeleteByID(ctx, wrapperspb.String(id))
	return rpc.FromStatus(store.OpDelete, id, err)
}

func (c *GRPCClient) Get(ctx context.Context, id string) (store.User, error) {
	resp, err := c.rpc.Get(ctx, wrapperspb.String(id))
	if err != nil {
		return store.User{}, rpc.FromStatus(store.OpGet, id, err)
	}
	u, err := rpc.StructToUser(resp)
	if err != nil {
		return store.User{}, store.Wrap(store.OpGet, id, err)
	}
	return u, nil
}
