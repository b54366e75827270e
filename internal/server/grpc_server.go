package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/rpc"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// gatewayService implements rpc.GatewayServer by delegating every call to
// a store.Gateway.  It contains no storage logic of its own.
type gatewayService struct {
	gw store.Gateway
}

// NewGatewayService constructs the gRPC service implementation backed by
// gw.
func NewGatewayService(gw store.Gateway) rpc.GatewayServer {
	return &gatewayService{gw: gw}
}

func (s *gatewayService) Add(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields, err := rpc.StructToFields(req)
	if err != nil {
		return nil, badRequest(err)
	}
	id, err := s.gw.Add(ctx, fields)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return wrapperspb.String(id), nil
}

func (s *gatewayService) FetchAll(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	users, err := s.gw.FetchAll(ctx)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.UsersToList(users), nil
}

// RangeQuery rejects unknown fields before reaching the store.
func (s *gatewayService) RangeQuery(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	field, lower, upper, err := rpc.StructToRangeQuery(req)
	if err != nil {
		return nil, badRequest(err)
	}
	if !store.ValidField(field) {
		return nil, rpc.ToStatus(store.ErrUnknownField)
	}
	users, err := s.gw.RangeQuery(ctx, field, lower, upper)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.UsersToList(users), nil
}

func (s *gatewayService) UpdateByID(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, patch, err := rpc.StructToUpdate(req)
	if err != nil {
		return nil, badRequest(err)
	}
	if err := s.gw.UpdateByID(ctx, id, patch); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *gatewayService) DeleteByID(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.gw.DeleteByID(ctx, req.GetValue()); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *gatewayService) Get(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	u, err := s.gw.Get(ctx, req.GetValue())
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.UserToStruct(u), nil
}

func badRequest(err error) error {
	return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
}

// logCalls logs one line per unary call: method, status code, duration.
// Failures are logged at WARN, everything else at DEBUG.
func logCalls(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("%s %s %s: %v", info.FullMethod, status.Code(err), time.Since(start), status.Convert(err).Message())
		} else {
			log.Debug("%s OK %s", info.FullMethod, time.Since(start))
		}
		return resp, err
	}
}
