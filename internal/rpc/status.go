package rpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// ToStatus converts a gateway error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	var de *store.DecodeError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, store.ErrUnknownField):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &de):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// FromStatus converts an error returned by a Gateway call back into a
// *store.StoreError, restoring the sentinels ToStatus encoded.
func FromStatus(op, id string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return store.Wrap(op, id, err)
	}
	switch st.Code() {
	case codes.NotFound:
		err = fmt.Errorf("%w: %s", store.ErrNotFound, st.Message())
	case codes.InvalidArgument:
		err = fmt.Errorf("%w: %s", store.ErrUnknownField, st.Message())
	case codes.DataLoss:
		err = &store.DecodeError{ID: id, Err: errors.New(st.Message())}
	case codes.Canceled:
		err = fmt.Errorf("%w: %s", context.Canceled, st.Message())
	case codes.DeadlineExceeded:
		err = fmt.Errorf("%w: %s", context.DeadlineExceeded, st.Message())
	}
	return store.Wrap(op, id, err)
}
