package rpc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/rpc"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

func TestStatusRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		is   error
	}{
		{"not found", store.Wrap(store.OpGet, "u1", store.ErrNotFound), codes.NotFound, store.ErrNotFound},
		{"unknown field", store.Wrap(store.OpRangeQuery, "", store.ErrUnknownField), codes.InvalidArgument, store.ErrUnknownField},
		{"canceled", context.Canceled, codes.Canceled, context.Canceled},
		{"internal", errors.New("boom"), codes.Internal, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := rpc.ToStatus(tt.err)
			assert.Equal(t, tt.code, status.Code(st))

			back := rpc.FromStatus(store.OpGet, "u1", st)
			assert.True(t, store.IsStoreError(back))
			if tt.is != nil {
				assert.ErrorIs(t, back, tt.is)
			}
		})
	}
}

func TestDecodeErrorMapsToDataLoss(t *testing.T) {
	err := store.Wrap(store.OpGet, "u1", &store.DecodeError{ID: "u1", Err: errors.New("bad json")})

	st := rpc.ToStatus(err)
	assert.Equal(t, codes.DataLoss, status.Code(st))

	var de *store.DecodeError
	assert.ErrorAs(t, rpc.FromStatus(store.OpGet, "u1", st), &de)
	assert.Equal(t, "u1", de.ID)
}

func TestNilPassesThrough(t *testing.T) {
	assert.NoError(t, rpc.ToStatus(nil))
	assert.NoError(t, rpc.FromStatus(store.OpAdd, "", nil))
}
