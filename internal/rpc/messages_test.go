package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/rpc"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

func TestUserListSurvivesProtoEncoding(t *testing.T) {
	users := []store.User{
		{ID: "u1", Name: "Ana", Email: "ana@example.com", Phone: "555", Address: "1 Main St"},
		{ID: "u2", Name: "Bo", Email: "bo@example.com"},
	}

	raw, err := proto.Marshal(rpc.UsersToList(users))
	require.NoError(t, err)
	var l structpb.ListValue
	require.NoError(t, proto.Unmarshal(raw, &l))

	got, err := rpc.ListToUsers(&l)
	require.NoError(t, err)
	assert.Equal(t, users, got)
}

func TestEmptyListDecodesNonNil(t *testing.T) {
	got, err := rpc.ListToUsers(&structpb.ListValue{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateCarriesOnlySetFields(t *testing.T) {
	name := "Ana"
	id, p, err := rpc.StructToUpdate(rpc.UpdateToStruct("u1", store.Patch{Name: &name}))
	require.NoError(t, err)

	assert.Equal(t, "u1", id)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Ana", *p.Name)
	assert.Nil(t, p.Email)
	assert.Nil(t, p.Phone)
	assert.Nil(t, p.Address)
}

func TestRangeQueryRequest(t *testing.T) {
	field, lower, upper, err := rpc.StructToRangeQuery(rpc.RangeQueryToStruct(store.FieldName, "An", "An"))
	require.NoError(t, err)
	assert.Equal(t, store.FieldName, field)
	assert.Equal(t, "An", lower)
	assert.Equal(t, "An", upper)
}

func TestNonStringFieldIsDecodeError(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"id": "u1", "name": 42.0})
	require.NoError(t, err)

	_, err = rpc.StructToUser(s)
	var de *store.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "u1", de.ID)

	l := &structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue("not a record")}}
	_, err = rpc.ListToUsers(l)
	assert.ErrorAs(t, err, &de)
}
