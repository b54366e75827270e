// Package storetest holds the behavioural contract every store.Gateway
// implementation must satisfy.  Gateway packages call Run from their own
// tests with a constructor for a fresh, empty gateway.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// Factory returns an empty gateway.  Cleanup is registered on t.
type Factory func(t *testing.T) store.Gateway

// Run exercises the full gateway contract against gateways built by newGateway.
func Run(t *testing.T, newGateway Factory) {
	t.Run("AddGet", func(t *testing.T) { testAddGet(t, newGateway(t)) })
	t.Run("FetchAll", func(t *testing.T) { testFetchAll(t, newGateway(t)) })
	t.Run("PrefixRange", func(t *testing.T) { testPrefixRange(t, newGateway(t)) })
	t.Run("RangeOtherField", func(t *testing.T) { testRangeOtherField(t, newGateway(t)) })
	t.Run("RangeEmptyName", func(t *testing.T) { testRangeEmptyName(t, newGateway(t)) })
	t.Run("RangeUnknownField", func(t *testing.T) { testRangeUnknownField(t, newGateway(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newGateway(t)) })
	t.Run("UpdateMovesRange", func(t *testing.T) { testUpdateMovesRange(t, newGateway(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newGateway(t)) })
	t.Run("Missing", func(t *testing.T) { testMissing(t, newGateway(t)) })
}

func seed(t *testing.T, gw store.Gateway, names ...string) map[string]string {
	t.Helper()
	ids := make(map[string]string, len(names))
	for _, n := range names {
		id, err := gw.Add(context.Background(), store.Fields{Name: n, Email: n + "@example.com"})
		require.NoError(t, err, "Add(%q)", n)
		ids[n] = id
	}
	return ids
}

func names(users []store.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Name
	}
	return out
}

func testAddGet(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	in := store.Fields{Name: "Ana", Email: "a@x.com", Phone: "555-0100", Address: "1 Main St"}
	id, err := gw.Add(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, id, "store must assign an identifier")

	got, err := gw.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in.WithID(id), got)

	other, err := gw.Add(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, id, other, "identifiers must be unique")
}

func testFetchAll(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	empty, err := gw.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	ids := seed(t, gw, "Ana", "Beto", "Carla")
	all, err := gw.FetchAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Ana", "Beto", "Carla"}, names(all))
	for _, u := range all {
		assert.Equal(t, ids[u.Name], u.ID)
		assert.Equal(t, u.Name+"@example.com", u.Email)
	}
}

func testPrefixRange(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	seed(t, gw, "An", "Ana", "Anabel", "Andrés", "ana", "Beto", "Am")

	lower, upper := store.PrefixBounds("An")
	got, err := gw.RangeQuery(ctx, store.FieldName, lower, upper)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"An", "Ana", "Anabel", "Andrés"}, names(got),
		"prefix range is case-sensitive and excludes neighbours")

	lower, upper = store.PrefixBounds("Zed")
	none, err := gw.RangeQuery(ctx, store.FieldName, lower, upper)
	require.NoError(t, err)
	assert.Empty(t, none)

	exact, err := gw.RangeQuery(ctx, store.FieldName, "Ana", "Ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names(exact), "bounds are inclusive")
}

func testRangeOtherField(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	seed(t, gw, "Ana", "Beto")
	lower, upper := store.PrefixBounds("b")
	got, err := gw.RangeQuery(ctx, store.FieldEmail, lower, upper)
	require.NoError(t, err)
	assert.Empty(t, got, "email Beto@example.com starts with upper-case B")

	lower, upper = store.PrefixBounds("Beto@")
	got, err = gw.RangeQuery(ctx, store.FieldEmail, lower, upper)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beto"}, names(got))
}

func testRangeEmptyName(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	_, err := gw.Add(ctx, store.Fields{Email: "nameless@example.com"})
	require.NoError(t, err)
	seed(t, gw, "Ana")

	got, err := gw.RangeQuery(ctx, store.FieldName, "", "B")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"", "Ana"}, names(got))

	got, err = gw.RangeQuery(ctx, store.FieldName, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names(got))
}

func testRangeUnknownField(t *testing.T, gw store.Gateway) {
	_, err := gw.RangeQuery(context.Background(), "age", "1", "9")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnknownField)
	assert.True(t, store.IsStoreError(err))
}

func testUpdate(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	id, err := gw.Add(ctx, store.Fields{Name: "Ana", Email: "a@x.com", Phone: "1"})
	require.NoError(t, err)

	phone := "2"
	require.NoError(t, gw.UpdateByID(ctx, id, store.Patch{Phone: &phone}))
	got, err := gw.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.User{ID: id, Name: "Ana", Email: "a@x.com", Phone: "2"}, got,
		"nil patch fields are left untouched")

	full := store.Fields{Name: "Ana María", Email: "am@x.com", Phone: "3", Address: "Calle 1"}
	require.NoError(t, gw.UpdateByID(ctx, id, store.FullPatch(full)))
	got, err = gw.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, full.WithID(id), got, "identifier is unchanged by updates")
}

func testUpdateMovesRange(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	ids := seed(t, gw, "Ana", "Beto")
	name := "Bea"
	require.NoError(t, gw.UpdateByID(ctx, ids["Ana"], store.Patch{Name: &name}))

	lower, upper := store.PrefixBounds("A")
	got, err := gw.RangeQuery(ctx, store.FieldName, lower, upper)
	require.NoError(t, err)
	assert.Empty(t, got)

	lower, upper = store.PrefixBounds("Be")
	got, err = gw.RangeQuery(ctx, store.FieldName, lower, upper)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bea", "Beto"}, names(got))
}

func testDelete(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	ids := seed(t, gw, "Ana", "Beto")
	require.NoError(t, gw.DeleteByID(ctx, ids["Beto"]))

	all, err := gw.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names(all))

	lower, upper := store.PrefixBounds("B")
	got, err := gw.RangeQuery(ctx, store.FieldName, lower, upper)
	require.NoError(t, err)
	assert.Empty(t, got, "deleted documents leave the name range")

	_, err = gw.Get(ctx, ids["Beto"])
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testMissing(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	const id = "does-not-exist"
	name := "x"

	_, err := gw.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, store.IsStoreError(err))

	err = gw.UpdateByID(ctx, id, store.Patch{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = gw.DeleteByID(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
