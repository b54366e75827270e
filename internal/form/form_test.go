package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/form"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store/storetest"
)

func quiet() form.Option { return form.WithLogger(logger.Discard()) }

func TestCreateRejectsMissingName(t *testing.T) {
	gw := storetest.NewFake()
	done := 0
	f := form.NewCreate(gw, func(context.Context) { done++ }, quiet())
	draft := store.Fields{Name: "", Email: "x@y.com"}
	f.SetDraft(draft)

	err := f.Submit(context.Background())

	var ve *form.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, form.MsgRequired, ve.Message)
	assert.Equal(t, form.MsgRequired, f.Message())
	assert.Equal(t, draft, f.Draft(), "draft is unchanged")
	assert.Zero(t, gw.Calls(store.OpAdd), "no store call is made")
	assert.Zero(t, done)
}

func TestCreateRejectsWhitespaceEmail(t *testing.T) {
	gw := storetest.NewFake()
	f := form.NewCreate(gw, nil, quiet())
	f.SetDraft(store.Fields{Name: "Ana", Email: "   "})

	var ve *form.ValidationError
	require.ErrorAs(t, f.Submit(context.Background()), &ve)
	assert.Zero(t, gw.Calls(store.OpAdd))
}

func TestCreateSuccessResetsDraft(t *testing.T) {
	gw := storetest.NewFake()
	done := 0
	f := form.NewCreate(gw, func(context.Context) { done++ }, quiet())
	require.NoError(t, f.Set(store.FieldName, "Ana"))
	require.NoError(t, f.Set(store.FieldEmail, "a@x.com"))
	require.NoError(t, f.Set(store.FieldPhone, "555"))

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, 1, gw.Calls(store.OpAdd))
	assert.Equal(t, 1, done)
	assert.Equal(t, store.Fields{}, f.Draft())
	assert.Empty(t, f.Message())

	all, err := gw.Inner().FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ana", all[0].Name)
	assert.Equal(t, "555", all[0].Phone)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, all[0].ID, f.Created())
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	gw := storetest.NewFake()
	gw.Fail(store.OpAdd, nil)
	done := 0
	f := form.NewCreate(gw, func(context.Context) { done++ }, quiet())
	draft := store.Fields{Name: "Ana", Email: "a@x.com"}
	f.SetDraft(draft)

	err := f.Submit(context.Background())

	require.Error(t, err)
	assert.True(t, store.IsStoreError(err))
	assert.ErrorIs(t, err, storetest.ErrInjected)
	assert.Equal(t, form.MsgCreateFailed, f.Message())
	assert.Equal(t, draft, f.Draft())
	assert.False(t, f.Submitting())
	assert.Zero(t, done)

	gw.Heal(store.OpAdd)
	require.NoError(t, f.Submit(context.Background()), "retry succeeds with the kept draft")
	assert.Equal(t, 1, done)
	assert.Empty(t, f.Message())
}

func TestEditLoadsAndUpdates(t *testing.T) {
	gw := storetest.NewFake()
	seeded := gw.Seed(store.Fields{Name: "Ana", Email: "a@x.com", Address: "Calle 1"})
	id := seeded[0].ID
	done := 0

	f := form.NewEdit(context.Background(), gw, id, func(context.Context) { done++ }, quiet())
	assert.Equal(t, form.ModeEdit, f.Mode())
	assert.Equal(t, id, f.ID())
	assert.Equal(t, seeded[0].Fields(), f.Draft())
	assert.Empty(t, f.Message())

	require.NoError(t, f.Set(store.FieldPhone, "555-0101"))
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, 1, gw.Calls(store.OpUpdate))
	assert.Equal(t, 1, done)
	got, err := gw.Inner().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, store.User{ID: id, Name: "Ana", Email: "a@x.com", Phone: "555-0101", Address: "Calle 1"}, got)
	assert.Equal(t, "555-0101", f.Draft().Phone, "edit draft is not reset")
}

func TestEditLoadFailureLeavesDefaults(t *testing.T) {
	gw := storetest.NewFake()
	gw.Fail(store.OpGet, nil)

	f := form.NewEdit(context.Background(), gw, "some-id", nil, quiet())

	assert.Equal(t, store.Fields{}, f.Draft())
	assert.Equal(t, form.MsgLoadFailed, f.Message())
	assert.Equal(t, 1, gw.Calls(store.OpGet), "the record is loaded once")
}

func TestEditUpdateFailure(t *testing.T) {
	gw := storetest.NewFake()
	f := form.NewEdit(context.Background(), gw, "missing", nil, quiet())
	f.SetDraft(store.Fields{Name: "Ana", Email: "a@x.com"})

	err := f.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, form.MsgUpdateFailed, f.Message())
}

func TestSubmitGuardsDuplicateSubmission(t *testing.T) {
	gw := storetest.NewFake()
	release := gw.Hold(store.OpAdd)
	f := form.NewCreate(gw, nil, quiet())
	f.SetDraft(store.Fields{Name: "Ana", Email: "a@x.com"})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = f.Submit(context.Background())
	}()
	require.Eventually(t, f.Submitting, time.Second, time.Millisecond)

	err := f.Submit(context.Background())
	assert.True(t, errors.Is(err, form.ErrSubmitInFlight))

	release()
	wg.Wait()
	require.NoError(t, firstErr)
	assert.False(t, f.Submitting())
	assert.Equal(t, 1, gw.Calls(store.OpAdd))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "create", form.ModeCreate.String())
	assert.Equal(t, "edit", form.ModeEdit.String())
}
