package storetest

import (
	"context"
	"errors"
	"sync"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// ErrInjected is the failure returned by Fake operations armed with Fail.
var ErrInjected = errors.New("injected failure")

// Fake is a gateway for directory and form tests.  It delegates to an
// in-memory store, counts calls per operation, can be armed to fail an
// operation, and can hold an operation until the test releases it.
type Fake struct {
	inner *store.MemoryStore

	mu     sync.Mutex
	calls  map[string]int
	fail   map[string]error
	hold   map[string]chan struct{}
	closed bool
}

// NewFake returns an empty fake gateway.
func NewFake() *Fake {
	return &Fake{
		inner: store.NewInMemoryStore(),
		calls: make(map[string]int),
		fail:  make(map[string]error),
		hold:  make(map[string]chan struct{}),
	}
}

// Seed adds records and returns them with their assigned ids, in order.
func (f *Fake) Seed(fields ...store.Fields) []store.User {
	out := make([]store.User, 0, len(fields))
	for _, fl := range fields {
		id, err := f.inner.Add(context.Background(), fl)
		if err != nil {
			panic(err)
		}
		out = append(out, fl.WithID(id))
	}
	return out
}

// Inner exposes the backing store so tests can mutate it behind the
// gateway's back.
func (f *Fake) Inner() *store.MemoryStore { return f.inner }

// Fail makes every later call to op fail with err until Heal is called.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	f.fail[op] = err
}

// Heal clears an armed failure.
func (f *Fake) Heal(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.fail, op)
}

// Hold makes the next call to op block, after performing its work, until
// the returned release function is called.  Results are computed before
// blocking so a held read observes the store as of its issue time.
func (f *Fake) Hold(op string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.hold[op] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close marks the fake closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *Fake) enter(op string) (chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	ch := f.hold[op]
	delete(f.hold, op)
	if err, ok := f.fail[op]; ok {
		return ch, &store.StoreError{Op: op, Err: err}
	}
	return ch, nil
}

func wait(ctx context.Context, ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case <-ch:
	case <-ctx.Done():
	}
}

func (f *Fake) Add(ctx context.Context, fields store.Fields) (string, error) {
	ch, err := f.enter(store.OpAdd)
	if err != nil {
		wait(ctx, ch)
		return "", err
	}
	id, err := f.inner.Add(ctx, fields)
	wait(ctx, ch)
	return id, err
}

func (f *Fake) FetchAll(ctx context.Context) ([]store.User, error) {
	ch, err := f.enter(store.OpFetchAll)
	if err != nil {
		wait(ctx, ch)
		return nil, err
	}
	users, err := f.inner.FetchAll(ctx)
	wait(ctx, ch)
	return users, err
}

func (f *Fake) RangeQuery(ctx context.Context, field, lower, upper string) ([]store.User, error) {
	ch, err := f.enter(store.OpRangeQuery)
	if err != nil {
		wait(ctx, ch)
		return nil, err
	}
	users, err := f.inner.RangeQuery(ctx, field, lower, upper)
	wait(ctx, ch)
	return users, err
}

func (f *Fake) UpdateByID(ctx context.Context, id string, patch store.Patch) error {
	ch, err := f.enter(store.OpUpdate)
	if err != nil {
		wait(ctx, ch)
		return err
	}
	err = f.inner.UpdateByID(ctx, id, patch)
	wait(ctx, ch)
	return err
}

func (f *Fake) DeleteByID(ctx context.Context, id string) error {
	ch, err := f.enter(store.OpDelete)
	if err != nil {
		wait(ctx, ch)
		return err
	}
	err = f.inner.DeleteByID(ctx, id)
	wait(ctx, ch)
	return err
}

func (f *Fake) Get(ctx context.Context, id string) (store.User, error) {
	ch, err := f.enter(store.OpGet)
	if err != nil {
		wait(ctx, ch)
		return store.User{}, err
	}
	u, err := f.inner.Get(ctx, id)
	wait(ctx, ch)
	return u, err
}
