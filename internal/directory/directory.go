// Package directory implements the user directory view: it owns the full
// user list and the derived visible list, coordinates the create, edit and
// delete sub-interactions, and reconciles local state with the gateway
// after each mutation.
//
// Every method may be called from any goroutine.  State changes are
// serialised by a mutex that is never held across a gateway call, so a
// search or a keystroke can proceed while a load or delete is outstanding.
package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/form"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

var (
	// ErrClosed is returned by operations on, or completing after, a
	// closed directory.
	ErrClosed = errors.New("directory closed")
	// ErrDeleteInFlight is returned while a confirmed delete is waiting on
	// the gateway.
	ErrDeleteInFlight = errors.New("delete in progress")
	// ErrNoPendingDelete is returned when confirming or cancelling without
	// a delete awaiting confirmation.
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
)

// User-visible notices.
const (
	MsgLoadFailed   = "failed to load users; reload to retry"
	MsgDeleteFailed = "failed to delete user"
)

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger for gateway failures.
func WithLogger(l *logger.Logger) Option {
	return func(d *Directory) { d.log = l }
}

// Directory is the user directory view.
type Directory struct {
	gw  store.Gateway
	log *logger.Logger

	mu      sync.Mutex
	closed  bool
	all     []store.User
	visible []store.User
	mode    Mode
	term    string
	last    *query
	notice  string
	loadErr error

	session       Session
	sessionSerial uint64

	// Loads and searches are stamped so late responses cannot overwrite
	// newer state.  epoch counts successful deletes; tombstones maps each
	// deleted id to the epoch of its delete.  inflight counts outstanding
	// loads and searches by the epoch they were issued at; a tombstone is
	// kept while any of them predates it.
	loadSeq     uint64
	appliedLoad uint64
	searchSeq   uint64
	epoch       uint64
	tombstones  map[string]uint64
	inflight    map[uint64]int
}

// New constructs a directory around gw.  The directory owns gw from now
// on: Close releases it when it implements io.Closer.
func New(gw store.Gateway, opts ...Option) *Directory {
	d := &Directory{
		gw:         gw,
		log:        logger.Default().With("directory"),
		all:        []store.User{},
		visible:    []store.User{},
		tombstones: make(map[string]uint64),
		inflight:   make(map[uint64]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mount performs the initial load.
func (d *Directory) Mount(ctx context.Context) error {
	return d.Load(ctx)
}

// Close tears the directory down.  Gateway calls still outstanding complete
// without touching state.
func (d *Directory) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.setSession(idle())
	d.mu.Unlock()

	if c, ok := d.gw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Load fetches the whole collection and replaces the full list.  On
// failure the lists keep their previous contents and a retryable notice is
// set.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.loadSeq++
	seq, epoch := d.loadSeq, d.issue()
	d.mu.Unlock()

	users, err := d.gw.FetchAll(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.settle(epoch)
	if d.closed {
		return ErrClosed
	}
	if seq < d.appliedLoad {
		d.log.Debug("discarding load %d, load %d already applied", seq, d.appliedLoad)
		return nil
	}
	if err != nil {
		d.log.Error("fetching users: %v", err)
		d.loadErr = err
		d.notice = MsgLoadFailed
		return fmt.Errorf("load users: %w", err)
	}
	d.appliedLoad = seq
	d.all = without(users, d.deletedAfter(epoch))
	d.loadErr = nil
	if d.notice == MsgLoadFailed {
		d.notice = ""
	}
	d.reconcile()
	d.log.Debug("loaded %d users", len(d.all))
	return nil
}

// SetTerm records the search box contents without searching.  A blank term
// drops the last search outcome and shows the full list.
func (d *Directory) SetTerm(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.term = term
	if store.IsBlank(term) {
		d.last = nil
		d.searchSeq++
	}
	d.reconcile()
}

// Search filters the visible list by term.  A blank term shows the full
// list.  Otherwise the gateway is asked for names starting with term
// (case-sensitive); if that fails, the full list is filtered locally for
// names or emails containing term, ignoring case.  A response is applied
// only if no newer search was issued and the term is unchanged.
func (d *Directory) Search(ctx context.Context, term string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.term = term
	d.searchSeq++
	if store.IsBlank(term) {
		d.last = nil
		d.reconcile()
		d.mu.Unlock()
		return nil
	}
	seq, epoch := d.searchSeq, d.issue()
	d.mu.Unlock()

	lower, upper := store.PrefixBounds(term)
	users, err := d.gw.RangeQuery(ctx, store.FieldName, lower, upper)

	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.settle(epoch)
	if d.closed {
		return ErrClosed
	}
	if seq != d.searchSeq || d.term != term {
		d.log.Debug("discarding superseded search for %q", term)
		return nil
	}
	if err != nil {
		d.log.Warn("searching users for %q, filtering locally: %v", term, err)
		d.last = &query{term: term, fallback: true}
	} else {
		d.last = &query{term: term, users: without(users, d.deletedAfter(epoch))}
	}
	d.reconcile()
	return nil
}

// BeginCreate opens the creation form.  Nothing changes until the form
// reports success, which reloads the list and closes the session.
func (d *Directory) BeginCreate() (*form.Form, error) {
	d.mu.Lock()
	serial, err := d.open(creating())
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return form.NewCreate(d.gw, d.completion(serial), form.WithLogger(d.log)), nil
}

// BeginEdit opens the edit form for id, replacing any open session.  The
// form loads the record before it is returned.
func (d *Directory) BeginEdit(ctx context.Context, id string) (*form.Form, error) {
	d.mu.Lock()
	serial, err := d.open(editing(id))
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return form.NewEdit(ctx, d.gw, id, d.completion(serial), form.WithLogger(d.log)), nil
}

// CloseForm dismisses an open create or edit form without saving.
func (d *Directory) CloseForm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if k := d.session.Kind(); k == Creating || k == Editing {
		d.setSession(idle())
	}
}

// RequestDelete asks for confirmation before deleting id.  The store is
// not touched.
func (d *Directory) RequestDelete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.open(confirmingDelete(id))
	return err
}

// CancelDelete abandons a pending confirmation.  It is refused once the
// delete has been confirmed.
func (d *Directory) CancelDelete() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.session.Kind() {
	case ConfirmingDelete:
		d.setSession(idle())
		return nil
	case Deleting:
		return ErrDeleteInFlight
	default:
		return ErrNoPendingDelete
	}
}

// ConfirmDelete deletes the record awaiting confirmation.  On success the
// record is removed from the full list and the last search result in place,
// without a reload.  Either way the session returns to idle.
func (d *Directory) ConfirmDelete(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	switch d.session.Kind() {
	case ConfirmingDelete:
	case Deleting:
		d.mu.Unlock()
		return ErrDeleteInFlight
	default:
		d.mu.Unlock()
		return ErrNoPendingDelete
	}
	id := d.session.ID()
	d.setSession(deleting(id))
	d.mu.Unlock()

	err := d.gw.DeleteByID(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.setSession(idle())
	if err != nil {
		d.log.Error("deleting user %s: %v", id, err)
		d.notice = MsgDeleteFailed
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	d.epoch++
	d.tombstones[id] = d.epoch
	drop := func(x string) bool { return x == id }
	d.all = without(d.all, drop)
	if d.last != nil && !d.last.fallback {
		d.last = &query{term: d.last.term, users: without(d.last.users, drop)}
	}
	if d.notice == MsgDeleteFailed {
		d.notice = ""
	}
	d.reconcile()
	return nil
}

// Users returns a copy of the full list.
func (d *Directory) Users() []store.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return clone(d.all)
}

// Visible returns a copy of the visible list.
func (d *Directory) Visible() []store.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return clone(d.visible)
}

// Mode reports where the visible list comes from.
func (d *Directory) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *Directory) Term() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.term
}

func (d *Directory) Session() Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// Notice returns the current user-visible error banner, or "".
func (d *Directory) Notice() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.notice
}

// ClearNotice dismisses the banner.
func (d *Directory) ClearNotice() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notice = ""
}

// LoadErr returns the error of the last load if it failed.
func (d *Directory) LoadErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadErr
}

// open switches to s unless a delete is in flight.  Callers hold d.mu.
func (d *Directory) open(s Session) (uint64, error) {
	if d.closed {
		return 0, ErrClosed
	}
	if d.session.Kind() == Deleting {
		return 0, ErrDeleteInFlight
	}
	d.setSession(s)
	return d.sessionSerial, nil
}

func (d *Directory) setSession(s Session) {
	d.session = s
	d.sessionSerial++
}

// completion is the form callback: close the session that opened the form,
// if it is still open, then reload.
func (d *Directory) completion(serial uint64) form.DoneFunc {
	return func(ctx context.Context) {
		d.mu.Lock()
		if d.sessionSerial == serial {
			d.setSession(idle())
		}
		d.mu.Unlock()
		// Load logs and records its own failure.
		_ = d.Load(ctx)
	}
}

// issue records an outstanding load or search and returns the epoch it
// was issued at.  Callers hold d.mu.
func (d *Directory) issue() uint64 {
	d.inflight[d.epoch]++
	return d.epoch
}

// settle retires a load or search issued at epoch and drops the tombstones
// no outstanding response can still contain.  Callers hold d.mu.
func (d *Directory) settle(epoch uint64) {
	if d.inflight[epoch]--; d.inflight[epoch] <= 0 {
		delete(d.inflight, epoch)
	}
	oldest, busy := uint64(0), false
	for e := range d.inflight {
		if !busy || e < oldest {
			oldest, busy = e, true
		}
	}
	for id, e := range d.tombstones {
		if !busy || e <= oldest {
			delete(d.tombstones, id)
		}
	}
}

func (d *Directory) deletedAfter(epoch uint64) func(id string) bool {
	return func(id string) bool {
		e, ok := d.tombstones[id]
		return ok && e > epoch
	}
}

// reconcile recomputes the visible list.  Callers hold d.mu.
func (d *Directory) reconcile() {
	d.visible, d.mode = deriveVisible(d.all, d.term, d.last)
}
