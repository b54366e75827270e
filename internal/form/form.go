// Package form implements the create and edit user forms: a local draft,
// presence validation on name and email, and a single gateway write per
// submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// User-visible messages.
const (
	MsgRequired     = "name and email are required"
	MsgCreateFailed = "failed to create user"
	MsgUpdateFailed = "failed to update user"
	MsgLoadFailed   = "failed to load user"
)

// ErrSubmitInFlight is returned by Submit while a previous submission is
// still waiting on the gateway.
var ErrSubmitInFlight = errors.New("submission already in progress")

// ValidationError reports a draft that is missing a required field.  It
// never reaches the store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Mode distinguishes the two form variants.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// DoneFunc is invoked after a successful write.
type DoneFunc func(ctx context.Context)

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the logger used for store failures.
func WithLogger(l *logger.Logger) Option {
	return func(f *Form) { f.log = l }
}

// Form holds a draft of the four user fields.
type Form struct {
	gw     store.Gateway
	mode   Mode
	id     string
	onDone DoneFunc
	log    *logger.Logger

	mu         sync.Mutex
	draft      store.Fields
	submitting bool
	message    string
	created    string
}

// NewCreate returns an empty creation form.
func NewCreate(gw store.Gateway, onDone DoneFunc, opts ...Option) *Form {
	return newForm(gw, ModeCreate, "", onDone, opts)
}

// NewEdit returns a form for the record identified by id, with the draft
// loaded from the gateway.  A load failure is logged and surfaced through
// Message; the draft stays empty and the form remains usable.
func NewEdit(ctx context.Context, gw store.Gateway, id string, onDone DoneFunc, opts ...Option) *Form {
	f := newForm(gw, ModeEdit, id, onDone, opts)
	u, err := gw.Get(ctx, id)
	if err != nil {
		f.log.Error("fetching user %s: %v", id, err)
		f.message = MsgLoadFailed
		return f
	}
	f.draft = u.Fields()
	return f
}

func newForm(gw store.Gateway, mode Mode, id string, onDone DoneFunc, opts []Option) *Form {
	f := &Form{gw: gw, mode: mode, id: id, onDone: onDone, log: logger.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Mode reports whether this is a create or edit form.
func (f *Form) Mode() Mode { return f.mode }

// ID returns the identifier being edited; empty for create forms.
func (f *Form) ID() string { return f.id }

// Created returns the identifier assigned by the last successful create.
func (f *Form) Created() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() store.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Set changes one draft field by document field name.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Set(field, value)
}

// SetDraft replaces the whole draft.
func (f *Form) SetDraft(fields store.Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = fields
}

// Message returns the last user-visible error, or "".
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Submitting reports whether a write is in flight; the submit control is
// disabled while it is.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates the draft and issues one Add or UpdateByID.  On success
// the completion callback runs; a create form also resets its draft.  On
// failure the draft is kept for retry.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.message = ""
	draft := f.draft
	if store.IsBlank(draft.Name) || store.IsBlank(draft.Email) {
		f.message = MsgRequired
		f.mu.Unlock()
		return &ValidationError{Message: MsgRequired}
	}
	f.submitting = true
	f.mu.Unlock()

	id, err := f.write(ctx, draft)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		if f.mode == ModeEdit {
			f.message = MsgUpdateFailed
		} else {
			f.message = MsgCreateFailed
		}
		f.mu.Unlock()
		f.log.Error("%s user: %v", f.mode, err)
		return err
	}
	if f.mode == ModeCreate {
		f.draft = store.Fields{}
		f.created = id
	}
	f.mu.Unlock()

	if f.onDone != nil {
		f.onDone(ctx)
	}
	return nil
}

// write issues the store call and returns the record's id.
func (f *Form) write(ctx context.Context, draft store.Fields) (string, error) {
	if f.mode == ModeEdit {
		if err := f.gw.UpdateByID(ctx, f.id, store.FullPatch(draft)); err != nil {
			return "", fmt.Errorf("update user %s: %w", f.id, err)
		}
		return f.id, nil
	}
	id, err := f.gw.Add(ctx, draft)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	f.log.Debug("created user %s", id)
	return id, nil
}
