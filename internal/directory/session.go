package directory

import "fmt"

// SessionKind enumerates the sub-interactions the directory coordinates.
type SessionKind int

const (
	NoSession SessionKind = iota
	Creating
	Editing
	ConfirmingDelete
	Deleting
)

func (k SessionKind) String() string {
	switch k {
	case NoSession:
		return "idle"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case ConfirmingDelete:
		return "confirming-delete"
	case Deleting:
		return "deleting"
	default:
		return fmt.Sprintf("SessionKind(%d)", int(k))
	}
}

// Session is the single open sub-interaction of the directory: nothing, the
// create form, the edit form of one record, a pending delete confirmation
// or a delete in flight.  The zero value is NoSession.  Fields are
// unexported so only the constructors below can build one, which keeps an
// id off Creating and NoSession and makes editing-while-deleting
// unrepresentable.
type Session struct {
	kind SessionKind
	id   string
}

func idle() Session { return Session{} }
func creating() Session { return Session{kind: Creating} }
func editing(id string) Session { return Session{kind: Editing, id: id} }
func confirmingDelete(id string) Session { return Session{kind: ConfirmingDelete, id: id} }
func deleting(id string) Session { return Session{kind: Deleting, id: id} }

// Kind returns the session variant.
func (s Session) Kind() SessionKind { return s.kind }

// ID returns the record the session addresses; empty for NoSession and
// Creating.
func (s Session) ID() string { return s.id }

// PendingDelete returns the id awaiting confirmation, if any.
func (s Session) PendingDelete() (string, bool) {
	if s.kind == ConfirmingDelete {
		return s.id, true
	}
	return "", false
}

// EditingID returns the id being edited, if any.
func (s Session) EditingID() (string, bool) {
	if s.kind == Editing {
		return s.id, true
	}
	return "", false
}

func (s Session) String() string {
	if s.id == "" {
		return s.kind.String()
	}
	return fmt.Sprintf("%s(%s)", s.kind, s.id)
}
