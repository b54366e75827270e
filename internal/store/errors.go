package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is reported when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrUnknownField is reported for range queries on a field that is not
	// part of the user document.
	ErrUnknownField = errors.New("unknown field")
)

// StoreError wraps every failure a Gateway reports.  Op names the gateway
// operation; ID is set for operations addressing a single document.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DecodeError reports a stored document that does not have the shape of a
// user record.
type DecodeError struct {
	ID  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode document %s: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsStoreError reports whether err originated in a gateway.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// wrap builds a StoreError unless err is nil or already one.
func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, ID: id, Err: err}
}

// Wrap is the exported form of wrap for gateways that live outside this
// package, such as the gRPC client.
func Wrap(op, id string, err error) error {
	return wrap(op, id, err)
}

// Operation names used in StoreError.Op.
const (
	OpAdd        = "add"
	OpFetchAll   = "fetch-all"
	OpRangeQuery = "range-query"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpGet        = "get"
)

// checkField validates a range-query field name.
func checkField(field string) error {
	if !ValidField(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}
