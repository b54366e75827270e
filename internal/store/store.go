package store

import (
	"context"
)

// DefaultCollection is the collection every gateway uses unless told
// otherwise.
const DefaultCollection = "users"

// PrefixSentinel is appended to a search term to form the inclusive upper
// bound of a prefix-range query.  It is the highest code point in the
// Basic Multilingual Plane private use area, which sorts after every
// character a user is expected to type.
const PrefixSentinel = "\uf8ff"

// Gateway defines the document collection the directory reads and writes.
//
// Implementations may use different backends (e.g. in‑memory for tests,
// Redis, SQL databases, MongoDB or Firestore for real deployments, or a
// remote gateway reached over gRPC).  The directory depends on this
// abstraction rather than a concrete data store.
//
// All methods accept a context for cancellation and deadlines.  Every
// failure is reported as a *StoreError; use errors.Is with ErrNotFound or
// ErrUnknownField to discriminate.
type Gateway interface {
	// Add stores a new document and returns its server-assigned identifier.
	Add(ctx context.Context, fields Fields) (string, error)
	// FetchAll returns every document in the collection.  No ordering is
	// guaranteed.
	FetchAll(ctx context.Context) ([]User, error)
	// RangeQuery returns the documents whose field lies in [lower, upper]
	// under bytewise lexicographic comparison.
	RangeQuery(ctx context.Context, field, lower, upper string) ([]User, error)
	// UpdateByID applies patch to the document identified by id.
	UpdateByID(ctx context.Context, id string, patch Patch) error
	// DeleteByID removes the document identified by id.
	DeleteByID(ctx context.Context, id string) error
	// Get returns the document identified by id.
	Get(ctx context.Context, id string) (User, error)
}

// PrefixBounds returns the inclusive bounds that approximate a
// "starts with term" filter under lexicographic ordering.
func PrefixBounds(term string) (lower, upper string) {
	return term, term + PrefixSentinel
}

// inRange reports whether v lies within the inclusive range [lower, upper].
func inRange(v, lower, upper string) bool {
	return v >= lower && v <= upper
}
