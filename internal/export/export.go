// Package export writes a JSON snapshot of the user collection to a local
// file, standard output or an S3 object.
package export

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// Snapshot is the exported document.
type Snapshot struct {
	Collection string       `json:"collection"`
	ExportedAt time.Time    `json:"exported_at"`
	Count      int          `json:"count"`
	Users      []store.User `json:"users"`
}

// Sink receives the encoded snapshot.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	String() string
}

// Exporter fetches the collection and hands it to a sink.
type Exporter struct {
	Gateway    store.Gateway
	Collection string
	Now        func() time.Time
}

// Export fetches every user, orders them by name then id, and writes the
// indented JSON snapshot to sink.
func (e *Exporter) Export(ctx context.Context, sink Sink) (Snapshot, error) {
	users, err := e.Gateway.FetchAll(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch users: %w", err)
	}
	slices.SortFunc(users, func(a, b store.User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	collection := e.Collection
	if collection == "" {
		collection = store.DefaultCollection
	}
	snap := Snapshot{
		Collection: collection,
		ExportedAt: now().UTC(),
		Count:      len(users),
		Users:      users,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := sink.Write(ctx, data); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot to %s: %w", sink, err)
	}
	return snap, nil
}
