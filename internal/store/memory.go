package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"
)

const (
	memIndexID   = "id"
	memIndexName = "name"
)

// MemoryStore is an implementation of Gateway backed by an in‑memory
// go-memdb database.  It is safe for concurrent use and intended primarily
// for unit tests and development.  Data stored in this store is not
// persisted beyond the lifetime of the process.
//
// Records are indexed by id and by name; the name index keeps range
// queries to an ordered scan instead of a full table walk.
type MemoryStore struct {
	db         *memdb.MemDB
	collection string
}

func memorySchema(collection string) *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			collection: {
				Name: collection,
				Indexes: map[string]*memdb.IndexSchema{
					memIndexID: {
						Name:    memIndexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					memIndexName: {
						Name:         memIndexName,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
		},
	}
}

// NewInMemoryStore constructs an empty in‑memory store for the default
// collection.
func NewInMemoryStore() *MemoryStore {
	s, err := NewMemoryStore(DefaultCollection)
	if err != nil {
		// The schema is static; a failure here is a programming error.
		panic(err)
	}
	return s
}

// NewMemoryStore constructs an empty in‑memory store for collection.
func NewMemoryStore(collection string) (*MemoryStore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	db, err := memdb.NewMemDB(memorySchema(collection))
	if err != nil {
		return nil, fmt.Errorf("memdb schema: %w", err)
	}
	return &MemoryStore{db: db, collection: collection}, nil
}

// Add inserts a new record and returns its generated identifier.
func (s *MemoryStore) Add(ctx context.Context, fields Fields) (string, error) {
	id := uuid.NewString()
	txn := s.db.Txn(true)
	defer txn.Abort()
	u := fields.WithID(id)
	if err := txn.Insert(s.collection, &u); err != nil {
		return "", wrap(OpAdd, "", err)
	}
	txn.Commit()
	return id, nil
}

// FetchAll returns all records ordered by id.
func (s *MemoryStore) FetchAll(ctx context.Context) ([]User, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(s.collection, memIndexID)
	if err != nil {
		return nil, wrap(OpFetchAll, "", err)
	}
	users := make([]User, 0)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		users = append(users, *obj.(*User))
	}
	return users, nil
}

// RangeQuery returns the records whose field lies in [lower, upper].  Name
// queries walk the name index from lower and stop at the first record past
// upper; the other fields are filtered with a scan.  The name index leaves
// out empty names, so a range starting at "" scans too.
func (s *MemoryStore) RangeQuery(ctx context.Context, field, lower, upper string) ([]User, error) {
	if err := checkField(field); err != nil {
		return nil, wrap(OpRangeQuery, "", err)
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	users := make([]User, 0)
	if field == FieldName && lower != "" {
		it, err := txn.LowerBound(s.collection, memIndexName, lower)
		if err != nil {
			return nil, wrap(OpRangeQuery, "", err)
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			u := obj.(*User)
			if u.Name > upper {
				break
			}
			if inRange(u.Name, lower, upper) {
				users = append(users, *u)
			}
		}
		return users, nil
	}

	it, err := txn.Get(s.collection, memIndexID)
	if err != nil {
		return nil, wrap(OpRangeQuery, "", err)
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		u := obj.(*User)
		v, _ := u.Fields().Value(field)
		if inRange(v, lower, upper) {
			users = append(users, *u)
		}
	}
	return users, nil
}

// UpdateByID applies patch to the record identified by id.
func (s *MemoryStore) UpdateByID(ctx context.Context, id string, patch Patch) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	current, err := s.first(txn, id)
	if err != nil {
		return wrap(OpUpdate, id, err)
	}
	// Stored objects are never mutated in place; readers may still hold them.
	updated := patch.Apply(current.Fields()).WithID(id)
	if err := txn.Insert(s.collection, &updated); err != nil {
		return wrap(OpUpdate, id, err)
	}
	txn.Commit()
	return nil
}

// DeleteByID removes the record identified by id.
func (s *MemoryStore) DeleteByID(ctx context.Context, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	current, err := s.first(txn, id)
	if err != nil {
		return wrap(OpDelete, id, err)
	}
	if err := txn.Delete(s.collection, current); err != nil {
		return wrap(OpDelete, id, err)
	}
	txn.Commit()
	return nil
}

// Get retrieves a record by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (User, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	u, err := s.first(txn, id)
	if err != nil {
		return User{}, wrap(OpGet, id, err)
	}
	return *u, nil
}

func (s *MemoryStore) first(txn *memdb.Txn, id string) (*User, error) {
	obj, err := txn.First(s.collection, memIndexID, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNotFound
	}
	return obj.(*User), nil
}
