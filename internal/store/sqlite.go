package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore is an implementation of Gateway backed by a SQLite file.
// SQLite's default BINARY collation compares strings with memcmp, so range
// queries on UTF-8 text follow code point order.
type SQLiteStore struct {
	sqlDocs
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the collection table exists.  ":memory:" opens a private
// in-memory database.
func NewSQLiteStore(path, collection string) (*SQLiteStore, error) {
	if path == "" {
		path = "userdir.db"
	}
	table, err := validTable(collection)
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer at a time; a single connection also
	// keeps ":memory:" databases from splitting across connections.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{
		sqlDocs: sqlDocs{
			db:    db,
			table: table,
			dialect: sqlDialect{
				placeholder: func(int) string { return "?" },
				compare:     func(col string) string { return col },
			},
		},
		path: path,
	}
	if err := s.createTable(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }
