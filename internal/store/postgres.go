package store

import (
	"context"
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	postgresDriver = "pgx"
	// Default DSN targets a local development database.
	postgresDefaultDSN = "postgres://localhost/userdir?sslmode=disable"
)

// PostgresStore is an implementation of Gateway backed by Postgres.
// Comparisons and the name index use the "C" collation so range queries
// are bytewise regardless of the database locale.
type PostgresStore struct {
	sqlDocs
}

// NewPostgresStore opens a Postgres-backed store using the provided DSN
// (falls back to a local default), pings it and ensures the collection
// table exists.
func NewPostgresStore(ctx context.Context, dsn, collection string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = postgresDefaultDSN
	}
	table, err := validTable(collection)
	if err != nil {
		return nil, err
	}
	db, err := openDB(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{sqlDocs: sqlDocs{
		db:    db,
		table: table,
		dialect: sqlDialect{
			placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
			compare:     func(col string) string { return col + ` COLLATE "C"` },
		},
	}}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
