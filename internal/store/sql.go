package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	openMu       sync.Mutex
	sqlOpen      = sql.Open
	tableNameRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	errBadTable  = errors.New("collection is not a valid table name")
	sqlSelectCol = "id, name, email, phone, address"
)

// openDB opens a database handle through the current sqlOpen.
func openDB(driver, dsn string) (*sql.DB, error) {
	openMu.Lock()
	defer openMu.Unlock()
	return sqlOpen(driver, dsn)
}

// overrideSQLOpen swaps the sqlOpen function for tests and returns a
// restore function.
func overrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// sqlDialect captures the differences between the SQL backends.
type sqlDialect struct {
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// compare wraps a column for bytewise string comparison.
	compare func(col string) string
}

// sqlDocs stores each document as one row of a table named after the
// collection.  It is shared by SQLiteStore and PostgresStore.
type sqlDocs struct {
	db      *sql.DB
	table   string
	dialect sqlDialect
}

func validTable(collection string) (string, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if !tableNameRe.MatchString(collection) {
		return "", fmt.Errorf("%w: %q", errBadTable, collection)
	}
	return collection, nil
}

func (s *sqlDocs) createTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_name_idx ON %s (%s)`, s.table, s.table, s.dialect.compare("name"))
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create %s name index: %w", s.table, err)
	}
	return nil
}

// Close closes the database handle.
func (s *sqlDocs) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlDocs) Add(ctx context.Context, fields Fields) (string, error) {
	id := uuid.NewString()
	p := s.dialect.placeholder
	q := fmt.Sprintf(`INSERT INTO %s (id, name, email, phone, address) VALUES (%s, %s, %s, %s, %s)`,
		s.table, p(1), p(2), p(3), p(4), p(5))
	if _, err := s.db.ExecContext(ctx, q, id, fields.Name, fields.Email, fields.Phone, fields.Address); err != nil {
		return "", wrap(OpAdd, "", fmt.Errorf("insert: %w", err))
	}
	return id, nil
}

func (s *sqlDocs) FetchAll(ctx context.Context) ([]User, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s`, sqlSelectCol, s.table)
	users, err := s.query(ctx, q)
	if err != nil {
		return nil, wrap(OpFetchAll, "", err)
	}
	return users, nil
}

func (s *sqlDocs) RangeQuery(ctx context.Context, field, lower, upper string) ([]User, error) {
	if err := checkField(field); err != nil {
		return nil, wrap(OpRangeQuery, "", err)
	}
	col := s.dialect.compare(field)
	p := s.dialect.placeholder
	// field is one of the four known column names, never user input.
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s >= %s AND %s <= %s`,
		sqlSelectCol, s.table, col, p(1), col, p(2))
	users, err := s.query(ctx, q, lower, upper)
	if err != nil {
		return nil, wrap(OpRangeQuery, "", err)
	}
	return users, nil
}

func (s *sqlDocs) UpdateByID(ctx context.Context, id string, patch Patch) error {
	values := patch.Values()
	if len(values) == 0 {
		_, err := s.Get(ctx, id)
		if err != nil {
			return wrap(OpUpdate, id, errors.Unwrap(err))
		}
		return nil
	}
	sets := make([]string, len(values))
	args := make([]any, 0, len(values)+1)
	for i, fv := range values {
		sets[i] = fmt.Sprintf("%s = %s", fv.Field, s.dialect.placeholder(i+1))
		args = append(args, fv.Value)
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s`,
		s.table, strings.Join(sets, ", "), s.dialect.placeholder(len(args)))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return wrap(OpUpdate, id, fmt.Errorf("update: %w", err))
	}
	return wrap(OpUpdate, id, requireRow(res))
}

func (s *sqlDocs) DeleteByID(ctx context.Context, id string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, s.table, s.dialect.placeholder(1))
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return wrap(OpDelete, id, fmt.Errorf("delete: %w", err))
	}
	return wrap(OpDelete, id, requireRow(res))
}

func (s *sqlDocs) Get(ctx context.Context, id string) (User, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s`, sqlSelectCol, s.table, s.dialect.placeholder(1))
	users, err := s.query(ctx, q, id)
	if err != nil {
		return User{}, wrap(OpGet, id, err)
	}
	if len(users) == 0 {
		return User{}, wrap(OpGet, id, ErrNotFound)
	}
	return users[0], nil
}

func (s *sqlDocs) query(ctx context.Context, q string, args ...any) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer func() { _ = rows.Close() }()
	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address); err != nil {
			return nil, &DecodeError{ID: u.ID, Err: err}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return users, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
