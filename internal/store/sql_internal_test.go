package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreOpenError(t *testing.T) {
	boom := errors.New("driver unavailable")
	var gotDriver, gotDSN string
	restore := overrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return nil, boom
	})
	defer restore()

	_, err := NewPostgresStore(context.Background(), "", "")

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "open postgres")
	assert.Equal(t, postgresDriver, gotDriver)
	assert.Equal(t, postgresDefaultDSN, gotDSN)
}

func TestPostgresStorePingError(t *testing.T) {
	restore := overrideSQLOpen(func(driver, _ string) (*sql.DB, error) {
		// Nothing listens on port 1.
		return sql.Open(driver, "postgres://127.0.0.1:1/userdir?sslmode=disable&connect_timeout=1")
	})
	defer restore()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewPostgresStore(ctx, "postgres://db.invalid/userdir", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
}

func TestPostgresStoreRejectsBadCollectionBeforeOpen(t *testing.T) {
	opened := false
	restore := overrideSQLOpen(func(string, string) (*sql.DB, error) {
		opened = true
		return nil, errors.New("unreachable")
	})
	defer restore()

	_, err := NewPostgresStore(context.Background(), "", "users; DROP TABLE users")

	require.ErrorIs(t, err, errBadTable)
	assert.False(t, opened)
}

func TestSQLGetClosedDatabaseIsNotDecodeError(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "users.db"), "")
	require.NoError(t, err)
	id, err := s.Add(context.Background(), Fields{Name: "Ana", Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), id)

	require.Error(t, err)
	assert.True(t, IsStoreError(err))
	var de *DecodeError
	assert.False(t, errors.As(err, &de), "connection failures are not decode errors")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSQLGetUnscannableRowIsDecodeError(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "users.db"), "")
	require.NoError(t, err)
	defer s.Close()
	// Recreate the table without NOT NULL so a NULL name can be stored.
	_, err = s.db.Exec(`DROP TABLE ` + s.table)
	require.NoError(t, err)
	_, err = s.db.Exec(`CREATE TABLE ` + s.table + ` (id TEXT PRIMARY KEY, name TEXT, email TEXT, phone TEXT, address TEXT)`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO `+s.table+` (id, name, email, phone, address) VALUES (?, NULL, '', '', '')`, "u1")
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "u1")

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "u1", de.ID)
}
