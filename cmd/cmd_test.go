package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/export"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestUsersLifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "users.db")
	cfgPath := filepath.Join(dir, "userdir.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("driver: sqlite\nsqlite:\n  path: %s\nlog:\n  color: false\n", db)), 0o644))

	out, err := execute(t, "", "users", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no users found")

	out, err = execute(t, "", "users", "create", "--config", cfgPath, "--name", "Ana", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user: Ana <a@x.com>")

	_, err = execute(t, "", "users", "create", "--config", cfgPath, "--name", "Beto", "--email", "")
	assert.ErrorContains(t, err, "name and email are required")

	s, err := store.NewSQLiteStore(db, "")
	require.NoError(t, err)
	users, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.Len(t, users, 1)
	id := users[0].ID

	out, err = execute(t, "", "users", "search", "--config", cfgPath, "An")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	exported := filepath.Join(dir, "snapshot.json")
	out, err = execute(t, "", "export", "--config", cfgPath, exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 users")
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	var snap export.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 1, snap.Count)

	out, err = execute(t, "n\n", "users", "delete", "--config", cfgPath, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")

	out, err = execute(t, "", "users", "delete", "--config", cfgPath, "--yes", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted user "+id)

	out, err = execute(t, "", "users", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no users found")
}

func TestUnknownDriverFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "userdir.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("driver: memory\n"), 0o644))

	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("driver", "memory") })

	_, err := execute(t, "", "users", "list", "--config", cfgPath, "--driver", "dynamo")

	assert.ErrorContains(t, err, `unknown driver "dynamo"`)
}
