package backend_test

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/backend"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/config"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/server"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// roundTrip adds one record through gw and reads it back.
func roundTrip(t *testing.T, gw store.Gateway) {
	t.Helper()
	ctx := context.Background()
	id, err := gw.Add(ctx, store.Fields{Name: "Ana", Email: "a@x.com"})
	require.NoError(t, err)
	got, err := gw.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func open(t *testing.T, cfg *config.Config) backend.Gateway {
	t.Helper()
	gw, err := backend.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

func TestOpenMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = config.DriverMemory
	roundTrip(t, open(t, cfg))
}

func TestOpenSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "users.db")
	gw := open(t, cfg)
	roundTrip(t, gw)
	assert.IsType(t, &store.SQLiteStore{}, gw)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Driver = config.DriverRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Collection = "people"
	roundTrip(t, open(t, cfg))
	assert.True(t, mr.Exists("people"))
}

func TestOpenRemote(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, lis, server.New(store.NewInMemoryStore(), logger.Discard()), logger.Discard())
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	cfg := config.Default()
	cfg.Driver = config.DriverRemote
	cfg.Remote.Address = lis.Addr().String()
	cfg.Remote.Insecure = true
	roundTrip(t, open(t, cfg))
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = config.DriverPostgres

	_, err := backend.Open(context.Background(), cfg)

	assert.ErrorContains(t, err, "postgres.dsn required")
}

func TestOpenRedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = config.DriverRedis
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := backend.Open(context.Background(), cfg)

	assert.ErrorContains(t, err, "redis connection failed")
}
