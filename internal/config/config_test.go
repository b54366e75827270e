package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/config"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "userdir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDiscoversFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "driver: memory\ncollection: people\n")
	t.Chdir(dir)

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Driver)
	assert.Equal(t, "people", cfg.Collection)
	assert.Equal(t, path, cfg.Source)
}

func TestLoadKeepsDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("USERDIR_TEST_REDIS_PASSWORD", "s3cret")
	path := writeConfig(t, t.TempDir(), `
driver: redis
redis:
  password: ${USERDIR_TEST_REDIS_PASSWORD}
server:
  metrics_addr: ":9100"
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr, "unset keys keep defaults")
	assert.Equal(t, ":9100", cfg.Server.MetricsAddr)
	assert.Equal(t, "users", cfg.Collection)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := writeConfig(t, t.TempDir(), "driver: [unterminated\n")
	_, err = config.Load(path)
	assert.ErrorContains(t, err, "failed to parse yaml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"default", func(*config.Config) {}, ""},
		{"unknown driver", func(c *config.Config) { c.Driver = "dynamo" }, "unknown driver"},
		{"postgres without dsn", func(c *config.Config) { c.Driver = config.DriverPostgres }, "postgres.dsn required"},
		{"firestore without project", func(c *config.Config) { c.Driver = config.DriverFirestore }, "firestore.project_id required"},
		{"remote half key pair", func(c *config.Config) {
			c.Driver = config.DriverRemote
			c.Remote.Cert = "client.pem"
		}, "must be set together"},
		{"partial server tls", func(c *config.Config) { c.Server.TLS.Cert = "server.pem" }, "server.tls requires"},
		{"memory", func(c *config.Config) { c.Driver = config.DriverMemory }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
