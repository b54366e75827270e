// Package backend opens the store.Gateway selected by the configuration.
package backend

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/client"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/config"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// Gateway is a store.Gateway that holds connections.  Close is a no-op
// for drivers without any.
type Gateway interface {
	store.Gateway
	Close() error
}

// Open validates cfg and connects to its driver.
func Open(ctx context.Context, cfg *config.Config) (Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	coll := cfg.Collection
	switch cfg.Driver {
	case config.DriverMemory:
		s, err := store.NewMemoryStore(coll)
		if err != nil {
			return nil, err
		}
		return nopCloser{s}, nil
	case config.DriverSQLite:
		return opened(store.NewSQLiteStore(cfg.SQLite.Path, coll))
	case config.DriverRedis:
		var tc *tls.Config
		if cfg.Redis.TLS {
			tc = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		s, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, tc, coll)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		return opened(store.NewPostgresStore(ctx, cfg.Postgres.DSN, coll))
	case config.DriverMongo:
		return opened(store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, coll))
	case config.DriverFirestore:
		return opened(store.NewFirestoreStore(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile, coll))
	case config.DriverRemote:
		return opened(client.NewClient(client.DialConfig{
			Address:    cfg.Remote.Address,
			Insecure:   cfg.Remote.Insecure,
			RootCA:     cfg.Remote.CA,
			ClientCert: cfg.Remote.Cert,
			ClientKey:  cfg.Remote.Key,
		}))
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

// opened keeps a failed constructor's typed nil out of the interface.
func opened[G Gateway](gw G, err error) (Gateway, error) {
	if err != nil {
		return nil, err
	}
	return gw, nil
}

type nopCloser struct {
	store.Gateway
}

func (nopCloser) Close() error { return nil }
