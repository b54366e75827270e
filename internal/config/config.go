package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// Gateway drivers.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverRedis     = "redis"
	DriverPostgres  = "postgres"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverRemote    = "remote"
)

// Drivers lists every supported driver.
var Drivers = []string{DriverMemory, DriverSQLite, DriverRedis, DriverPostgres, DriverMongo, DriverFirestore, DriverRemote}

// FileNames are looked up in the working directory when no path is given.
var FileNames = []string{"userdir.yaml", "userdir.yml"}

type Config struct {
	Driver     string    `yaml:"driver"`
	Collection string    `yaml:"collection"`
	SQLite     SQLite    `yaml:"sqlite"`
	Redis      Redis     `yaml:"redis"`
	Postgres   Postgres  `yaml:"postgres"`
	Mongo      Mongo     `yaml:"mongo"`
	Firestore  Firestore `yaml:"firestore"`
	Remote     Remote    `yaml:"remote"`
	Server     Server    `yaml:"server"`
	Export     Export    `yaml:"export"`
	Log        Log       `yaml:"log"`

	// Source is the file the config was read from; empty for defaults.
	Source string `yaml:"-"`
}

type SQLite struct {
	Path string `yaml:"path"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type Firestore struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Remote is the gateway server a "remote" driver dials.
type Remote struct {
	Address  string `yaml:"address"`
	Insecure bool   `yaml:"insecure"`
	CA       string `yaml:"ca"`
	Cert     string `yaml:"cert"`
	Key      string `yaml:"key"`
}

type Server struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	TLS         TLS    `yaml:"tls"`
}

// TLS enables mutual TLS on the gateway server when all three files are
// set.
type TLS struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
	CA   string `yaml:"ca"`
}

func (t TLS) Enabled() bool { return t.Cert != "" || t.Key != "" || t.CA != "" }

type Export struct {
	S3 S3 `yaml:"s3"`
}

type S3 struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type Log struct {
	Verbose bool `yaml:"verbose"`
	Color   bool `yaml:"color"`
}

func Default() *Config {
	return &Config{
		Driver:     DriverSQLite,
		Collection: store.DefaultCollection,
		SQLite:     SQLite{Path: "userdir.db"},
		Redis:      Redis{Addr: "127.0.0.1:6379"},
		Mongo:      Mongo{URI: "mongodb://127.0.0.1:27017", Database: "userdir"},
		Remote:     Remote{Address: "127.0.0.1:9090"},
		Server:     Server{Addr: "0.0.0.0:9090"},
		Export:     Export{S3: S3{Region: "us-east-1"}},
		Log:        Log{Color: true},
	}
}

// Load reads the config at path, or the first of FileNames found in the
// working directory when path is empty.  Keys missing from the file keep
// their defaults, and ${VAR} references are expanded from the environment.
func Load(path string) (*Config, error) {
	log := logger.Default().With("config")
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working dir: %w", err)
		}
		for _, name := range FileNames {
			p := filepath.Join(wd, name)
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			log.Debug("No config file found, using default config")
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml %s: %w", path, err)
	}
	cfg.Source = path
	log.Debug("Config file found: %s", path)
	return cfg, nil
}

// Validate checks that the driver is known and has the settings it needs.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(Drivers, c.Driver) {
		errs = append(errs, fmt.Errorf("unknown driver %q (want one of %v)", c.Driver, Drivers))
	}
	switch c.Driver {
	case DriverSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite.path required"))
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr required"))
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn required"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri required"))
		}
	case DriverFirestore:
		if c.Firestore.ProjectID == "" {
			errs = append(errs, errors.New("firestore.project_id required"))
		}
	case DriverRemote:
		if c.Remote.Address == "" {
			errs = append(errs, errors.New("remote.address required"))
		}
		if (c.Remote.Cert == "") != (c.Remote.Key == "") {
			errs = append(errs, errors.New("remote.cert and remote.key must be set together"))
		}
	}
	if c.Server.TLS.Enabled() && (c.Server.TLS.Cert == "" || c.Server.TLS.Key == "" || c.Server.TLS.CA == "") {
		errs = append(errs, errors.New("server.tls requires cert, key and ca"))
	}
	return errors.Join(errs...)
}
