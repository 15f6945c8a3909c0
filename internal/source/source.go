// Package source implements the document fetch contract behind every
// catalog: GET <static path>/<document>. Documents can come from the bundled
// fixtures, a blob store, a static HTTP host or a SQL documents table.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"afriqar/internal/blob"
	"afriqar/internal/catalog"
	"afriqar/internal/fixtures"
)

// Drivers.
const (
	DriverEmbedded = "embedded"
	DriverBlob     = "blob"
	DriverHTTP     = "http"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Drivers lists every accepted driver name.
var Drivers = []string{DriverEmbedded, DriverBlob, DriverHTTP, DriverSQLite, DriverPostgres}

// ErrNotFound is wrapped when a document does not exist.
var ErrNotFound = errors.New("source: document not found")

// ErrReadOnly is returned by Seed on drivers that cannot be written.
var ErrReadOnly = errors.New("source: driver is read-only")

// Source is a catalog.Source that can be released.
type Source interface {
	catalog.Source
	Driver() string
	Close() error
}

// Seeder imports documents into a writable source.
type Seeder interface {
	Seed(ctx context.Context, docs map[string][]byte) error
}

// Config selects and configures the document source.
type Config struct {
	Driver      string `yaml:"driver"`
	BaseURL     string `yaml:"base_url"`     // http driver
	Prefix      string `yaml:"prefix"`       // blob driver key prefix
	SQLitePath  string `yaml:"sqlite_path"`  // sqlite driver
	PostgresDSN string `yaml:"postgres_dsn"` // postgres driver
	Timeout     string `yaml:"timeout"`      // http client timeout
}

// Validate checks the driver and its required parameters.
func (c Config) Validate() error {
	switch c.Driver {
	case "", DriverEmbedded, DriverBlob, DriverSQLite, DriverPostgres:
	case DriverHTTP:
		if c.BaseURL == "" {
			return fmt.Errorf("source.base_url required for the http driver")
		}
	default:
		return fmt.Errorf("invalid source driver: %s (valid: %v)", c.Driver, Drivers)
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid source.timeout: %q", c.Timeout)
		}
	}
	return nil
}

// Open constructs the configured source. store backs the blob driver and
// may be nil for the others.
func Open(ctx context.Context, cfg Config, store blob.Store) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "", DriverEmbedded:
		return NewEmbedded(fixtures.FS()), nil
	case DriverBlob:
		if store == nil {
			return nil, fmt.Errorf("blob source requires a blob store")
		}
		return NewBlob(store, cfg.Prefix), nil
	case DriverHTTP:
		timeout := 10 * time.Second
		if cfg.Timeout != "" {
			timeout, _ = time.ParseDuration(cfg.Timeout)
		}
		return NewHTTP(cfg.BaseURL, timeout), nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return OpenPostgres(ctx, cfg.PostgresDSN)
	}
}

// Fixtures returns every bundled fixture document keyed by name.
func Fixtures() (map[string][]byte, error) {
	return ReadDir(fixtures.FS())
}

// ReadDir returns every *.json document at the root of fsys keyed by name.
func ReadDir(fsys fs.FS) (map[string][]byte, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	docs := make(map[string][]byte, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		docs[name] = b
	}
	return docs, nil
}

// Seed imports docs into src when it is writable.
func Seed(ctx context.Context, src Source, docs map[string][]byte) error {
	s, ok := src.(Seeder)
	if !ok {
		return fmt.Errorf("%s: %w", src.Driver(), ErrReadOnly)
	}
	return s.Seed(ctx, docs)
}
