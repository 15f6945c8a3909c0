package blob

import (
	"context"
	"fmt"

	fsstore "afriqar/internal/infra/blob/fs"
	memorystore "afriqar/internal/infra/blob/memory"
	infraS3 "afriqar/internal/infra/blob/s3"
)

// S3Config re-exports the infra S3 configuration.
type S3Config = infraS3.Config

// S3ConfigFromEnv overlays AFRIQAR_BLOB_S3_* variables onto base.
func S3ConfigFromEnv(base S3Config) S3Config { return infraS3.ConfigFromEnv(base) }

// Config selects and configures a driver.
type Config struct {
	Driver Driver   `yaml:"driver"`  // fs|s3|memory (default fs)
	FSRoot string   `yaml:"fs_root"` // directory root when driver=fs (default ./blobdata)
	S3     S3Config `yaml:"s3"`
}

// Open constructs the Store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return fsstore.New(cfg.FSRoot)
	case DriverS3:
		return infraS3.New(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// NewMemory returns an in-memory Store.
func NewMemory() Store { return memorystore.New() }

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests(0) }
