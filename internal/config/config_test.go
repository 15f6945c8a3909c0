package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afriqar/internal/blob"
	"afriqar/internal/source"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, source.DriverEmbedded, cfg.Source.Driver)
	assert.Equal(t, blob.DriverFilesystem, cfg.Blob.Driver)
	assert.Equal(t, 3*time.Second, cfg.GetDNADelay())
	assert.Equal(t, 2*time.Second, cfg.GetAudioDelay())
	assert.Equal(t, 5*time.Second, cfg.GetAckReset())
	assert.Equal(t, 30*time.Minute, cfg.GetScreenTTL())
	assert.Equal(t, time.Minute, cfg.GetReapInterval())
}

func TestLoadMissingAndEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "supersede", cfg.Simulation.Policy)
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "afriqar.yaml")
	data := []byte(`
server:
  addr: ":9090"
source:
  driver: sqlite
  sqlite_path: /var/lib/afriqar/catalog.db
blob:
  driver: s3
  s3:
    bucket: afriqar-artifacts
    path_style: true
simulation:
  policy: reject
  dna_delay: 500ms
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, source.DriverSQLite, cfg.Source.Driver)
	assert.Equal(t, "/var/lib/afriqar/catalog.db", cfg.Source.SQLitePath)
	assert.Equal(t, blob.DriverS3, cfg.Blob.Driver)
	assert.Equal(t, "afriqar-artifacts", cfg.Blob.S3.Bucket)
	assert.True(t, cfg.Blob.S3.PathStyle)
	assert.Equal(t, "reject", cfg.Simulation.Policy)
	assert.Equal(t, 500*time.Millisecond, cfg.GetDNADelay())
	// untouched keys keep their defaults
	assert.Equal(t, 2*time.Second, cfg.GetAudioDelay())
	assert.Equal(t, 16, cfg.Exports.QueueSize)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("server and source", func(t *testing.T) {
		t.Setenv("AFRIQAR_ADDR", ":7000")
		t.Setenv("AFRIQAR_SOURCE_DRIVER", "http")
		t.Setenv("AFRIQAR_SOURCE_BASE_URL", "https://cdn.example.com/data")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, ":7000", cfg.Server.Addr)
		assert.Equal(t, source.DriverHTTP, cfg.Source.Driver)
		assert.Equal(t, "https://cdn.example.com/data", cfg.Source.BaseURL)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("blob s3", func(t *testing.T) {
		t.Setenv("AFRIQAR_BLOB_DRIVER", "s3")
		t.Setenv("AFRIQAR_BLOB_S3_BUCKET", "exports")
		t.Setenv("AFRIQAR_BLOB_S3_PATH_STYLE", "TRUE")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, blob.DriverS3, cfg.Blob.Driver)
		assert.Equal(t, "exports", cfg.Blob.S3.Bucket)
		assert.True(t, cfg.Blob.S3.PathStyle)
	})

	t.Run("queue size ignores garbage", func(t *testing.T) {
		t.Setenv("AFRIQAR_EXPORT_QUEUE_SIZE", "lots")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, 16, cfg.Exports.QueueSize)

		t.Setenv("AFRIQAR_EXPORT_QUEUE_SIZE", "4")
		cfg.applyEnvOverrides()
		assert.Equal(t, 4, cfg.Exports.QueueSize)
	})

	t.Run("logging and metrics", func(t *testing.T) {
		t.Setenv("AFRIQAR_LOG_LEVEL", "debug")
		t.Setenv("AFRIQAR_LOG_FORMAT", "console")
		t.Setenv("AFRIQAR_METRICS_DRIVER", "expvar")
		t.Setenv("AFRIQAR_SCREEN_TTL", "5m")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
		assert.Equal(t, "expvar", cfg.Metrics.Driver)
		assert.Equal(t, 5*time.Minute, cfg.GetScreenTTL())
	})
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"empty addr":         func(c *Config) { c.Server.Addr = " " },
		"bad duration":       func(c *Config) { c.Simulation.DNADelay = "soon" },
		"negative duration":  func(c *Config) { c.Screens.TTL = "-1m" },
		"source driver":      func(c *Config) { c.Source.Driver = "ftp" },
		"http without url":   func(c *Config) { c.Source.Driver = source.DriverHTTP },
		"s3 without bucket":  func(c *Config) { c.Blob.Driver = blob.DriverS3 },
		"blob driver":        func(c *Config) { c.Blob.Driver = "tape" },
		"simulation policy":  func(c *Config) { c.Simulation.Policy = "queue" },
		"metrics driver":     func(c *Config) { c.Metrics.Driver = "statsd" },
		"log format":         func(c *Config) { c.Logging.Format = "xml" },
		"non-positive queue": func(c *Config) { c.Exports.QueueSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "afriqar.yaml")
	cfg := DefaultConfig()
	cfg.Simulation.Policy = "reject"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGettersFallBack(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 10*time.Second, cfg.GetReadTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetWriteTimeout())
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())
	cfg.Server.ReadTimeout = "nonsense"
	assert.Equal(t, 10*time.Second, cfg.GetReadTimeout())
}
