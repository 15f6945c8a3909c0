// Package config loads the afriqar YAML configuration and its AFRIQAR_*
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"afriqar/internal/blob"
	"afriqar/internal/source"
)

// Config holds all afriqar configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Source     source.Config    `yaml:"source"`
	Blob       blob.Config      `yaml:"blob"`
	Simulation SimulationConfig `yaml:"simulation"`
	Screens    ScreensConfig    `yaml:"screens"`
	Exports    ExportsConfig    `yaml:"exports"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// SimulationConfig configures the timer-driven simulations.
type SimulationConfig struct {
	Policy     string `yaml:"policy"` // supersede, reject
	DNADelay   string `yaml:"dna_delay"`
	AudioDelay string `yaml:"audio_delay"`
	AckReset   string `yaml:"ack_reset"`
}

// ScreensConfig configures mounted screen sessions.
type ScreensConfig struct {
	TTL          string `yaml:"ttl"`
	ReapInterval string `yaml:"reap_interval"`
}

// ExportsConfig configures the export worker.
type ExportsConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// MetricsConfig selects the metrics recorder.
type MetricsConfig struct {
	Driver string `yaml:"driver"` // prometheus, expvar, none
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Accepted enumerations.
var (
	SimulationPolicies = []string{"supersede", "reject"}
	MetricsDrivers     = []string{"prometheus", "expvar", "none"}
	LogFormats         = []string{"json", "console"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "10s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Source: source.Config{
			Driver:  source.DriverEmbedded,
			Prefix:  "catalog/",
			Timeout: "10s",
		},
		Blob: blob.Config{
			Driver: blob.DriverFilesystem,
			FSRoot: "./blobdata",
		},
		Simulation: SimulationConfig{
			Policy:     "supersede",
			DNADelay:   "3s",
			AudioDelay: "2s",
			AckReset:   "5s",
		},
		Screens: ScreensConfig{
			TTL:          "30m",
			ReapInterval: "1m",
		},
		Exports: ExportsConfig{QueueSize: 16},
		Metrics: MetricsConfig{Driver: "prometheus"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides. A missing file yields the defaults; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Server.Addr, "AFRIQAR_ADDR")

	setString(&c.Source.Driver, "AFRIQAR_SOURCE_DRIVER")
	setString(&c.Source.BaseURL, "AFRIQAR_SOURCE_BASE_URL")
	setString(&c.Source.Prefix, "AFRIQAR_SOURCE_PREFIX")
	setString(&c.Source.SQLitePath, "AFRIQAR_SOURCE_SQLITE_PATH")
	setString(&c.Source.PostgresDSN, "AFRIQAR_SOURCE_POSTGRES_DSN")

	if v := os.Getenv("AFRIQAR_BLOB_DRIVER"); v != "" {
		c.Blob.Driver = blob.Driver(v)
	}
	setString(&c.Blob.FSRoot, "AFRIQAR_BLOB_FS_ROOT")
	c.Blob.S3 = blob.S3ConfigFromEnv(c.Blob.S3)

	setString(&c.Simulation.Policy, "AFRIQAR_SIMULATION_POLICY")
	setString(&c.Screens.TTL, "AFRIQAR_SCREEN_TTL")
	if v := os.Getenv("AFRIQAR_EXPORT_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Exports.QueueSize = n
		}
	}
	setString(&c.Metrics.Driver, "AFRIQAR_METRICS_DRIVER")
	setString(&c.Logging.Level, "AFRIQAR_LOG_LEVEL")
	setString(&c.Logging.Format, "AFRIQAR_LOG_FORMAT")
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr required")
	}
	durations := map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"source.timeout":          c.Source.Timeout,
		"simulation.dna_delay":    c.Simulation.DNADelay,
		"simulation.audio_delay":  c.Simulation.AudioDelay,
		"simulation.ack_reset":    c.Simulation.AckReset,
		"screens.ttl":             c.Screens.TTL,
		"screens.reap_interval":   c.Screens.ReapInterval,
	}
	for name, raw := range durations {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d < 0 {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	switch c.Blob.Driver {
	case "", blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("blob.s3.bucket required for the s3 driver")
		}
	default:
		return fmt.Errorf("invalid blob driver: %s", c.Blob.Driver)
	}
	if !oneOf(c.Simulation.Policy, SimulationPolicies) {
		return fmt.Errorf("invalid simulation policy: %s (valid: %v)", c.Simulation.Policy, SimulationPolicies)
	}
	if !oneOf(c.Metrics.Driver, MetricsDrivers) {
		return fmt.Errorf("invalid metrics driver: %s (valid: %v)", c.Metrics.Driver, MetricsDrivers)
	}
	if !oneOf(c.Logging.Format, LogFormats) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, LogFormats)
	}
	if c.Exports.QueueSize < 1 {
		return fmt.Errorf("exports.queue_size must be positive")
	}
	return nil
}

func oneOf(v string, valid []string) bool {
	for _, candidate := range valid {
		if v == candidate {
			return true
		}
	}
	return false
}

func duration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || raw == "" {
		return fallback
	}
	return d
}

// GetReadTimeout returns the server read timeout.
func (c *Config) GetReadTimeout() time.Duration { return duration(c.Server.ReadTimeout, 10*time.Second) }

// GetWriteTimeout returns the server write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 30*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown budget.
func (c *Config) GetShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 10*time.Second)
}

func (c *Config) GetDNADelay() time.Duration   { return duration(c.Simulation.DNADelay, 3*time.Second) }
func (c *Config) GetAudioDelay() time.Duration { return duration(c.Simulation.AudioDelay, 2*time.Second) }
func (c *Config) GetAckReset() time.Duration   { return duration(c.Simulation.AckReset, 5*time.Second) }

// GetScreenTTL returns the idle lifetime of a mounted screen.
func (c *Config) GetScreenTTL() time.Duration { return duration(c.Screens.TTL, 30*time.Minute) }

func (c *Config) GetReapInterval() time.Duration { return duration(c.Screens.ReapInterval, time.Minute) }
