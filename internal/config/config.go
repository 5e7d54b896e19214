package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type (
	// StoreConfig selects and parameterizes the persistence backend
	StoreConfig struct {
		Backend  string
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	// Config holds configuration settings for the workbench service
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Persistence & Archiving
		Store         StoreConfig
		ArchiveURL    string
		ArchivePrefix string

		// Execution
		RequestTimeout    time.Duration
		StreamIdleTimeout time.Duration
		HandshakeTimeout  time.Duration
		ShutdownTimeout   time.Duration
	}
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 8080
	MaxTCPPort     = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultRedisPrefix   = "volley"
	MaxRedisDB           = 15

	DefaultRequestTimeout    = 30 * time.Second
	DefaultStreamIdleTimeout = 30 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second

	// MaxTimeout bounds every env-tunable duration to one day
	MaxTimeout = 24 * time.Hour
)

var (
	ErrInvalidAPIPort = errors.New("invalid API port")
	ErrInvalidBackend = errors.New("invalid store backend")
	ErrInvalidTimeout = errors.New("timeouts must be positive")
	ErrPrefixWithoutArchive = errors.New(
		"archive prefix requires an archive URL",
	)
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// API server, the in-memory store, and request execution
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:  DefaultAPIHost,
		APIPort:  DefaultAPIPort,
		LogLevel: "info",
		Store: StoreConfig{
			Backend:  BackendMemory,
			Addr:     DefaultRedisEndpoint,
			Password: "",
			DB:       DefaultRedisDB,
			Prefix:   DefaultRedisPrefix,
		},
		RequestTimeout:    DefaultRequestTimeout,
		StreamIdleTimeout: DefaultStreamIdleTimeout,
		HandshakeTimeout:  DefaultHandshakeTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Store.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Store.Password = password
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		c.Store.Prefix = prefix
	}
	if archiveURL := os.Getenv("ARCHIVE_URL"); archiveURL != "" {
		c.ArchiveURL = archiveURL
	}
	if archivePrefix := os.Getenv("ARCHIVE_PREFIX"); archivePrefix != "" {
		c.ArchivePrefix = archivePrefix
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("REDIS_DB", &c.Store.DB, -1, MaxRedisDB); err != nil {
		return err
	}

	if err := loadEnvDuration(
		"REQUEST_TIMEOUT", &c.RequestTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"STREAM_IDLE_TIMEOUT", &c.StreamIdleTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"WS_HANDSHAKE_TIMEOUT", &c.HandshakeTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout,
	); err != nil {
		return err
	}

	return nil
}

// Archiving reports whether completed runs should be written to a blob
// bucket
func (c *Config) Archiving() bool {
	return c.ArchiveURL != ""
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.Store.Backend != BackendMemory && c.Store.Backend != BackendRedis {
		return fmt.Errorf("%w: %s", ErrInvalidBackend, c.Store.Backend)
	}

	if c.RequestTimeout <= 0 || c.StreamIdleTimeout <= 0 ||
		c.HandshakeTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ArchivePrefix != "" && c.ArchiveURL == "" {
		return ErrPrefixWithoutArchive
	}

	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads key from the environment and parses it with Go
// duration syntax ("30s", "2m"). Values must be positive and no longer
// than MaxTimeout.
func loadEnvDuration(key string, dst *time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if v <= 0 || v > MaxTimeout {
		return fmt.Errorf("invalid %s: %s out of range (0, %s]",
			key, v, MaxTimeout)
	}
	*dst = v
	return nil
}
