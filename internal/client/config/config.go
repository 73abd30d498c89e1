package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/logging"
)

// Config holds runtime settings for the offlinesync client.
//
// Units: OnlineCheckInterval and RequestTimeout are time.Duration values.
type Config struct {
	// ServerEndpointAddr is the URL probed to decide whether we are online.
	ServerEndpointAddr  string        `env:"OFFLINE_SERVER_ENDPOINT"`
	OnlineCheckInterval time.Duration `env:"OFFLINE_ONLINE_CHECK_INTERVAL"`

	// DatabaseDSN is the SQLite file (or ":memory:") holding caches and queue.
	DatabaseDSN string `env:"OFFLINE_DATABASE_DSN"`

	Workers        int           `env:"OFFLINE_WORKERS"`
	RequestTimeout time.Duration `env:"OFFLINE_REQUEST_TIMEOUT"`
	RefreshOnSync  bool          `env:"OFFLINE_REFRESH_ON_SYNC"`

	LogBackend string `env:"OFFLINE_LOG_BACKEND"`
	Debug      bool   `env:"OFFLINE_DEBUG"`

	S3Region       string `env:"OFFLINE_S3_REGION"`
	S3BaseEndpoint string `env:"OFFLINE_S3_BASE_ENDPOINT"`
	S3AccessKey    string `env:"OFFLINE_S3_ACCESS_KEY"`
	S3SecretKey    string `env:"OFFLINE_S3_SECRET_KEY"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080/"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabaseDSN = "offlinesync.db"
	c.Workers = 4
	c.RequestTimeout = 30 * time.Second
	c.RefreshOnSync = true
	c.LogBackend = logging.BackendSlog
	c.S3Region = "us-east-1"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	switch c.LogBackend {
	case logging.BackendSlog, logging.BackendZap:
	default:
		errs = append(errs, fmt.Errorf("unknown log backend %q", c.LogBackend))
	}
	return errors.Join(errs...)
}

// S3Enabled reports whether s3:// URLs should be served.
func (c *Config) S3Enabled() bool {
	return c.S3BaseEndpoint != "" || c.S3AccessKey != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
