package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080/", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "offlinesync.db", c.DatabaseDSN)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.True(t, c.RefreshOnSync)
	assert.Equal(t, "slog", c.LogBackend)
	assert.False(t, c.S3Enabled())
	require.NoError(t, c.Validate())
}

func TestLoadConfig_LayersSources(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"database_dsn": "from-json.db",
		"workers":      2,
		"log_backend":  "zap",
	})
	t.Setenv("OFFLINE_WORKERS", "6")
	t.Setenv("OFFLINE_S3_ACCESS_KEY", "minio")
	os.Args = []string{"offlinesync", "-c", path, "-t", "5"}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	want := defaults()
	want.DatabaseDSN = "from-json.db"
	want.LogBackend = "zap"
	want.Workers = 6
	want.S3AccessKey = "minio"
	want.RequestTimeout = 5 * time.Second
	assert.Empty(t, cmp.Diff(want, cfg))
	assert.True(t, cfg.S3Enabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"offlinesync", "-w", "0", "-log", "syslog"}
	_, err := LoadConfig()
	require.ErrorContains(t, err, "workers must be positive")
	require.ErrorContains(t, err, `unknown log backend "syslog"`)

	os.Args = []string{"offlinesync", "-c", "/does/not/exist.json"}
	_, err = LoadConfig()
	require.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	c := defaults()
	c.DatabaseDSN = ""
	c.OnlineCheckInterval = 0
	c.RequestTimeout = -time.Second

	err := c.Validate()
	require.ErrorContains(t, err, "database dsn is empty")
	require.ErrorContains(t, err, "online check interval must be positive")
	require.ErrorContains(t, err, "request timeout must not be negative")
}
