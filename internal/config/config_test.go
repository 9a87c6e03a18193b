package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanlekkat/brio-lead-scraper/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "./data", cfg.Storage.Dir)
	assert.Equal(t, 100, cfg.Search.Limit)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":9090"
storage:
  backend: memory
search:
  login: someone
  delay: 5s
crawl:
  timeout: 15s
  verify_mx: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "someone", cfg.Search.Login)
	assert.Equal(t, "5s", cfg.Search.Delay.String())
	assert.Equal(t, "15s", cfg.Crawl.Timeout.String())
	assert.True(t, cfg.Crawl.VerifyMX)
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  backend: cassandra
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  backend: postgres
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.dsn")
}
