package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.False(t, cfg.Policy.AllowAdminDeleteSales)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  metrics: true
storage:
  backend: redis
  redis:
    addr: "redis:6379"
    db: 2
policy:
  allow_admin_delete_sales: true
  allow_admin_edit_sales: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.True(t, cfg.Policy.AllowAdminDeleteSales)
	assert.True(t, cfg.Policy.AllowAdminEditSales)
	assert.False(t, cfg.Policy.AllowAdminEditInventory)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "storage:\n  backend: cassandra\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, ":: not yaml ::"))
	assert.Error(t, err)
}
