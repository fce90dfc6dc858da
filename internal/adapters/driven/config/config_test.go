package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

var validKey = strings.Repeat("ab", 32)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
sync_interval_minutes = 10
worker_concurrency = 5
storage_root = "/var/lib/inkwell"
cipher_key = "` + validKey + `"

[graph]
tenant_id = "contoso"
client_id = "app-id"
client_secret = "app-secret"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.SyncIntervalMinutes)
	assert.Equal(t, 5, cfg.WorkerConcurrency)
	assert.Equal(t, "/var/lib/inkwell", cfg.StorageRoot)
	assert.Equal(t, "contoso", cfg.Graph.TenantID)

	key, err := cfg.CipherKeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("INKWELL_CIPHER_KEY", validKey)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.SyncIntervalMinutes)
	assert.Equal(t, 3, cfg.WorkerConcurrency)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"sync_interval_minutes = 10\ncipher_key = \""+validKey+"\"\n"), 0600))

	t.Setenv("INKWELL_SYNC_INTERVAL_MINUTES", "2")
	t.Setenv("INKWELL_GRAPH_TENANT_ID", "fabrikam")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.SyncIntervalMinutes)
	assert.Equal(t, "fabrikam", cfg.Graph.TenantID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(c *Config)
		field string
	}{
		{
			name:  "missing cipher key",
			mod:   func(c *Config) { c.CipherKey = "" },
			field: "cipher_key",
		},
		{
			name:  "short cipher key",
			mod:   func(c *Config) { c.CipherKey = "abcd" },
			field: "cipher_key",
		},
		{
			name:  "non-hex cipher key",
			mod:   func(c *Config) { c.CipherKey = strings.Repeat("zz", 32) },
			field: "cipher_key",
		},
		{
			name:  "zero interval",
			mod:   func(c *Config) { c.SyncIntervalMinutes = 0 },
			field: "sync_interval_minutes",
		},
		{
			name:  "zero concurrency",
			mod:   func(c *Config) { c.WorkerConcurrency = 0 },
			field: "worker_concurrency",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.CipherKey = validKey
			tc.mod(cfg)

			err := cfg.Validate()
			var valErr *domain.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tc.field, valErr.Field)
		})
	}
}
