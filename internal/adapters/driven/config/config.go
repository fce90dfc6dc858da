// Package config loads pipeline configuration from a TOML file with
// environment-variable overrides. Validation happens at load time; the
// process refuses to start on an invalid cipher key.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// cipherKeyHexLen is the required length of the hex-encoded cipher key
// (32 bytes, AES-256).
const cipherKeyHexLen = 64

// Config holds all pipeline configuration.
type Config struct {
	// SyncIntervalMinutes is how often the scheduler fires a sync pass.
	SyncIntervalMinutes int `toml:"sync_interval_minutes"`

	// WorkerConcurrency is the conversion queue worker count.
	WorkerConcurrency int `toml:"worker_concurrency"`

	// DataDir holds the registry database. Empty uses ~/.inkwell/data.
	DataDir string `toml:"data_dir"`

	// StorageRoot is where canonical converted output is written.
	StorageRoot string `toml:"storage_root"`

	// TempDir receives downloaded files before conversion.
	TempDir string `toml:"temp_dir"`

	// CipherKey is the hex-encoded 32-byte credential encryption key.
	CipherKey string `toml:"cipher_key"`

	// Graph holds default application credentials for Microsoft Graph
	// connectors (OneDrive, SharePoint).
	Graph GraphDefaults `toml:"graph"`

	// Drive holds default application credentials for Google Drive
	// connectors.
	Drive DriveDefaults `toml:"drive"`
}

// GraphDefaults are per-tenant Microsoft Graph application credentials.
type GraphDefaults struct {
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DriveDefaults are Google OAuth application credentials.
type DriveDefaults struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		SyncIntervalMinutes: 5,
		WorkerConcurrency:   3,
		StorageRoot:         "converted",
		TempDir:             filepath.Join(os.TempDir(), "inkwell"),
	}
}

// Load reads configuration from the TOML file at path (if it exists),
// applies INKWELL_* environment overrides and validates the result.
// An empty path defaults to ~/.inkwell/config.toml.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".inkwell", "config.toml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays INKWELL_* environment variables onto the config.
func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setInt("INKWELL_SYNC_INTERVAL_MINUTES", &cfg.SyncIntervalMinutes)
	setInt("INKWELL_WORKER_CONCURRENCY", &cfg.WorkerConcurrency)
	setString("INKWELL_DATA_DIR", &cfg.DataDir)
	setString("INKWELL_STORAGE_ROOT", &cfg.StorageRoot)
	setString("INKWELL_TEMP_DIR", &cfg.TempDir)
	setString("INKWELL_CIPHER_KEY", &cfg.CipherKey)
	setString("INKWELL_GRAPH_TENANT_ID", &cfg.Graph.TenantID)
	setString("INKWELL_GRAPH_CLIENT_ID", &cfg.Graph.ClientID)
	setString("INKWELL_GRAPH_CLIENT_SECRET", &cfg.Graph.ClientSecret)
	setString("INKWELL_DRIVE_CLIENT_ID", &cfg.Drive.ClientID)
	setString("INKWELL_DRIVE_CLIENT_SECRET", &cfg.Drive.ClientSecret)
}

// Validate checks the configuration, including the cipher key length.
func (c *Config) Validate() error {
	if c.SyncIntervalMinutes < 1 {
		return &domain.ValidationError{Field: "sync_interval_minutes", Reason: "must be at least 1"}
	}
	if c.WorkerConcurrency < 1 {
		return &domain.ValidationError{Field: "worker_concurrency", Reason: "must be at least 1"}
	}
	if c.CipherKey == "" {
		return &domain.ValidationError{Field: "cipher_key", Reason: "required"}
	}
	if len(c.CipherKey) != cipherKeyHexLen {
		return &domain.ValidationError{
			Field:  "cipher_key",
			Reason: fmt.Sprintf("must be %d hex characters, got %d", cipherKeyHexLen, len(c.CipherKey)),
		}
	}
	if _, err := hex.DecodeString(c.CipherKey); err != nil {
		return &domain.ValidationError{Field: "cipher_key", Reason: "not valid hex"}
	}
	return nil
}

// CipherKeyBytes decodes the validated cipher key.
func (c *Config) CipherKeyBytes() ([]byte, error) {
	return hex.DecodeString(c.CipherKey)
}
