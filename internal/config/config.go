// Package config reads and writes the client configuration JSON under the
// listd dotdir. Writes are atomic (temp file + rename). Server URL and API
// key can be overridden from the environment for scripting.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/listd/listd/internal/models"
)

const configFile = "config.json"

// Env overrides applied on Load.
const (
	EnvHome      = "LISTD_HOME"
	EnvServerURL = "LISTD_SERVER_URL"
	EnvAPIKey    = "LISTD_API_KEY"
)

// Dir returns the listd dotdir, honoring LISTD_HOME.
func Dir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".listd"), nil
}

// Load reads the config from dir, applying env overrides. A missing file
// yields an empty config, not an error.
func Load(dir string) (*models.Config, error) {
	var cfg models.Config

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// first run
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	return &cfg, nil
}

// Save writes the config to dir using atomic write (temp file + rename).
func Save(dir string, cfg *models.Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}

	return os.Rename(tmpName, filepath.Join(dir, configFile))
}

// EnsureDeviceID assigns and persists a device id on first use.
func EnsureDeviceID(dir string, cfg *models.Config) error {
	if cfg.DeviceID != "" {
		return nil
	}
	cfg.DeviceID = uuid.NewString()
	return Save(dir, cfg)
}
