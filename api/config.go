// ABOUTME: Backend server configuration and credential location management
// ABOUTME: Handles config storage at XDG paths and environment variable overrides
package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Config stores backend server location and account identity.
type Config struct {
	Server string `json:"server"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ConfigDir returns XDG-compliant directory for client configuration.
func ConfigDir() string {
	return filepath.Join(xdg.DataHome, "synchro")
}

// ConfigPath returns XDG-compliant path for storing client configuration.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// LoadConfig loads client configuration from the XDG data directory.
// Returns an empty config if the file does not exist. Environment variables
// override file values:
// - SYNCHRO_SERVER
// - SYNCHRO_USER_ID.
func LoadConfig() (*Config, error) {
	path := ConfigPath()

	cfg := &Config{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if server := os.Getenv("SYNCHRO_SERVER"); server != "" {
		cfg.Server = server
	}
	if userID := os.Getenv("SYNCHRO_USER_ID"); userID != "" {
		cfg.UserID = userID
	}
}

// SaveConfig saves client configuration to the XDG data directory.
func SaveConfig(cfg *Config) error {
	path := ConfigPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// IsConfigured checks whether a server has been set.
func (c *Config) IsConfigured() bool {
	return c.Server != ""
}
