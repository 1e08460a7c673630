// Package config stores user preferences for the FusionChat client as JSON
// under a .fusionchat directory (project-local when present, home-level
// otherwise).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// EnvServerURL overrides the configured backend address when set.
const EnvServerURL = "FUSIONCHAT_SERVER_URL"

// Config holds user preferences.
type Config struct {
	ServerURL string `json:"server_url"` // FusionChat backend base URL
	Theme     string `json:"theme"`      // "light" or "dark"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:8000",
		Theme:     "light",
	}
}

// Dir returns the directory where config and logs are stored.
func Dir() (string, error) {
	// Prefer a project-local .fusionchat directory if present or creatable.
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".fusionchat")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fusionchat"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk, falling back to defaults when the
// file is missing or unreadable. The server URL env override always wins.
func Load() (Config, error) {
	cfg, err := load()
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	return cfg, err
}

func load() (Config, error) {
	path, err := File()
	if err != nil {
		return DefaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the configuration to disk.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}
