package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jseaddons/sleevecut/internal/model"
)

// AppConfig holds user-level preferences persisted between sessions.
type AppConfig struct {
	RecentSnapshots []string       `json:"recent_snapshots"`
	Settings        model.Settings `json:"settings"`
}

// DefaultAppConfig returns the starting configuration.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		RecentSnapshots: []string{},
		Settings:        model.DefaultSettings(),
	}
}

// DefaultConfigDir returns the default directory for application
// configuration. On all platforms this is ~/.sleevecut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".sleevecut")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAppConfig(), nil
		}
		return AppConfig{}, err
	}
	var config AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return AppConfig{}, err
	}
	// Ensure RecentSnapshots is never nil
	if config.RecentSnapshots == nil {
		config.RecentSnapshots = []string{}
	}
	return config, nil
}

// AddRecentSnapshot prepends a path to the recent list, dropping
// duplicates and keeping at most ten entries.
func (c *AppConfig) AddRecentSnapshot(path string) {
	out := []string{path}
	for _, p := range c.RecentSnapshots {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	c.RecentSnapshots = out
}
