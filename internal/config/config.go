// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/parley-im/parley/internal/constants"
)

// Config is the root configuration structure.
type Config struct {
	Client    ClientConfig    `toml:"client"`
	Panel     PanelConfig     `toml:"panel"`
	Assistant AssistantConfig `toml:"assistant"`
}

// ClientConfig holds general chat client settings.
type ClientConfig struct {
	DisplayName string `toml:"display_name"`
	UserID      string `toml:"user_id"`
}

// PanelConfig holds right-panel settings.
type PanelConfig struct {
	Width        int  `toml:"width"`
	OpenOnLaunch bool `toml:"open_on_launch"`
}

// AssistantConfig holds the optional in-room assistant settings.
type AssistantConfig struct {
	Endpoint    string  `toml:"endpoint"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			DisplayName: "parley",
			UserID:      "@local:parley",
		},
		Panel: PanelConfig{
			Width:        constants.PanelDefaultWidth,
			OpenOnLaunch: false,
		},
		Assistant: AssistantConfig{
			Endpoint:    "",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file if it exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PARLEY_DISPLAY_NAME"); v != "" {
		cfg.Client.DisplayName = v
	}

	if v := os.Getenv("PARLEY_USER_ID"); v != "" {
		cfg.Client.UserID = v
	}

	if v := os.Getenv("PARLEY_PANEL_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Panel.Width = n
		}
	}

	if v := os.Getenv("PARLEY_PANEL_OPEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Panel.OpenOnLaunch = b
		}
	}

	if v := os.Getenv("PARLEY_ASSISTANT_ENDPOINT"); v != "" {
		cfg.Assistant.Endpoint = v
	}

	if v := os.Getenv("PARLEY_ASSISTANT_MODEL"); v != "" {
		cfg.Assistant.Model = v
	}

	if v := os.Getenv("PARLEY_ASSISTANT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Assistant.Temperature = f
		}
	}
}

// DataDir returns the path to the parley data directory (~/.parley).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".parley"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
