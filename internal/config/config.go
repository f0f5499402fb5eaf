// Package config loads the two YAML files teamterm keeps in its config
// directory: client.yml with the integration credentials and config.yml
// with user preferences.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds user preferences from config.yml. Missing fields keep
// their defaults, a missing file is not an error.
type Config struct {
	// MessagesToLoad caps how much history is fetched when a room is
	// opened.
	MessagesToLoad int `yaml:"messages_to_load"`
	// InactiveDays is the age after which a space counts as inactive.
	InactiveDays int `yaml:"inactive_days"`
	// Debug lowers the log level to debug regardless of flags.
	Debug bool        `yaml:"debug"`
	Theme ThemeConfig `yaml:"theme"`
}

// ThemeConfig holds the pane colors, as lipgloss color strings (ANSI
// numbers or hex).
type ThemeConfig struct {
	BorderActive   string `yaml:"border_active"`
	BorderInactive string `yaml:"border_inactive"`
	Title          string `yaml:"title"`
	Unread         string `yaml:"unread"`
	SelectionFg    string `yaml:"selection_fg"`
	SelectionBg    string `yaml:"selection_bg"`
	Author         string `yaml:"author"`
	Timestamp      string `yaml:"timestamp"`
	Error          string `yaml:"error"`
}

// Default returns the built-in preferences.
func Default() *Config {
	return &Config{
		MessagesToLoad: 25,
		InactiveDays:   365,
		Theme: ThemeConfig{
			BorderActive:   "205",
			BorderInactive: "240",
			Title:          "205",
			Unread:         "214",
			SelectionFg:    "0",
			SelectionBg:    "205",
			Author:         "39",
			Timestamp:      "243",
			Error:          "9",
		},
	}
}

// Load reads config.yml from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(dir, "config.yml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.MessagesToLoad <= 0 {
		cfg.MessagesToLoad = Default().MessagesToLoad
	}
	if cfg.InactiveDays <= 0 {
		cfg.InactiveDays = Default().InactiveDays
	}
	return cfg, nil
}

// DefaultDir returns the teamterm config directory, honoring
// XDG_CONFIG_HOME.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve config directory")
	}
	return filepath.Join(base, "teamterm"), nil
}
