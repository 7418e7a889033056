package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user settings. Values come from the YAML config file and are then
// overridden by command-line flags.
type Config struct {
	MaxLines    int    `yaml:"max_lines"`
	Ellipsis    string `yaml:"ellipsis"`
	ProjectsDir string `yaml:"projects_dir"`
	Width       int    `yaml:"width"` // 0 means the terminal width, or 80 when not a terminal
	LogFile     string `yaml:"log_file"`
	Debug       bool   `yaml:"debug"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		MaxLines:    defaultMaxLines,
		Ellipsis:    defaultEllipsis,
		ProjectsDir: DefaultProjectsDir(),
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/ccview/config.yaml, or "" when no config
// directory can be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ccview", "config.yaml")
}

// LoadConfig reads path over the defaults. A missing file is not an error unless
// required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxLines < 1 {
		return fmt.Errorf("max_lines must be at least 1, got %d", c.MaxLines)
	}
	if c.Width < 0 {
		return fmt.Errorf("width must not be negative, got %d", c.Width)
	}
	return nil
}

// TruncationPolicy returns the collapse policy the config describes.
func (c Config) TruncationPolicy() TruncationPolicy {
	return TruncationPolicy{MaxLines: c.MaxLines, Ellipsis: c.Ellipsis}
}
