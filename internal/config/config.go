package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-backed configuration. Flag overrides are applied by the
// CLI after Load.
type Config struct {
	Workspace struct {
		// BaseDir is the directory directive paths resolve against.
		BaseDir string `yaml:"base_dir"`
	} `yaml:"workspace"`

	Log struct {
		Path        string `yaml:"path"` // empty disables logging
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Apply struct {
		DryRun bool `yaml:"dry_run"`
	} `yaml:"apply"`

	UI struct {
		TUI  bool `yaml:"tui"`
		JSON bool `yaml:"json"`
	} `yaml:"ui"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Workspace.BaseDir = "."
	return cfg
}

// Load reads a config file. A missing file at the default location is not an
// error; the caller passes strict=true when the user named the file
// explicitly.
func Load(path string, strict bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !strict {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Workspace.BaseDir == "" {
		cfg.Workspace.BaseDir = "."
	}
	absBase, err := filepath.Abs(cfg.Workspace.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	cfg.Workspace.BaseDir = absBase

	return cfg, nil
}
