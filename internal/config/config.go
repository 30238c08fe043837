// Package config loads the shell's ambient startup configuration — the
// defaults that shape the top-level loop (history file, fallback search
// path) but never themselves become shell-visible variable state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of ~/.possh/config.yaml.
type Config struct {
	HistorySize int    `yaml:"history_size"`
	HistoryFile string `yaml:"history_file,omitempty"`
	FallbackPath string `yaml:"fallback_path"`
}

// Default returns the configuration a fresh install would run with.
func Default() *Config {
	return &Config{
		HistorySize:  1000,
		FallbackPath: "/bin:/usr/bin",
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".possh"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// Load reads the config file, falling back to Default for anything the
// file doesn't set, then applies environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if path := os.Getenv("POSSH_HISTFILE"); path != "" {
		cfg.HistoryFile = path
	}

	return cfg, nil
}

// Save writes cfg to ~/.possh/config.yaml, creating the directory if
// necessary.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// EffectiveHistoryPath resolves the history file path the shell should
// use: an explicit HistoryFile override, or HistoryPath's default.
func (c *Config) EffectiveHistoryPath() (string, error) {
	if c.HistoryFile != "" {
		return c.HistoryFile, nil
	}
	return HistoryPath()
}
