// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-teamvault.
//
// go-teamvault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads and validates the vault service configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains the local port server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// APIConfig contains the vault server connection settings
type APIConfig struct {
	BaseURL               string `yaml:"base_url"`
	TimeoutSeconds        int    `yaml:"timeout_seconds"`
	TLSInsecureSkipVerify bool   `yaml:"tls_insecure_skip_verify"`
}

// StorageConfig contains the durable storage settings
type StorageConfig struct {
	// LocalDir is the root directory of the local durable tier
	LocalDir string `yaml:"local_dir"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8571,
		},
		API: APIConfig{
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			LocalDir: filepath.Join(home, ".teamvault"),
		},
	}
}

// Load reads the configuration from the given YAML file, applying defaults
// for omitted fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range", c.Server.Port)
	}
	if c.Storage.LocalDir == "" {
		return fmt.Errorf("config: storage.local_dir is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = 30
	}
	return nil
}
