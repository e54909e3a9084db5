/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/mimir/pkg/codec"
)

// Config represents the Mimir configuration
type Config struct {
	DataDir  string  `yaml:"data_dir"`
	DumpPath string  `yaml:"dump_path"`
	Port     int     `yaml:"port"`
	Bind     string  `yaml:"bind"`
	APIKey   string  `yaml:"api_key"`
	Table    Table   `yaml:"table"`
	Logging  Logging `yaml:"logging"`
}

// Table describes the embedding table served by this process
type Table struct {
	Namespace string `yaml:"namespace"`
	KeyKind   string `yaml:"key_kind"`
	ValueKind string `yaml:"value_kind"`
	RowWidth  int    `yaml:"row_width"`
	ReadOnly  bool   `yaml:"read_only"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		APIKey:  "auto",
		Table: Table{
			Namespace: "embeddings",
			KeyKind:   "int64",
			ValueKind: "float32",
			RowWidth:  64,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks that the table section names known element kinds and a
// usable row width.
func (c *Config) Validate() error {
	if _, err := codec.ParseKind(c.Table.KeyKind); err != nil {
		return fmt.Errorf("table.key_kind: %w", err)
	}
	if _, err := codec.ParseKind(c.Table.ValueKind); err != nil {
		return fmt.Errorf("table.value_kind: %w", err)
	}
	if c.Table.RowWidth < 1 {
		return fmt.Errorf("table.row_width must be at least 1, got %d", c.Table.RowWidth)
	}
	if c.Table.Namespace == "" {
		return fmt.Errorf("table.namespace must not be empty")
	}
	return nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and
// saves it if it doesn't exist
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./mimir.yaml"
	}

	// For Linux/macOS, use ~/.config/mimir/config.yaml
	configDir := filepath.Join(homeDir, ".config", "mimir")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
