/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/ssargent/csvmap/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Newline names accepted in the codec section
const (
	NewlineLF       = "lf"
	NewlineCRLF     = "crlf"
	NewlinePlatform = "platform"
)

// Config represents the csvmap configuration
type Config struct {
	DataDir  string              `yaml:"data_dir"`
	Port     int                 `yaml:"port"`
	Bind     string              `yaml:"bind"`
	Codec    Codec               `yaml:"codec"`
	Security Security            `yaml:"security"`
	Logging  Logging             `yaml:"logging"`
	Schemas  []schema.Definition `yaml:"schemas,omitempty"`
}

// Codec contains the text table settings
type Codec struct {
	Separator string `yaml:"separator"`
	Newline   string `yaml:"newline"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Codec: Codec{
			Separator: codec.DefaultSeparator,
			Newline:   NewlinePlatform,
		},
		Security: Security{
			APIKey: "auto",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the codec settings and the schema definitions
func (c *Config) Validate() error {
	if c.Codec.Separator == "" {
		return errors.New("codec.separator must not be empty")
	}
	if strings.ContainsAny(c.Codec.Separator, "\r\n") {
		return errors.New("codec.separator must not contain a line break")
	}
	if _, err := NewlineString(c.Codec.Newline); err != nil {
		return err
	}
	if _, err := schema.NewRegistry(c.Schemas...); err != nil {
		return fmt.Errorf("invalid schemas: %w", err)
	}
	return nil
}

// NewlineString resolves a newline name to the line terminator it stands
// for. An empty name means the platform newline.
func NewlineString(name string) (string, error) {
	switch strings.ToLower(name) {
	case NewlineLF:
		return "\n", nil
	case NewlineCRLF:
		return "\r\n", nil
	case NewlinePlatform, "":
		return codec.PlatformNewline, nil
	default:
		return "", fmt.Errorf("codec.newline: unknown newline %q (want %s, %s or %s)", name, NewlineLF, NewlineCRLF, NewlinePlatform)
	}
}

// CodecOptions returns the codec options described by the codec section
func (c *Config) CodecOptions() ([]codec.Option, error) {
	newline, err := NewlineString(c.Codec.Newline)
	if err != nil {
		return nil, err
	}
	return []codec.Option{codec.WithSeparator(c.Codec.Separator), codec.WithNewline(newline)}, nil
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

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
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
// saves it to configPath
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./csvmap.yaml"
	}

	// For Linux/macOS, use ~/.config/csvmap/config.yaml
	configDir := filepath.Join(homeDir, ".config", "csvmap")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
