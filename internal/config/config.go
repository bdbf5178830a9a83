// Package config provides configuration loading for the ETL builder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxUploadBytes caps the size of an uploaded file
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	// Path is the SQLite file holding source metadata and loaded tables
	Path string `yaml:"path"`
}

// StorageConfig configures where uploaded files are kept
type StorageConfig struct {
	SourcesDir string `yaml:"sources_dir"`
}

// LoggingConfig configures the application logger
type LoggingConfig struct {
	// Level is a logrus level name (debug, info, warn, error)
	Level string `yaml:"level"`
	// Format is "text" or "json"
	Format string `yaml:"format"`
	// File is an optional log file; empty disables file logging
	File string `yaml:"file"`
	// Console enables logging to stderr
	Console bool `yaml:"console"`
}

// Environment variables that override file values
const (
	EnvAddr       = "ETL_SERVER_ADDR"
	EnvDBPath     = "ETL_DB_PATH"
	EnvSourcesDir = "ETL_SOURCES_DIR"
	EnvLogLevel   = "ETL_LOG_LEVEL"
	EnvLogFile    = "ETL_LOG_FILE"
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  64 << 20,
		},
		Database: DatabaseConfig{
			Path: filepath.Join("data", "etl.db"),
		},
		Storage: StorageConfig{
			SourcesDir: filepath.Join("data", "sources"),
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			File:    "",
			Console: true,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.SourcesDir == "" {
		return fmt.Errorf("storage.sources_dir is required")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the file at path (defaults only when path is empty),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		var err error
		if config, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	config.ApplyEnv(os.LookupEnv)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides values from the environment
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvSourcesDir); ok && v != "" {
		c.Storage.SourcesDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Logging.File = v
	}
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
