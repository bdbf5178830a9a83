package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, filepath.Join("data", "etl.db"), cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, true},
		{"missing sources dir", func(c *Config) { c.Storage.SourcesDir = "" }, true},
		{"bad upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, true},
		{"json format", func(c *Config) { c.Logging.Format = "JSON" }, false},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl.yaml")
	content := `
server:
  addr: ":9090"
  shutdown_timeout: 3s
database:
  path: /tmp/x.db
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched sections keep their defaults
	assert.Equal(t, filepath.Join("data", "sources"), cfg.Storage.SourcesDir)
	assert.True(t, cfg.Logging.Console)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDBPath:   "/srv/etl.db",
		EnvLogLevel: "warn",
		EnvAddr:     "",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "/srv/etl.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr, "empty values do not override")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "etl.yaml")
	cfg := DefaultConfig()
	cfg.Storage.SourcesDir = "/var/lib/etl"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
