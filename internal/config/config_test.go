package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/trips.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, "London", cfg.Weather.DefaultLocation)
	assert.False(t, cfg.GitHub.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
port: 9090
db_path: /tmp/trips.db
jwt_secret: from-file-secret-value
weather:
  api_key: file-key
  cache_ttl: 5m
github:
  client_id: id
  client_secret: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/trips.db", cfg.DBPath)
	assert.Equal(t, "file-key", cfg.Weather.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, "London", cfg.Weather.DefaultLocation, "unset nested key keeps its default")
	assert.True(t, cfg.GitHub.Enabled())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
port: 9090
jwt_secret: from-file-secret-value
weather:
  api_key: file-key
`)
	t.Setenv("TRIP_PORT", "7070")
	t.Setenv("TRIP_JWT_SECRET", "from-env-secret-value")
	t.Setenv("TRIP_WEATHER_API_KEY", "env-key")
	t.Setenv("TRIP_WEATHER_CACHE_TTL", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "from-env-secret-value", cfg.JWTSecret)
	assert.Equal(t, "env-key", cfg.Weather.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Weather.CacheTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: 8080, DBPath: "data/trips.db", JWTSecret: "0123456789abcdef"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "jwt_secret"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "port"},
		{"no db path", func(c *Config) { c.DBPath = " " }, "db_path"},
		{"github without callback", func(c *Config) {
			c.GitHub = GitHubConfig{ClientID: "id", ClientSecret: "secret"}
		}, "callback_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
