package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := NewLoader(t.TempDir(), Development).defaults()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 0.20, cfg.Compat.PSUHeadroomMargin)
	assert.Equal(t, "memory", cfg.Database.Provider)
	assert.True(t, cfg.IsDevelopment())
}

func TestProductionRequiresSecret(t *testing.T) {
	cfg := NewLoader(t.TempDir(), Production).defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwtSecret")
}

func TestYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	base := `
server:
  port: 9090
database:
  provider: dynamodb
  tableName: pcforge-test
  region: eu-west-1
compat:
  psuHeadroomMargin: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o600))

	cfg, err := NewLoader(dir, Development).Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "dynamodb", cfg.Database.Provider)
	assert.Equal(t, "pcforge-test", cfg.Database.TableName)
	assert.Equal(t, 0.5, cfg.Compat.PSUHeadroomMargin)
	// Untouched values keep their defaults.
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
	assert.Contains(t, cfg.LoadedFrom, filepath.Join(dir, "base.yaml"))
}

func TestEnvironmentFileOverridesBase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server:\n  port: 9090\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "development.yaml"), []byte("server:\n  port: 7070\n"), 0o600))

	cfg, err := NewLoader(dir, Development).Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestEnvVariablesWinOverFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server:\n  port: 9090\n"), 0o600))

	t.Setenv("SERVER_PORT", "6060")
	t.Setenv("PSU_HEADROOM_MARGIN", "0.35")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := NewLoader(dir, Development).Load()
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, 0.35, cfg.Compat.PSUHeadroomMargin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"unknown provider", func(c *Config) { c.Database.Provider = "postgres" }},
		{"dynamodb without table", func(c *Config) { c.Database.Provider = "dynamodb"; c.Database.TableName = "" }},
		{"negative margin", func(c *Config) { c.Compat.PSUHeadroomMargin = -0.1 }},
		{"margin above one", func(c *Config) { c.Compat.PSUHeadroomMargin = 1.5 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Endpoint = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewLoader("", Development).defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server: [not a map"), 0o600))

	_, err := NewLoader(dir, Development).Load()
	assert.Error(t, err)
}
