package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30, cfg.Analysis.VolatilityWindow)
	assert.Equal(t, "pearson", cfg.Analysis.CorrelationMethod)
	assert.Equal(t, 252, cfg.Analysis.PeriodsPerYear)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Fetch.BaseURL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("MP_SERVER_PORT", "9090")
	t.Setenv("MP_ANALYSIS_VOLATILITY_WINDOW", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Analysis.VolatilityWindow)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9999\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	t.Setenv("MP_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Fields absent from the file keep their env/default values.
	assert.Equal(t, 30, cfg.Analysis.VolatilityWindow)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9999\nanalysis:\n  volatility_window: 45\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	t.Setenv("MP_CONFIG_FILE", path)
	t.Setenv("MP_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	// Explicit env beats the file; the file beats the default.
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 45, cfg.Analysis.VolatilityWindow)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad volatility window",
			mutate:  func(c *Config) { c.Analysis.VolatilityWindow = 0 },
			wantErr: "volatility window",
		},
		{
			name:    "bad concurrency",
			mutate:  func(c *Config) { c.Fetch.Concurrency = 0 },
			wantErr: "fetch concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Server:   ServerConfig{Port: 8080},
				Logging:  LoggingConfig{Level: "info"},
				Fetch:    FetchConfig{Concurrency: 4},
				Analysis: AnalysisConfig{VolatilityWindow: 30, PeriodsPerYear: 252},
			}
			tt.mutate(&cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
