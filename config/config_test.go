package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "http",
			HTTPPort:  8080,
		},
		Executor: ExecutorConfig{
			Interpreter:       "python3",
			TimeoutDefaultSec: 10,
			TimeoutMinSec:     1,
			TimeoutMaxSec:     30,
			MaxOutputKB:       1024,
		},
		Weather: WeatherConfig{
			BaseURL:    "https://api.open-meteo.com",
			TimeoutSec: 10,
			UserAgent:  "execbox/1.0",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := validConfig()

		err := cfg.validate()
		require.NoError(t, err)
	})

	t.Run("InvalidServerTransport", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "tcp" // Invalid transport

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server.transport")
	})

	t.Run("InvalidHTTPPort", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.HTTPPort = 0 // Invalid with http transport

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server.http_port")
	})

	t.Run("PortIgnoredForStdio", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "stdio"
		cfg.Server.HTTPPort = 0 // Not used by the stdio transport

		err := cfg.validate()
		require.NoError(t, err)
	})

	t.Run("EmptyInterpreter", func(t *testing.T) {
		cfg := validConfig()
		cfg.Executor.Interpreter = ""

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.interpreter")
	})

	t.Run("InvalidTimeoutMin", func(t *testing.T) {
		cfg := validConfig()
		cfg.Executor.TimeoutMinSec = 0 // Invalid: must be positive

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.timeout_min_sec must be positive")
	})

	t.Run("TimeoutMaxBelowMin", func(t *testing.T) {
		cfg := validConfig()
		cfg.Executor.TimeoutMinSec = 5
		cfg.Executor.TimeoutMaxSec = 4 // Invalid: below the minimum

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.timeout_max_sec")
	})

	t.Run("DefaultTimeoutOutsideWindow", func(t *testing.T) {
		cfg := validConfig()
		cfg.Executor.TimeoutDefaultSec = 60 // Invalid: above the maximum

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.timeout_default_sec")
	})

	t.Run("InvalidMaxOutput", func(t *testing.T) {
		cfg := validConfig()
		cfg.Executor.MaxOutputKB = 0 // Invalid: must be positive

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "executor.max_output_kb must be positive")
	})

	t.Run("EmptyWeatherBaseURL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Weather.BaseURL = ""

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weather.base_url")
	})

	t.Run("InvalidWeatherTimeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Weather.TimeoutSec = -1 // Invalid: must be positive

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weather.timeout_sec must be positive")
	})

	t.Run("EmptyMetricsAddrWhenEnabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = ""

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics.addr")
	})

	t.Run("InvalidLoggingMode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Mode = "invalid_mode" // Invalid mode

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging.mode")
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "invalid_level" // Invalid level

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging.level")
	})
}

// chdirTemp moves the test into an empty temp directory so New does not
// pick up a developer's config.yaml from the repo root.
func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return dir
}

func TestNewDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdirTemp(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "python3", cfg.Executor.Interpreter)
	assert.Equal(t, 10, cfg.Executor.TimeoutDefaultSec)
	assert.Equal(t, 1, cfg.Executor.TimeoutMinSec)
	assert.Equal(t, 30, cfg.Executor.TimeoutMaxSec)
	assert.Equal(t, 1024, cfg.Executor.MaxOutputKB)
	assert.Equal(t, "https://api.open-meteo.com", cfg.Weather.BaseURL)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "production", cfg.Logging.Mode)
}

func TestNewReadsConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := chdirTemp(t)

	raw, err := yaml.Marshal(map[string]any{
		"server": map[string]any{
			"transport": "http",
			"http_port": 9191,
		},
		"executor": map[string]any{
			"interpreter":     "python3.12",
			"timeout_max_sec": 20,
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), raw, 0o644))

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, 9191, cfg.Server.HTTPPort)
	assert.Equal(t, "python3.12", cfg.Executor.Interpreter)
	assert.Equal(t, 20, cfg.Executor.TimeoutMaxSec)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 10, cfg.Executor.TimeoutDefaultSec)
	assert.Equal(t, "https://api.open-meteo.com", cfg.Weather.BaseURL)
}

func TestNewEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdirTemp(t)

	t.Setenv("EXECBOX_EXECUTOR_INTERPRETER", "node")
	t.Setenv("EXECBOX_LOGGING_MODE", "development")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "node", cfg.Executor.Interpreter)
	assert.Equal(t, "development", cfg.Logging.Mode)
}

func TestNewRejectsInvalidFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := chdirTemp(t)

	raw, err := yaml.Marshal(map[string]any{
		"server": map[string]any{"transport": "tcp"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), raw, 0o644))

	_, err = New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation error")
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "10s", cfg.GetDefaultTimeout().String())
	assert.Equal(t, "10s", cfg.GetWeatherTimeout().String())
	assert.Equal(t, int64(1024*1024), cfg.GetMaxOutputBytes())
}
