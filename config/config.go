package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// ExecutorConfig holds code execution configuration
type ExecutorConfig struct {
	Interpreter       string `mapstructure:"interpreter"`
	TimeoutDefaultSec int    `mapstructure:"timeout_default_sec"`
	TimeoutMinSec     int    `mapstructure:"timeout_min_sec"`
	TimeoutMaxSec     int    `mapstructure:"timeout_max_sec"`
	MaxOutputKB       int    `mapstructure:"max_output_kb"`
	HelpURL           string `mapstructure:"help_url"`
}

// WeatherConfig holds the forecast client configuration
type WeatherConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
	UserAgent  string `mapstructure:"user_agent"`
}

// MetricsConfig holds the Prometheus listener configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	// A .env file is optional; when present it seeds the process
	// environment before viper reads it.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("execbox")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("executor.interpreter", "python3")
	viper.SetDefault("executor.timeout_default_sec", 10)
	viper.SetDefault("executor.timeout_min_sec", 1)
	viper.SetDefault("executor.timeout_max_sec", 30)
	viper.SetDefault("executor.max_output_kb", 1024)
	viper.SetDefault("executor.help_url", "")
	viper.SetDefault("weather.base_url", "https://api.open-meteo.com")
	viper.SetDefault("weather.timeout_sec", 10)
	viper.SetDefault("weather.user_agent", "execbox/1.0")
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.addr", ":9090")
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Server.Transport == "http" && (c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535) {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}

	if c.Executor.Interpreter == "" {
		return fmt.Errorf("executor.interpreter must not be empty")
	}

	if c.Executor.TimeoutMinSec <= 0 {
		return fmt.Errorf("executor.timeout_min_sec must be positive, got: %d", c.Executor.TimeoutMinSec)
	}

	if c.Executor.TimeoutMaxSec < c.Executor.TimeoutMinSec {
		return fmt.Errorf("executor.timeout_max_sec must be >= executor.timeout_min_sec, got: %d", c.Executor.TimeoutMaxSec)
	}

	if c.Executor.TimeoutDefaultSec < c.Executor.TimeoutMinSec || c.Executor.TimeoutDefaultSec > c.Executor.TimeoutMaxSec {
		return fmt.Errorf("executor.timeout_default_sec must be between executor.timeout_min_sec and executor.timeout_max_sec, got: %d", c.Executor.TimeoutDefaultSec)
	}

	if c.Executor.MaxOutputKB <= 0 {
		return fmt.Errorf("executor.max_output_kb must be positive, got: %d", c.Executor.MaxOutputKB)
	}

	if c.Weather.BaseURL == "" {
		return fmt.Errorf("weather.base_url must not be empty")
	}

	if c.Weather.TimeoutSec <= 0 {
		return fmt.Errorf("weather.timeout_sec must be positive, got: %d", c.Weather.TimeoutSec)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must not be empty when metrics are enabled")
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// GetDefaultTimeout returns the default execution timeout as a duration
func (c *Config) GetDefaultTimeout() time.Duration {
	return time.Duration(c.Executor.TimeoutDefaultSec) * time.Second
}

// GetWeatherTimeout returns the forecast request timeout as a duration
func (c *Config) GetWeatherTimeout() time.Duration {
	return time.Duration(c.Weather.TimeoutSec) * time.Second
}

// GetMaxOutputBytes returns the combined output cap in bytes
func (c *Config) GetMaxOutputBytes() int64 {
	return int64(c.Executor.MaxOutputKB) * 1024
}
