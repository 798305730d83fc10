package config

import (
	"os"
	"strconv"
	"strings"

	"corrlab/domain/sample"
	"corrlab/internal/errors"
	"corrlab/internal/explorer"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Explorer explorer.Config
	Chart    ChartConfig
	Seed     int64
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ChartConfig holds chart rendering settings
type ChartConfig struct {
	Width      int
	Height     int
	MaxRenders int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: *loadServerConfig(),
		Chart:  *loadChartConfig(),
		Seed:   getEnvInt64OrDefault("CORRLAB_SEED", 0),
	}

	explorerConfig, err := loadExplorerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load explorer configuration")
	}
	config.Explorer = *explorerConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadChartConfig() *ChartConfig {
	return &ChartConfig{
		Width:      getEnvIntOrDefault("CHART_WIDTH", 640),
		Height:     getEnvIntOrDefault("CHART_HEIGHT", 480),
		MaxRenders: getEnvIntOrDefault("CHART_MAX_RENDERS", 4),
	}
}

func loadExplorerConfig() (*explorer.Config, error) {
	defaults := explorer.DefaultConfig()

	baseline, err := sample.ParseBaselineMode(getEnvOrDefault("CORRLAB_BASELINE", defaults.BaselineMode.String()))
	if err != nil {
		return nil, errors.ConfigInvalid("CORRLAB_BASELINE must be mean or zero")
	}
	policy, err := explorer.ParseInputPolicy(getEnvOrDefault("CORRLAB_INPUT_POLICY", defaults.InputPolicy.String()))
	if err != nil {
		return nil, errors.ConfigInvalid("CORRLAB_INPUT_POLICY must be clamp or reject")
	}

	return &explorer.Config{
		DefaultCorrelation: getEnvFloatOrDefault("CORRLAB_DEFAULT_CORRELATION", defaults.DefaultCorrelation),
		InitialSampleSize:  getEnvIntOrDefault("CORRLAB_INITIAL_N", defaults.InitialSampleSize),
		MinSampleSize:      getEnvIntOrDefault("CORRLAB_MIN_N", defaults.MinSampleSize),
		MaxSampleSize:      getEnvIntOrDefault("CORRLAB_MAX_N", defaults.MaxSampleSize),
		RangeMin:           getEnvFloatOrDefault("CORRLAB_RANGE_MIN", defaults.RangeMin),
		RangeMax:           getEnvFloatOrDefault("CORRLAB_RANGE_MAX", defaults.RangeMax),
		BaselineMode:       baseline,
		InputPolicy:        policy,
	}, nil
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Server.Port) == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Chart.Width <= 0 || config.Chart.Height <= 0 {
		return errors.ConfigInvalid("chart dimensions must be positive")
	}
	if config.Chart.MaxRenders < 1 {
		return errors.ConfigInvalid("CHART_MAX_RENDERS must be at least 1")
	}
	if err := config.Explorer.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
