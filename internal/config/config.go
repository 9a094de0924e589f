package config

import (
	"os"
	"strconv"

	"causalnotes/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	Paths      PathConfig
	Database   DatabaseConfig
	Server     ServerConfig
	LogLevel   string
}

// SimulationConfig holds defaults for scenario runs
type SimulationConfig struct {
	Seed        int64
	SampleSize  int
	Alpha       float64
	MaxParallel int
}

// PathConfig holds file system paths
type PathConfig struct {
	OutputDir   string
	ScenarioDir string
	EnergyFile  string
}

// DatabaseConfig holds the optional run-ledger connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether runs should be written to PostgreSQL.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// ServerConfig holds preview server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	seed, err := getEnvInt64("SEED", 42)
	if err != nil {
		return nil, err
	}
	sampleSize, err := getEnvInt("SAMPLE_SIZE", 500)
	if err != nil {
		return nil, err
	}
	maxParallel, err := getEnvInt("MAX_PARALLEL", 4)
	if err != nil {
		return nil, err
	}
	alpha, err := getEnvFloat("ALPHA", 0.05)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Simulation: SimulationConfig{
			Seed:        seed,
			SampleSize:  sampleSize,
			Alpha:       alpha,
			MaxParallel: maxParallel,
		},
		Paths: PathConfig{
			OutputDir:   getEnvOrDefault("OUTPUT_DIR", "./out"),
			ScenarioDir: getEnvOrDefault("SCENARIO_DIR", ""),
			EnergyFile:  getEnvOrDefault("ENERGY_FILE", ""),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Simulation.SampleSize < 2 {
		return errors.ConfigInvalid("SAMPLE_SIZE must be at least 2")
	}
	if config.Simulation.MaxParallel < 1 {
		return errors.ConfigInvalid("MAX_PARALLEL must be at least 1")
	}
	if config.Simulation.Alpha <= 0 || config.Simulation.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
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

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return intValue, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a number")
	}
	return floatValue, nil
}
