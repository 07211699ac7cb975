// Package config loads application configuration from defaults, config
// files, the environment and an optional .env file.
package config

import (
	"os"
	"path/filepath"

	"fleetops/fleet-ledger/internal/logging"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file in the current or
// parent directory if one exists. Variables already set are not overridden.
// It returns the path that was loaded, or "" when none was found.
func LoadEnv(logger logging.Logger) string {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			logger.Debug("No .env file found, using environment variables")
			return ""
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.WithError(err).Warn("Error loading .env file",
			logging.Field{Key: logging.FieldFile, Value: envFile})
		return ""
	}
	logger.Debug("Loaded environment variables", logging.Field{Key: logging.FieldFile, Value: envFile})
	return envFile
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
