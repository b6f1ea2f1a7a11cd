// Package config loads finsort's configuration: a .env file, environment
// variables and an optional config.yaml, merged through viper.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"fjacquet/finsort/internal/logging"
)

var once sync.Once

// LoadEnv loads variables from a .env file in the working directory or its
// parent, once per process. Variables already set in the environment win.
func LoadEnv(logger logging.Logger) {
	once.Do(func() {
		logger = logging.OrDefault(logger)

		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				logger.Debug("No .env file found, using environment variables")
				return
			}
		}

		if err := loadDotEnv(envFile); err != nil {
			logger.WithError(err).Warn("Error loading .env file", logging.F(logging.FieldFile, envFile))
			return
		}
		logger.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
	})
}

// GetEnv retrieves an environment variable with a fallback value if not set.
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
