// Package cli holds the startup steps shared by cmd/kassenbuch and
// cmd/audit-purge.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"kassenbuch/internal/config"
	"kassenbuch/internal/log"
	"kassenbuch/internal/storage"
)

// SetupLogger builds the root logger and installs it as the process
// default so package level slog calls share the handler.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.Config{Component: component})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. Missing files are
// fine; production configures through real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits the process if
// it does not validate.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitRepository opens the SQLite store and runs migrations, exiting
// the process on failure.
func InitRepository(logger *log.Logger, dbPath string) *storage.Repository {
	repo, err := storage.NewRepository(dbPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
