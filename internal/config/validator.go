package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"norelock.dev/mongorepo/internal/utils"
)

const (
	minOperationTimeout = 100 * time.Millisecond
	maxOperationTimeout = 10 * time.Minute
	maxPoolSize         = 10000
)

// ValidateAndFixConfig validates the configuration and fixes any issues.
// Every adjustment is reported as a warning.
func ValidateAndFixConfig(config *Config) []string {
	var warnings []string

	mongo := &config.Database.MongoDB
	if !strings.HasPrefix(mongo.URI, "mongodb://") && !strings.HasPrefix(mongo.URI, "mongodb+srv://") {
		warnings = append(warnings, "MongoDB URI is invalid, must start with mongodb:// or mongodb+srv://")
	}

	if mongo.Timeout <= 0 {
		warnings = append(warnings, "MongoDB timeout is not set, setting to 10s")
		mongo.Timeout = 10 * time.Second
	}

	if mongo.MaxPoolSize > maxPoolSize {
		warnings = append(warnings, fmt.Sprintf("MongoDB max pool size is too large (%d), setting to %d", mongo.MaxPoolSize, maxPoolSize))
		mongo.MaxPoolSize = maxPoolSize
	}
	if mongo.MaxPoolSize > 0 && mongo.MinPoolSize > mongo.MaxPoolSize {
		warnings = append(warnings, fmt.Sprintf("MongoDB min pool size (%d) exceeds max pool size, setting to %d", mongo.MinPoolSize, mongo.MaxPoolSize))
		mongo.MinPoolSize = mongo.MaxPoolSize
	}

	repo := &config.Repository
	switch {
	case repo.OperationTimeout == 0:
		// disabled
	case repo.OperationTimeout < minOperationTimeout:
		warnings = append(warnings, fmt.Sprintf("Repository operation timeout is too short (%v), setting to %v", repo.OperationTimeout, minOperationTimeout))
		repo.OperationTimeout = minOperationTimeout
	case repo.OperationTimeout > maxOperationTimeout:
		warnings = append(warnings, fmt.Sprintf("Repository operation timeout is too long (%v), setting to %v", repo.OperationTimeout, maxOperationTimeout))
		repo.OperationTimeout = maxOperationTimeout
	}

	if repo.BatchSize < 0 {
		warnings = append(warnings, fmt.Sprintf("Repository batch size is negative (%d), using the server default", repo.BatchSize))
		repo.BatchSize = 0
	}

	if config.Metrics.Enabled && config.Metrics.Namespace == "" {
		warnings = append(warnings, "Metrics namespace is empty, setting to 'mongorepo'")
		config.Metrics.Namespace = "mongorepo"
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error", "fatal"}
	if !slices.Contains(validLevels, strings.ToLower(config.Logging.Level)) {
		warnings = append(warnings, fmt.Sprintf("Invalid logging level: %s, setting to 'info'", config.Logging.Level))
		config.Logging.Level = "info"
	}

	if f := strings.ToLower(config.Logging.Format); f != "json" && f != "console" {
		warnings = append(warnings, fmt.Sprintf("Invalid logging format: %s, setting to 'json'", config.Logging.Format))
		config.Logging.Format = "json"
	}

	for _, path := range config.Logging.OutputPaths {
		if path == "stdout" || path == "stderr" {
			continue
		}
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("Log output directory does not exist: %s", dir))
		}
	}

	return warnings
}

// GetLogLevel converts a string log level to a zap log level
func GetLogLevel(level string) zapcore.Level {
	return utils.ParseLevel(level)
}

// NewLogger builds the application logger described by the logging section.
func NewLogger(config *Config) *utils.Logger {
	return utils.NewLogger(utils.LoggerOptions{
		Development:      config.Environment == "development",
		Level:            GetLogLevel(config.Logging.Level),
		Format:           config.Logging.Format,
		OutputPaths:      config.Logging.OutputPaths,
		ErrorOutputPaths: config.Logging.ErrorOutputPaths,
	})
}

// CreateDefaultConfig creates the default configuration
func CreateDefaultConfig() *Config {
	config := &Config{}

	config.Environment = "development"

	config.Database.MongoDB.URI = "mongodb://localhost:27017"
	config.Database.MongoDB.Database = "mongorepo"
	config.Database.MongoDB.Timeout = 10 * time.Second
	config.Database.MongoDB.MaxPoolSize = 100
	config.Database.MongoDB.MinPoolSize = 10
	config.Database.MongoDB.MaxIdleTime = 60 * time.Second

	config.Repository.OperationTimeout = 30 * time.Second

	config.Metrics.Enabled = true
	config.Metrics.Namespace = "mongorepo"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.OutputPaths = []string{"stdout"}
	config.Logging.ErrorOutputPaths = []string{"stderr"}

	return config
}

func sortedParts(parts []string) []string {
	slices.Sort(parts)
	return parts
}
