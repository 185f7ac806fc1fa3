// Package config provides functionality for loading and accessing application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"norelock.dev/mongorepo/internal/utils"
)

// Config represents the application configuration
type Config struct {
	// Environment is the current running environment (development, staging, production)
	Environment string `mapstructure:"environment"`

	// Database configuration
	Database struct {
		// MongoDB configuration
		MongoDB struct {
			// URI is the MongoDB connection URI
			URI string `mapstructure:"uri" validate:"required,mongouri"`
			// Database is the MongoDB database name
			Database string `mapstructure:"database" validate:"required"`
			// Timeout bounds connecting and pinging the server
			Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
			// MaxPoolSize is the maximum number of connections in the connection pool
			MaxPoolSize uint64 `mapstructure:"max_pool_size"`
			// MinPoolSize is the minimum number of connections in the connection pool
			MinPoolSize uint64 `mapstructure:"min_pool_size"`
			// MaxIdleTime is the maximum idle time for a connection
			MaxIdleTime time.Duration `mapstructure:"max_idle_time"`
		} `mapstructure:"mongodb"`
	} `mapstructure:"database"`

	// Repository behaviour
	Repository struct {
		// OperationTimeout is applied to every repository call; zero disables it
		OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"min=0"`
		// LogFilters logs every flattened filter and update at debug level
		LogFilters bool `mapstructure:"log_filters"`
		// BatchSize is the cursor batch size used by Find and CreateCursor
		BatchSize int32 `mapstructure:"batch_size" validate:"min=0"`
	} `mapstructure:"repository"`

	// Metrics configuration
	Metrics struct {
		// Enabled registers the repository collectors
		Enabled bool `mapstructure:"enabled"`
		// Namespace prefixes every metric name
		Namespace string `mapstructure:"namespace"`
	} `mapstructure:"metrics"`

	// Logging configuration
	Logging struct {
		// Level is the logging level
		Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error fatal"`
		// Format is the logging format (json or console)
		Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
		// OutputPaths is the list of output paths for logs
		OutputPaths []string `mapstructure:"output_paths"`
		// ErrorOutputPaths is the list of output paths for error logs
		ErrorOutputPaths []string `mapstructure:"error_output_paths"`
	} `mapstructure:"logging"`
}

// LoadConfig loads the configuration from file and environment variables.
// It looks for a configuration file in the following locations:
// 1. Path specified in the CONFIG_FILE environment variable
// 2. ./configs directory
// 3. ../configs directory
// 4. /etc/mongorepo directory
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("app")
	v.SetConfigType("yaml")

	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("/etc/mongorepo")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// An explicit CONFIG_FILE is authoritative; overlays only apply to searched paths.
	if configFile == "" {
		v.SetConfigName(fmt.Sprintf("app.%s", env))
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to merge environment config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Environment = env

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default values for the configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongodb.database", "mongorepo")
	v.SetDefault("database.mongodb.timeout", "10s")
	v.SetDefault("database.mongodb.max_pool_size", 100)
	v.SetDefault("database.mongodb.min_pool_size", 10)
	v.SetDefault("database.mongodb.max_idle_time", "60s")

	v.SetDefault("repository.operation_timeout", "30s")
	v.SetDefault("repository.log_filters", false)
	v.SetDefault("repository.batch_size", 0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "mongorepo")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

// validateConfig runs the struct tag rules, then the cross-field checks.
func validateConfig(config *Config) error {
	if err := utils.Validate(config); err != nil {
		fields := utils.FormatValidationErrors(err)
		parts := make([]string, 0, len(fields))
		for field, msg := range fields {
			parts = append(parts, field+": "+msg)
		}
		return fmt.Errorf("%s", strings.Join(sortedParts(parts), "; "))
	}

	mongo := config.Database.MongoDB
	if mongo.MaxPoolSize > 0 && mongo.MinPoolSize > mongo.MaxPoolSize {
		return errors.New("MongoDB min_pool_size must not exceed max_pool_size")
	}

	return nil
}

// GetConfigString returns a formatted string with the current configuration
func GetConfigString(config *Config) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Environment: %s\n", config.Environment))
	sb.WriteString(fmt.Sprintf("MongoDB Database: %s\n", config.Database.MongoDB.Database))
	sb.WriteString(fmt.Sprintf("MongoDB Pool: %d-%d\n", config.Database.MongoDB.MinPoolSize, config.Database.MongoDB.MaxPoolSize))
	sb.WriteString(fmt.Sprintf("Operation Timeout: %s\n", config.Repository.OperationTimeout))
	sb.WriteString(fmt.Sprintf("Filter Logging: %t\n", config.Repository.LogFilters))
	sb.WriteString(fmt.Sprintf("Metrics: %t (%s)\n", config.Metrics.Enabled, config.Metrics.Namespace))
	sb.WriteString(fmt.Sprintf("Logging: %s/%s\n", config.Logging.Level, config.Logging.Format))

	return sb.String()
}

// WriteDefaultConfig writes a default app.yaml into dir unless one already exists.
func WriteDefaultConfig(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "app.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	const defaultConfig = `# mongorepo configuration

database:
  mongodb:
    uri: "mongodb://localhost:27017"
    database: "mongorepo"
    timeout: "10s"
    max_pool_size: 100
    min_pool_size: 10
    max_idle_time: "60s"

repository:
  operation_timeout: "30s"
  log_filters: false
  batch_size: 0

metrics:
  enabled: true
  namespace: "mongorepo"

logging:
  level: "info"
  format: "json"
  output_paths: ["stdout"]
  error_output_paths: ["stderr"]
`
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write default config file: %w", err)
	}
	return nil
}
