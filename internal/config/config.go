// Package config provides configuration loading and validation for the
// Oracle service. Configuration comes from defaults, an optional YAML file,
// and ORACLE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components of the
// Oracle service: logging, HTTP server, database, the query engine, the
// optional Gemini integration, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// DatabaseConfig identifies the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// OracleConfig tunes the query engine.
type OracleConfig struct {
	// FetchTimeout bounds each of the concurrent context fetches
	// individually; one slow source cannot stall the others.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"min=100ms,max=1m"`
}

// GeminiConfig configures the optional generative model. An empty APIKey
// means the generative layer is absent, which is a supported configuration;
// meeting prep then always uses the deterministic fallback.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	ModelName         string        `mapstructure:"model_name"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	MaxOutputTokens   int32         `mapstructure:"max_output_tokens"   validate:"min=256,max=8192"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s,max=5m"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"min=0,max=5"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// Enabled reports whether a generative model is configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// AuthConfig maps bearer tokens to caller user IDs. Authentication proper
// lives outside this service; this is the minimal contract it hands us.
type AuthConfig struct {
	Tokens map[string]int64 `mapstructure:"tokens"`
}

// TaskConfig controls a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig holds the scheduled task table, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// LoadConfig reads configuration from the given path (missing file is
// allowed), layers ORACLE_* environment variables on top, and validates the
// result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isFileMissing(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		// Missing config file is fine; defaults plus env vars apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func isFileMissing(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.path", "oracle.db")

	v.SetDefault("oracle.fetch_timeout", 3*time.Second)

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.4)
	v.SetDefault("gemini.max_output_tokens", 2048)
	v.SetDefault("gemini.timeout", 30*time.Second)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 2)

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"analytics_snapshot": {Enabled: true, Schedule: "0 0 5 * * *"},
	})
}
