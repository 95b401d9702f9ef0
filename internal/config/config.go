// internal/config/config.go

// Package config loads the service configuration.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults
//  2. an optional YAML file (CONFIG_PATH, else ./config.yaml when present)
//  3. environment variables (PORT, DB_PATH, API_URL, ...)
//
// Only the environment variables listed in envMappings are read.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"recommendation-service/internal/logging"
	"recommendation-service/internal/recommend"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	ConfigPathEnvVar  = "CONFIG_PATH"
	DefaultConfigPath = "config.yaml"
	DefaultReviewsURL = "http://credentials-api.generalassemb.ly/4576f55f-c427-4cfc-a11c-5bfe914ca6c1"
)

type Config struct {
	Env       string           `koanf:"env" validate:"required"`
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	Reviews   ReviewsConfig    `koanf:"reviews"`
	Log       LogConfig        `koanf:"log"`
	Recommend recommend.Config `koanf:"recommend"`
}

type ServerConfig struct {
	Port     int `koanf:"port" validate:"min=1,max=65535"`
	GRPCPort int `koanf:"grpc_port" validate:"min=1,max=65535,nefield=Port"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	// Path is the SQLite file or the PostgreSQL DSN.
	Path string `koanf:"path" validate:"required"`
}

type ReviewsConfig struct {
	URL       string        `koanf:"url" validate:"required,url"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"gte=0"`
}

// LogConfig overrides the per-environment logging defaults when set.
type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:     3000,
			GRPCPort: 9093,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./db/database.db",
		},
		Reviews: ReviewsConfig{
			URL:       DefaultReviewsURL,
			Timeout:   5 * time.Second,
			RateLimit: 20,
		},
		Recommend: recommend.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the optional YAML file and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	// NODE_ENV and APP_ENV share a key; APP_ENV wins when both are set.
	if appEnv := os.Getenv("APP_ENV"); appEnv != "" {
		if err := k.Set("env", appEnv); err != nil {
			return nil, fmt.Errorf("failed to set env: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return logging.IsDevelopment(c.Env)
}

// Logging returns the logging configuration for the environment with the
// LOG_LEVEL and LOG_FORMAT overrides applied.
func (c *Config) Logging() logging.Config {
	lc := logging.ForEnvironment(c.Env)
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	return lc
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

var envMappings = map[string]string{
	"port":               "server.port",
	"grpc_port":          "server.grpc_port",
	"node_env":           "env",
	"db_driver":          "database.driver",
	"db_path":            "database.path",
	"api_url":            "reviews.url",
	"review_timeout":     "reviews.timeout",
	"review_rate_limit":  "reviews.rate_limit",
	"log_level":          "log.level",
	"log_format":         "log.format",
	"min_reviews":        "recommend.min_reviews",
	"min_average_rating": "recommend.min_average_rating",
	"window_years":       "recommend.window_years",
}

// envTransformFunc maps a known environment variable to its config path.
// Unknown variables map to "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
