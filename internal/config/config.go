// Package config provides configuration for the API server: defaults,
// an optional YAML file overlay, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string        `yaml:"server_port"`
	ServerReadTimeout  time.Duration `yaml:"server_read_timeout"`
	ServerWriteTimeout time.Duration `yaml:"server_write_timeout"`

	// MongoDB settings
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	// NATS settings. An empty URL selects the in-process broker.
	NATSURL      string `yaml:"nats_url"`
	NATSCAFile   string `yaml:"nats_ca_file"`
	NATSCertFile string `yaml:"nats_cert_file"`
	NATSKeyFile  string `yaml:"nats_key_file"`
	NATSToken    string `yaml:"nats_token"`

	// Admin gate
	AdminPassword string `yaml:"admin_password"`

	// Completion provider settings
	LLMProvider       string `yaml:"llm_provider"`
	OpenRouterAPIKey  string `yaml:"openrouter_api_key"`
	OpenRouterBaseURL string `yaml:"openrouter_base_url"`
	AnthropicAPIKey   string `yaml:"anthropic_api_key"`
	DefaultModel      string `yaml:"default_model"`

	// Rate limiting
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Tracing
	TracingEndpoint string `yaml:"tracing_endpoint"`
	TracingEnabled  bool   `yaml:"tracing_enabled"`
}

func defaults() *Config {
	return &Config{
		ServerPort:         "8080",
		ServerReadTimeout:  30 * time.Second,
		ServerWriteTimeout: 120 * time.Second,

		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "wavechat",

		AdminPassword: "development-password-change-in-production",

		LLMProvider: "openrouter",

		RateLimitRequests: 60,
		RateLimitWindow:   time.Minute,

		LogLevel: "info",

		TracingEndpoint: "localhost:4318",
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg.ServerPort, "PORT")
	applyDurationEnv(&cfg.ServerReadTimeout, "SERVER_READ_TIMEOUT")
	applyDurationEnv(&cfg.ServerWriteTimeout, "SERVER_WRITE_TIMEOUT")

	applyEnv(&cfg.MongoURI, "MONGODB_URI")
	applyEnv(&cfg.MongoDatabase, "MONGODB_DATABASE")

	applyEnv(&cfg.NATSURL, "NATS_URL")
	applyEnv(&cfg.NATSCAFile, "NATS_CA_FILE")
	applyEnv(&cfg.NATSCertFile, "NATS_CERT_FILE")
	applyEnv(&cfg.NATSKeyFile, "NATS_KEY_FILE")
	applyEnv(&cfg.NATSToken, "NATS_TOKEN")

	applyEnv(&cfg.AdminPassword, "ADMIN_PASSWORD")

	applyEnv(&cfg.LLMProvider, "LLM_PROVIDER")
	applyEnv(&cfg.OpenRouterAPIKey, "OPENROUTER_API_KEY")
	applyEnv(&cfg.OpenRouterBaseURL, "OPENROUTER_BASE_URL")
	applyEnv(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	applyEnv(&cfg.DefaultModel, "DEFAULT_MODEL")

	applyIntEnv(&cfg.RateLimitRequests, "RATE_LIMIT_REQUESTS")
	applyDurationEnv(&cfg.RateLimitWindow, "RATE_LIMIT_WINDOW")

	applyEnv(&cfg.LogLevel, "LOG_LEVEL")

	applyEnv(&cfg.TracingEndpoint, "TRACING_ENDPOINT")
	applyBoolEnv(&cfg.TracingEnabled, "TRACING_ENABLED")

	return cfg, nil
}

func applyEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func applyIntEnv(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			*dst = i
		}
	}
}

func applyBoolEnv(dst *bool, key string) {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			*dst = b
		}
	}
}

func applyDurationEnv(dst *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			*dst = d
		}
	}
}
