// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (SABI_* prefix, DATABASE_URL override)
//  2. Config file (~/.sabi/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: provider, generation model, embedder model and dimension
//   - Storage: PostgreSQL connection (see storage.go)
//   - Retrieval: similarity threshold for context lookup
//   - Visual: image-generation endpoint base URL
//   - Server: HTTP listen address
//
// Error Handling:
//   - Sentinel errors for Go-idiomatic checking with errors.Is()
//   - Wrapped with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidEmbedderDimension indicates the embedder dimension does not
	// match the vector schema.
	ErrInvalidEmbedderDimension = errors.New("incompatible embedder dimension")

	// ErrInvalidMinSimilarity indicates the retrieval threshold is out of range.
	ErrInvalidMinSimilarity = errors.New("invalid minimum similarity")

	// ErrInvalidImageEndpoint indicates the image endpoint base URL is invalid.
	ErrInvalidImageEndpoint = errors.New("invalid image endpoint")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

const (
	// DefaultModelName is the provider-qualified generation model.
	DefaultModelName = "googleai/gemini-2.5-flash"

	// DefaultEmbedderModel is the default embedding model.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultEmbedderDimension matches the vector(384) column in the
	// cultural_knowledge schema; see db/migrations.
	DefaultEmbedderDimension = 384

	// DefaultMinSimilarity is the retrieval threshold for the specific tier.
	// 0.0 is a valid configuration and means "always take the top match".
	DefaultMinSimilarity = 0.20

	// DefaultImageEndpoint is the base URL of the image-generation service.
	// The service only constructs URLs against it, it never fetches them.
	DefaultImageEndpoint = "https://image.pollinations.ai"

	// DefaultServerAddr is the HTTP listen address for sabi serve.
	DefaultServerAddr = ":8080"
)

// Config holds the complete application configuration.
type Config struct {
	// AI provider settings
	Provider          string  `mapstructure:"provider"`           // "gemini" (default) or "openai"
	ModelName         string  `mapstructure:"model_name"`         // provider-qualified, e.g. "googleai/gemini-2.5-flash"
	EmbedderModel     string  `mapstructure:"embedder_model"`     // e.g. "gemini-embedding-001"
	EmbedderDimension int     `mapstructure:"embedder_dimension"` // must match vector column width
	GeminiAPIKey      string  `mapstructure:"gemini_api_key"`
	OpenAIAPIKey      string  `mapstructure:"openai_api_key"`

	// Retrieval settings
	MinSimilarity float32 `mapstructure:"min_similarity"`

	// Visual settings
	ImageEndpoint string `mapstructure:"image_endpoint"`

	// Server settings
	ServerAddr  string   `mapstructure:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"` // empty = allow all (public MVP mode)

	// PostgreSQL settings (see storage.go for DSN builders)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// Observability (optional OTLP trace export)
	OTLPEndpoint string `mapstructure:"otlp_endpoint"` // empty = tracing disabled
	ServiceName  string `mapstructure:"service_name"`

	// Logging
	LogJSON bool `mapstructure:"log_json"`
}

// Load reads configuration from file, environment, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".sabi"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("SABI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env + defaults are enough to run.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	// API keys also honor the vendors' conventional variable names.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// setDefaults registers default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "gemini")
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("embedder_dimension", DefaultEmbedderDimension)
	v.SetDefault("min_similarity", DefaultMinSimilarity)
	v.SetDefault("image_endpoint", DefaultImageEndpoint)
	v.SetDefault("server_addr", DefaultServerAddr)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "sabi")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_dbname", "sabi")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("service_name", "sabi")
	v.SetDefault("log_json", false)
}
