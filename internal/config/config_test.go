package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Provider:          "gemini",
		ModelName:         "googleai/gemini-2.5-flash",
		EmbedderModel:     "gemini-embedding-001",
		EmbedderDimension: 384,
		GeminiAPIKey:      "test-key",
		MinSimilarity:     0.20,
		ImageEndpoint:     "https://image.pollinations.ai",
		ServerAddr:        ":8080",
		PostgresHost:      "localhost",
		PostgresPort:      5432,
		PostgresUser:      "sabi",
		PostgresDBName:    "sabi",
		PostgresSSLMode:   "disable",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "zero threshold is valid",
			mutate: func(c *Config) { c.MinSimilarity = 0 },
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "anthropic" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "  " },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidEmbedderModel,
		},
		{
			name:    "non-positive dimension",
			mutate:  func(c *Config) { c.EmbedderDimension = 0 },
			wantErr: ErrInvalidEmbedderDimension,
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.MinSimilarity = -0.1 },
			wantErr: ErrInvalidMinSimilarity,
		},
		{
			name:    "threshold of one",
			mutate:  func(c *Config) { c.MinSimilarity = 1.0 },
			wantErr: ErrInvalidMinSimilarity,
		},
		{
			name:    "image endpoint without scheme",
			mutate:  func(c *Config) { c.ImageEndpoint = "image.pollinations.ai" },
			wantErr: ErrInvalidImageEndpoint,
		},
		{
			name:    "missing gemini key",
			mutate:  func(c *Config) { c.GeminiAPIKey = "" },
			wantErr: ErrMissingAPIKey,
		},
		{
			name: "missing openai key",
			mutate: func(c *Config) {
				c.Provider = "openai"
				c.OpenAIAPIKey = ""
			},
			wantErr: ErrMissingAPIKey,
		},
		{
			name: "openai provider with key",
			mutate: func(c *Config) {
				c.Provider = "openai"
				c.OpenAIAPIKey = "test-key"
			},
		},
		{
			name:    "empty postgres host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "postgres port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "empty postgres dbname",
			mutate:  func(c *Config) { c.PostgresDBName = "" },
			wantErr: ErrInvalidPostgresDBName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	if !errors.Is(cfg.Validate(), ErrConfigNil) {
		t.Error("nil config did not return ErrConfigNil")
	}
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "s3cret pass"

	dsn := cfg.PostgresConnectionString()

	for _, part := range []string{"host=localhost", "port=5432", "user=sabi", "dbname=sabi", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN missing %q: %s", part, dsn)
		}
	}
	if !strings.Contains(dsn, "password='s3cret pass'") {
		t.Errorf("password with space not quoted: %s", dsn)
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "p@ss/word"

	u := cfg.PostgresURL()

	if !strings.HasPrefix(u, "postgres://") {
		t.Errorf("URL scheme: %s", u)
	}
	if strings.Contains(u, "p@ss/word") {
		t.Errorf("password not escaped in URL: %s", u)
	}
}
