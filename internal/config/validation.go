package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for the serving and ingestion paths.
// It returns the first violation found, wrapped around a sentinel error.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("%w: %q (want \"gemini\" or \"openai\")", ErrInvalidProvider, c.Provider)
	}

	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidModelName)
	}

	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model is empty", ErrInvalidEmbedderModel)
	}

	if c.EmbedderDimension <= 0 {
		return fmt.Errorf("%w: dimension %d must be positive", ErrInvalidEmbedderDimension, c.EmbedderDimension)
	}

	// 0.0 is valid: it degrades to "always return the top match".
	if c.MinSimilarity < 0 || c.MinSimilarity >= 1 {
		return fmt.Errorf("%w: %v not in [0, 1)", ErrInvalidMinSimilarity, c.MinSimilarity)
	}

	if err := c.validateImageEndpoint(); err != nil {
		return err
	}

	switch c.Provider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: set SABI_GEMINI_API_KEY or GEMINI_API_KEY", ErrMissingAPIKey)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: set SABI_OPENAI_API_KEY or OPENAI_API_KEY", ErrMissingAPIKey)
		}
	}

	return c.validatePostgres()
}

func (c *Config) validateImageEndpoint() error {
	u, err := url.Parse(c.ImageEndpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImageEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q must be http(s)", ErrInvalidImageEndpoint, c.ImageEndpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidImageEndpoint, c.ImageEndpoint)
	}
	return nil
}

func (c *Config) validatePostgres() error {
	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d not in [1, 65535]", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}
	return nil
}
