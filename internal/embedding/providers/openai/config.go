package openai

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/docrag/internal/embedding"
)

const (
	ProviderName     = "openai"
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "text-embedding-3-small"
	DefaultBatchSize = 64
	DefaultTimeout   = 30 * time.Second
)

type Config struct {
	APIKey         string        `json:"api_key"`
	BaseURL        string        `json:"base_url"`
	Model          string        `json:"model"`
	Dimensions     int           `json:"dimensions,omitempty"`
	BatchSize      int           `json:"batch_size"`
	Timeout        time.Duration `json:"timeout"`
	OrganizationID string        `json:"organization_id,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Model:     DefaultModel,
		BatchSize: DefaultBatchSize,
		Timeout:   DefaultTimeout,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return embedding.NewConfigurationError(ProviderName, "api_key", "API key is required (set embedding.api_key or OPENAI_API_KEY)")
	}

	if c.BaseURL == "" {
		return embedding.NewConfigurationError(ProviderName, "base_url", "base URL is required")
	}

	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return embedding.NewConfigurationError(ProviderName, "base_url", fmt.Sprintf("invalid base URL: %v", err))
	}

	if c.Model == "" {
		return embedding.NewConfigurationError(ProviderName, "model", "model is required")
	}

	if c.BatchSize <= 0 {
		return embedding.NewConfigurationError(ProviderName, "batch_size", "batch size must be positive")
	}

	if c.Timeout <= 0 {
		return embedding.NewConfigurationError(ProviderName, "timeout", "timeout must be positive")
	}

	return nil
}

func (c *Config) ToProviderConfig() *embedding.ProviderConfig {
	return &embedding.ProviderConfig{
		Name:      ProviderName,
		Model:     c.Model,
		Endpoint:  c.BaseURL,
		APIKey:    c.APIKey,
		BatchSize: c.BatchSize,
		Timeout:   c.Timeout,
	}
}

func FromProviderConfig(config *embedding.ProviderConfig) *Config {
	c := DefaultConfig()
	if config == nil {
		return c
	}

	c.APIKey = config.APIKey
	if config.Endpoint != "" {
		c.BaseURL = config.Endpoint
	}
	if config.Model != "" {
		c.Model = config.Model
	}
	if config.BatchSize != 0 {
		c.BatchSize = config.BatchSize
	}
	if config.Timeout != 0 {
		c.Timeout = config.Timeout
	}

	return c
}
