package ollama

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/docrag/internal/embedding"
)

const (
	ProviderName     = "ollama"
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "all-minilm"
	DefaultBatchSize = 32
	DefaultTimeout   = 60 * time.Second
)

// Config holds Ollama-specific configuration
type Config struct {
	// BaseURL is the Ollama server address; the OpenAI-compatible API lives under /v1
	BaseURL string `json:"base_url"`

	// Model is the embedding model pulled into Ollama
	Model string `json:"model"`

	// BatchSize bounds the number of texts per embeddings request
	BatchSize int `json:"batch_size"`

	// Timeout for HTTP requests
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a default Ollama configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Model:     DefaultModel,
		BatchSize: DefaultBatchSize,
		Timeout:   DefaultTimeout,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
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

// APIBase returns the OpenAI-compatible endpoint of the server
func (c *Config) APIBase() string {
	return trimSlash(c.BaseURL) + "/v1"
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func (c *Config) ToProviderConfig() *embedding.ProviderConfig {
	return &embedding.ProviderConfig{
		Name:      ProviderName,
		Model:     c.Model,
		Endpoint:  c.BaseURL,
		BatchSize: c.BatchSize,
		Timeout:   c.Timeout,
	}
}

func FromProviderConfig(config *embedding.ProviderConfig) *Config {
	c := DefaultConfig()
	if config == nil {
		return c
	}
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
