package local

import (
	"github.com/yildizm/docrag/internal/embedding"
)

const (
	ProviderName      = "local"
	DefaultModel      = "hashing-v1"
	DefaultDimensions = 384
	MinWordLength     = 2
	MaxWordLength     = 50
)

// Config holds settings for the hashing embedder
type Config struct {
	Model      string
	Dimensions int
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Dimensions: DefaultDimensions,
	}
}

func (c *Config) Validate() error {
	if c.Model != DefaultModel {
		return embedding.NewConfigurationError(ProviderName, "model", "unknown model "+c.Model+" (only "+DefaultModel+" is available)")
	}
	if c.Dimensions < 8 {
		return embedding.NewConfigurationError(ProviderName, "dimensions", "dimensions must be at least 8")
	}
	return nil
}

func (c *Config) ToProviderConfig() *embedding.ProviderConfig {
	return &embedding.ProviderConfig{
		Name:       ProviderName,
		Model:      c.Model,
		Dimensions: c.Dimensions,
	}
}

func FromProviderConfig(config *embedding.ProviderConfig) *Config {
	c := DefaultConfig()
	if config == nil {
		return c
	}
	if config.Model != "" {
		c.Model = config.Model
	}
	if config.Dimensions != 0 {
		c.Dimensions = config.Dimensions
	}
	return c
}
