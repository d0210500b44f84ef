package ollama

import (
	"github.com/yildizm/docrag/internal/embedding"
)

// Factory creates Ollama embedders
type Factory struct{}

// NewFactory creates a new Ollama factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a new Ollama embedder
func (f *Factory) Create(config *embedding.ProviderConfig) (embedding.Embedder, error) {
	return New(FromProviderConfig(config))
}

// Type returns the provider type
func (f *Factory) Type() string {
	return ProviderName
}

// ValidateConfig validates Ollama configuration
func (f *Factory) ValidateConfig(config *embedding.ProviderConfig) error {
	if config == nil {
		return embedding.NewConfigurationError(ProviderName, "config", "configuration is required")
	}
	return FromProviderConfig(config).Validate()
}

// DefaultConfig returns the default Ollama configuration
func (f *Factory) DefaultConfig() *embedding.ProviderConfig {
	return DefaultConfig().ToProviderConfig()
}

// Register adds the Ollama factory to a registry
func Register(registry embedding.Registry) error {
	return registry.Register(ProviderName, NewFactory())
}
