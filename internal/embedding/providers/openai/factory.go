package openai

import (
	"github.com/yildizm/docrag/internal/embedding"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(config *embedding.ProviderConfig) (embedding.Embedder, error) {
	if config == nil {
		config = f.DefaultConfig()
	}

	return New(FromProviderConfig(config))
}

func (f *Factory) Type() string {
	return ProviderName
}

func (f *Factory) ValidateConfig(config *embedding.ProviderConfig) error {
	if config == nil {
		return embedding.NewConfigurationError(ProviderName, "config", "configuration is required")
	}

	return FromProviderConfig(config).Validate()
}

func (f *Factory) DefaultConfig() *embedding.ProviderConfig {
	return DefaultConfig().ToProviderConfig()
}

func Register(registry embedding.Registry) error {
	return registry.Register(ProviderName, NewFactory())
}
