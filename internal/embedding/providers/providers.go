// Package providers wires every built-in embedding provider into a registry.
package providers

import (
	"github.com/yildizm/docrag/internal/embedding"
	"github.com/yildizm/docrag/internal/embedding/providers/local"
	"github.com/yildizm/docrag/internal/embedding/providers/ollama"
	"github.com/yildizm/docrag/internal/embedding/providers/openai"
)

// NewRegistry returns a registry with the local, ollama and openai providers registered
func NewRegistry() (embedding.Registry, error) {
	registry := embedding.NewRegistry()
	for _, register := range []func(embedding.Registry) error{
		local.Register,
		ollama.Register,
		openai.Register,
	} {
		if err := register(registry); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
