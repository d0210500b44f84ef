// Package ollama embeds text through a local Ollama server.
package ollama

import (
	"context"
	"net/http"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/yildizm/docrag/internal/embedding"
)

// Ollama ignores the token but the client requires one
const placeholderToken = "ollama"

type Provider struct {
	config   *Config
	embedder embeddings.Embedder
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithToken(placeholderToken),
		openai.WithBaseURL(config.APIBase()),
		openai.WithEmbeddingModel(config.Model),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, embedding.NewProviderErrorWithCause(embedding.ErrTypeModelUnavailable, "failed to create client", ProviderName, err)
	}

	embedder, err := embeddings.NewEmbedder(llm,
		embeddings.WithBatchSize(config.BatchSize),
		embeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, embedding.NewProviderErrorWithCause(embedding.ErrTypeModelUnavailable, "failed to create embedder", ProviderName, err)
	}

	return &Provider{config: config, embedder: embedder}, nil
}

func (p *Provider) Info() embedding.ModelInfo {
	return embedding.ModelInfo{Provider: ProviderName, Model: p.config.Model}
}

func (p *Provider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, embedding.NewProviderErrorWithCause(embedding.ErrTypeNetwork, "embedding request failed", ProviderName, err)
	}
	if len(vectors) != len(texts) {
		return nil, embedding.NewProviderError(embedding.ErrTypeProvider, "server returned a different number of vectors than inputs", ProviderName)
	}

	for _, v := range vectors {
		embedding.Normalize(v)
	}
	return vectors, nil
}

func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, embedding.NewProviderErrorWithCause(embedding.ErrTypeNetwork, "embedding request failed", ProviderName, err)
	}
	return embedding.Normalize(vector), nil
}

func (p *Provider) Close() error {
	return nil
}
