// Package openai embeds text with the OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"net/http"
	"sort"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yildizm/docrag/internal/embedding"
)

type Provider struct {
	config *Config
	client *goopenai.Client
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := goopenai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL
	clientConfig.OrgID = config.OrganizationID
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Provider{
		config: config,
		client: goopenai.NewClientWithConfig(clientConfig),
	}, nil
}

func (p *Provider) Info() embedding.ModelInfo {
	return embedding.ModelInfo{
		Provider:   ProviderName,
		Model:      p.config.Model,
		Dimensions: p.config.Dimensions,
	}
}

func (p *Provider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := p.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(p.config.Model),
		Input: texts,
	}
	if p.config.Dimensions > 0 {
		req.Dimensions = p.config.Dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, p.classify(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, embedding.NewProviderError(embedding.ErrTypeProvider, "API returned a different number of vectors than inputs", ProviderName)
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		v := make([]float32, len(d.Embedding))
		for j := range d.Embedding {
			v[j] = float32(d.Embedding[j])
		}
		vectors[i] = embedding.Normalize(v)
	}
	return vectors, nil
}

func (p *Provider) classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return embedding.NewProviderErrorWithCause(embedding.ErrTypeAuthentication, "authentication failed", ProviderName, err)
		case http.StatusNotFound:
			return embedding.NewProviderErrorWithCause(embedding.ErrTypeModelUnavailable, "model not available", ProviderName, err)
		}
		return embedding.NewProviderErrorWithCause(embedding.ErrTypeProvider, "API error", ProviderName, err)
	}
	return embedding.NewProviderErrorWithCause(embedding.ErrTypeNetwork, "request failed", ProviderName, err)
}
