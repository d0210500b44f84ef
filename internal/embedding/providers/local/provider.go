// Package local provides an offline embedder based on signed feature hashing.
package local

import (
	"context"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/yildizm/docrag/internal/embedding"
)

const bigramWeight = 0.5

// Provider hashes unigrams and bigrams into a fixed number of buckets.
// Identical texts always map to identical vectors.
type Provider struct {
	config *Config
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Provider{config: config}, nil
}

func (p *Provider) Info() embedding.ModelInfo {
	return embedding.ModelInfo{
		Provider:   ProviderName,
		Model:      p.config.Model,
		Dimensions: p.config.Dimensions,
	}
}

func (p *Provider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = p.embed(text)
	}
	return vectors, nil
}

func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.embed(text), nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) embed(text string) []float32 {
	vec := make([]float32, p.config.Dimensions)

	tokens := tokenize(text)
	for i, tok := range tokens {
		p.add(vec, tok, 1)
		if i > 0 {
			p.add(vec, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	// texts made only of stop words or symbols still get a stable direction
	if len(tokens) == 0 {
		p.add(vec, "\x00"+strings.ToLower(strings.TrimSpace(text)), 1)
	}

	return embedding.Normalize(vec)
}

func (p *Provider) add(vec []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(len(vec))
	if h>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
