package cli

import (
	"context"
	"fmt"

	"github.com/yildizm/docrag/internal/config"
	"github.com/yildizm/docrag/internal/embedding"
	"github.com/yildizm/docrag/internal/embedding/providers"
)

// warmUpText is embedded once at startup to confirm the model answers
const warmUpText = "docrag"

// newEmbedder creates the configured embedding provider and embeds one short
// text with it, so an unreachable server or missing model fails at load time
// instead of halfway through a run.
func newEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	registry, err := providers.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to register embedding providers: %w", err)
	}

	embedder, err := registry.Create(&embedding.ProviderConfig{
		Name:       cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Endpoint:   cfg.Embedding.Endpoint,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
		Timeout:    cfg.Embedding.Timeout,
	})
	if err != nil {
		return nil, err
	}

	if err := warmUp(ctx, embedder); err != nil {
		_ = embedder.Close()
		return nil, err
	}
	return embedder, nil
}

func warmUp(ctx context.Context, embedder embedding.Embedder) error {
	vector, err := embedder.EmbedQuery(ctx, warmUpText)
	if err != nil {
		return fmt.Errorf("model %s is not available: %w", embedder.Info(), err)
	}
	if len(vector) == 0 {
		return fmt.Errorf("model %s returned an empty embedding", embedder.Info())
	}
	return nil
}
