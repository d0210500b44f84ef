// Package embedding defines the embedding model abstraction and the
// registry that creates providers by name.
package embedding

import (
	"context"
	"time"
)

// Embedder turns text into fixed-dimension vectors
type Embedder interface {
	// EmbedDocuments embeds a batch of texts, returning one vector per text in order
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single query string
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Info identifies the provider and model
	Info() ModelInfo

	// Close releases provider resources
	Close() error
}

// ModelInfo identifies an embedding model
type ModelInfo struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
	// Dimensions is zero when the provider only learns it from the first response
	Dimensions int `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// String renders the model as provider/model
func (m ModelInfo) String() string {
	return m.Provider + "/" + m.Model
}

// ProviderConfig holds provider-agnostic settings
type ProviderConfig struct {
	// Name is the registered provider name
	Name string `json:"name"`

	// Model is the embedding model identifier
	Model string `json:"model"`

	// Endpoint is the API base URL
	Endpoint string `json:"endpoint,omitempty"`

	// APIKey authenticates against hosted providers
	APIKey string `json:"-"`

	// Dimensions is the output size for providers that let the caller choose
	Dimensions int `json:"dimensions,omitempty"`

	// BatchSize bounds the number of texts per request
	BatchSize int `json:"batch_size,omitempty"`

	// Timeout for a single request
	Timeout time.Duration `json:"timeout,omitempty"`
}
