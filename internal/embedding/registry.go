package embedding

import (
	"sort"
	"sync"
)

// Factory creates embedders of one provider type
type Factory interface {
	// Create creates a new embedder with the given config
	Create(config *ProviderConfig) (Embedder, error)

	// Type returns the provider name this factory creates
	Type() string

	// ValidateConfig validates configuration for this provider type
	ValidateConfig(config *ProviderConfig) error

	// DefaultConfig returns a default configuration
	DefaultConfig() *ProviderConfig
}

// Registry manages available embedding providers
type Registry interface {
	// Register adds a factory to the registry
	Register(name string, factory Factory) error

	// Create builds an embedder for config.Name, filling unset fields from the factory defaults
	Create(config *ProviderConfig) (Embedder, error)

	// List returns all registered provider names in sorted order
	List() []string

	// IsRegistered checks if a provider is registered
	IsRegistered(name string) bool
}

type defaultRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty provider registry
func NewRegistry() Registry {
	return &defaultRegistry{
		factories: make(map[string]Factory),
	}
}

// Register adds a provider factory to the registry
func (r *defaultRegistry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return NewProviderError(ErrTypeRegistration, "provider already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Create validates the config and asks the matching factory for an embedder
func (r *defaultRegistry) Create(config *ProviderConfig) (Embedder, error) {
	if config == nil {
		return nil, NewProviderError(ErrTypeConfiguration, "provider config is required", "")
	}

	r.mu.RLock()
	factory, exists := r.factories[config.Name]
	r.mu.RUnlock()

	if !exists {
		return nil, NewProviderError(ErrTypeNotFound, "provider not registered", config.Name)
	}

	merged := withDefaults(config, factory.DefaultConfig())
	if err := factory.ValidateConfig(merged); err != nil {
		return nil, err
	}

	return factory.Create(merged)
}

// List returns all registered provider names
func (r *defaultRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a provider is registered
func (r *defaultRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

func withDefaults(cfg, defaults *ProviderConfig) *ProviderConfig {
	out := *cfg
	if defaults == nil {
		return &out
	}
	if out.Model == "" {
		out.Model = defaults.Model
	}
	if out.Endpoint == "" {
		out.Endpoint = defaults.Endpoint
	}
	if out.APIKey == "" {
		out.APIKey = defaults.APIKey
	}
	if out.Dimensions == 0 {
		out.Dimensions = defaults.Dimensions
	}
	if out.BatchSize == 0 {
		out.BatchSize = defaults.BatchSize
	}
	if out.Timeout == 0 {
		out.Timeout = defaults.Timeout
	}
	return &out
}
