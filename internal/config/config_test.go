package config

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}
	if cfg.Sources.Dir != "sources" {
		t.Errorf("Expected sources dir 'sources', got %s", cfg.Sources.Dir)
	}
	if len(cfg.Sources.Extensions) != 4 {
		t.Errorf("Expected 4 source extensions, got %d", len(cfg.Sources.Extensions))
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("Expected chunking 500/50, got %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("Expected embedding provider ollama, got %s", cfg.Embedding.Provider)
	}
	if cfg.Index.Dir != "vector_index" {
		t.Errorf("Expected index dir vector_index, got %s", cfg.Index.Dir)
	}
	if cfg.Query.TopK != 5 {
		t.Errorf("Expected top_k 5, got %d", cfg.Query.TopK)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"empty source dir", func(c *Config) { c.Sources.Dir = "" }, "sources.dir must not be empty"},
		{"no extensions", func(c *Config) { c.Sources.Extensions = nil }, "sources.extensions must list at least one extension"},
		{"extension without dot", func(c *Config) { c.Sources.Extensions = []string{"md"} }, `invalid extension "md": must start with a dot`},
		{"zero chunk size", func(c *Config) { c.Chunking.Size = 0 }, "chunking.size must be greater than 0"},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }, "chunking.overlap must be non-negative"},
		{"overlap too large", func(c *Config) { c.Chunking.Overlap = 500 }, "chunking.overlap (500) must be smaller than chunking.size (500)"},
		{"invalid provider", func(c *Config) { c.Embedding.Provider = "invalid" }, "invalid embedding provider: invalid (must be one of: local, ollama, openai)"},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }, "embedding.batch_size must be greater than 0"},
		{"zero concurrency", func(c *Config) { c.Embedding.Concurrency = 0 }, "embedding.concurrency must be greater than 0"},
		{"negative timeout", func(c *Config) { c.Embedding.Timeout = -time.Second }, "embedding.timeout must be non-negative"},
		{"empty index dir", func(c *Config) { c.Index.Dir = "" }, "index.dir must not be empty"},
		{"zero top k", func(c *Config) { c.Query.TopK = 0 }, "query.top_k must be greater than 0"},
		{"invalid output format", func(c *Config) { c.Output.DefaultFormat = "invalid" }, "invalid output format: invalid (must be one of: json, text, markdown, csv)"},
		{"invalid color mode", func(c *Config) { c.Output.ColorMode = "invalid" }, "invalid color mode: invalid (must be one of: auto, always, never)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.errMsg)
			}
			if err.Error() != tt.errMsg {
				t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestSampleConfigIsValid(t *testing.T) {
	merged := DefaultConfig()
	if err := yaml.Unmarshal([]byte(SampleConfig), merged); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("sample config is invalid: %v", err)
	}
	if merged.Embedding.Timeout != 60*time.Second {
		t.Errorf("Expected timeout 60s, got %v", merged.Embedding.Timeout)
	}
}

func TestMarshalRedactsAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Embedding.APIKey = "sk-secret"

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "sk-secret") {
		t.Errorf("api key leaked into output:\n%s", data)
	}
	if cfg.Embedding.APIKey != "sk-secret" {
		t.Errorf("Marshal must not mutate the config")
	}
}
