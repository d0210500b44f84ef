package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version   string          `yaml:"version" toml:"version" json:"version"`
	Sources   SourcesConfig   `yaml:"sources" toml:"sources" json:"sources"`
	Chunking  ChunkingConfig  `yaml:"chunking" toml:"chunking" json:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding" toml:"embedding" json:"embedding"`
	Index     IndexConfig     `yaml:"index" toml:"index" json:"index"`
	Query     QueryConfig     `yaml:"query" toml:"query" json:"query"`
	Output    OutputConfig    `yaml:"output" toml:"output" json:"output"`
}

// SourcesConfig configures which documents are ingested
type SourcesConfig struct {
	Dir        string   `yaml:"dir" toml:"dir" json:"dir"`                      // root directory walked recursively
	Extensions []string `yaml:"extensions" toml:"extensions" json:"extensions"` // matched case-insensitively
	Exclude    []string `yaml:"exclude" toml:"exclude" json:"exclude"`          // directory names skipped during the walk
}

// ChunkingConfig configures the text splitter
type ChunkingConfig struct {
	Size    int `yaml:"size" toml:"size" json:"size"`
	Overlap int `yaml:"overlap" toml:"overlap" json:"overlap"`
}

// EmbeddingConfig configures the embedding provider
type EmbeddingConfig struct {
	Provider    string        `yaml:"provider" toml:"provider" json:"provider"` // local|ollama|openai
	Model       string        `yaml:"model" toml:"model" json:"model"`          // provider default when empty
	Endpoint    string        `yaml:"endpoint" toml:"endpoint" json:"endpoint"` // provider default when empty
	APIKey      string        `yaml:"api_key" toml:"api_key" json:"api_key"`
	Dimensions  int           `yaml:"dimensions" toml:"dimensions" json:"dimensions"` // used by the local provider
	BatchSize   int           `yaml:"batch_size" toml:"batch_size" json:"batch_size"`
	Concurrency int           `yaml:"concurrency" toml:"concurrency" json:"concurrency"`
	Timeout     time.Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
}

// IndexConfig configures where the vector index lives
type IndexConfig struct {
	Dir        string `yaml:"dir" toml:"dir" json:"dir"`
	Collection string `yaml:"collection" toml:"collection" json:"collection"`
	Compress   bool   `yaml:"compress" toml:"compress" json:"compress"`
}

// QueryConfig configures the interactive query shell
type QueryConfig struct {
	TopK        int    `yaml:"top_k" toml:"top_k" json:"top_k"`
	Prompt      string `yaml:"prompt" toml:"prompt" json:"prompt"`
	HistoryFile string `yaml:"history_file" toml:"history_file" json:"history_file"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" toml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" toml:"color_mode" json:"color_mode"`             // auto|always|never
	Verbose       bool   `yaml:"verbose" toml:"verbose" json:"verbose"`
	NoEmoji       bool   `yaml:"no_emoji" toml:"no_emoji" json:"no_emoji"`
}

// Clone returns a copy of c that shares no slices with it
func (c *Config) Clone() *Config {
	out := *c
	out.Sources.Extensions = cloneList(c.Sources.Extensions)
	out.Sources.Exclude = cloneList(c.Sources.Exclude)
	return &out
}

func cloneList(list []string) []string {
	if list == nil {
		return nil
	}
	return append(make([]string, 0, len(list)), list...)
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Sources: SourcesConfig{
			Dir:        "sources",
			Extensions: []string{".html", ".htm", ".md", ".markdown"},
			Exclude:    []string{},
		},
		Chunking: ChunkingConfig{
			Size:    500,
			Overlap: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:    "ollama",
			Dimensions:  384,
			BatchSize:   32,
			Concurrency: 4,
			Timeout:     60 * time.Second,
		},
		Index: IndexConfig{
			Dir:        "vector_index",
			Collection: "documents",
		},
		Query: QueryConfig{
			TopK:        5,
			Prompt:      "Enter your question: ",
			HistoryFile: "~/.cache/docrag/history",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateSourcesConfig(); err != nil {
		return err
	}
	if err := c.validateChunkingConfig(); err != nil {
		return err
	}
	if err := c.validateEmbeddingConfig(); err != nil {
		return err
	}
	if err := c.validateIndexConfig(); err != nil {
		return err
	}
	if err := c.validateQueryConfig(); err != nil {
		return err
	}
	return c.validateOutputConfig()
}

func (c *Config) validateSourcesConfig() error {
	if c.Sources.Dir == "" {
		return fmt.Errorf("sources.dir must not be empty")
	}
	if len(c.Sources.Extensions) == 0 {
		return fmt.Errorf("sources.extensions must list at least one extension")
	}
	for _, ext := range c.Sources.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
	}
	return nil
}

func (c *Config) validateChunkingConfig() error {
	if c.Chunking.Size < 1 {
		return fmt.Errorf("chunking.size must be greater than 0")
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must be non-negative")
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than chunking.size (%d)", c.Chunking.Overlap, c.Chunking.Size)
	}
	return nil
}

// validateEmbeddingConfig validates embedding provider settings
func (c *Config) validateEmbeddingConfig() error {
	validProviders := map[string]bool{
		"local":  true,
		"ollama": true,
		"openai": true,
	}
	if !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding provider: %s (must be one of: local, ollama, openai)", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 1 {
		return fmt.Errorf("embedding.dimensions must be greater than 0")
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be greater than 0")
	}
	if c.Embedding.Concurrency < 1 {
		return fmt.Errorf("embedding.concurrency must be greater than 0")
	}
	if c.Embedding.Timeout < 0 {
		return fmt.Errorf("embedding.timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateIndexConfig() error {
	if c.Index.Dir == "" {
		return fmt.Errorf("index.dir must not be empty")
	}
	if c.Index.Collection == "" {
		return fmt.Errorf("index.collection must not be empty")
	}
	return nil
}

func (c *Config) validateQueryConfig() error {
	if c.Query.TopK < 1 {
		return fmt.Errorf("query.top_k must be greater than 0")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}
