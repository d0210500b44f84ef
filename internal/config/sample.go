package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SampleConfig is the commented configuration written by "docrag config init".
const SampleConfig = `# docrag configuration
version: "1.0"

sources:
  # Directory walked recursively for documents
  dir: sources
  # Matched case-insensitively; add .pdf to ingest PDF files
  extensions: [".html", ".htm", ".md", ".markdown"]
  # Directory names (glob patterns) skipped during the walk, e.g. [".git", "node_modules"]
  exclude: []

chunking:
  size: 500
  overlap: 50

embedding:
  # local | ollama | openai
  provider: ollama
  # Defaults: ollama all-minilm at http://localhost:11434,
  # openai text-embedding-3-small, local hashing-v1
  # model: all-minilm
  # endpoint: http://localhost:11434
  # api_key: ${OPENAI_API_KEY}
  dimensions: 384
  batch_size: 32
  concurrency: 4
  timeout: 60s

index:
  dir: vector_index
  collection: documents
  compress: false

query:
  top_k: 5
  history_file: ~/.cache/docrag/history

output:
  # text | json | markdown | csv
  default_format: text
  color_mode: auto
  verbose: false
`

// WriteSample writes SampleConfig to path, refusing to overwrite unless force is set.
func WriteSample(path string, force bool) error {
	if fileExists(path) && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(SampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	redacted := *c
	if redacted.Embedding.APIKey != "" {
		redacted.Embedding.APIKey = "***"
	}
	return yaml.Marshal(&redacted)
}
