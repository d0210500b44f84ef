package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLoader(paths []string, env map[string]string) *Loader {
	return &Loader{
		configPaths: paths,
		getenv:      func(k string) string { return env[k] },
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := newTestLoader([]string{filepath.Join(t.TempDir(), "missing.yaml")}, nil)

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("Expected default provider ollama, got %s", cfg.Embedding.Provider)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `version: "1.0"
sources:
  dir: docs
embedding:
  provider: local
  model: hash
  timeout: 5s
chunking:
  size: 200
  overlap: 20
output:
  default_format: json
  verbose: true
`)

	cfg, err := newTestLoader(nil, nil).LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}
	if cfg.Sources.Dir != "docs" {
		t.Errorf("Expected sources dir docs, got %s", cfg.Sources.Dir)
	}
	if cfg.Embedding.Provider != "local" || cfg.Embedding.Model != "hash" {
		t.Errorf("Expected local/hash, got %s/%s", cfg.Embedding.Provider, cfg.Embedding.Model)
	}
	if cfg.Embedding.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", cfg.Embedding.Timeout)
	}
	if cfg.Chunking.Size != 200 || cfg.Chunking.Overlap != 20 {
		t.Errorf("Expected chunking 200/20, got %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if !cfg.Output.Verbose {
		t.Error("Expected verbose to be true")
	}
	// untouched sections keep defaults
	if cfg.Query.TopK != 5 {
		t.Errorf("Expected default top_k 5, got %d", cfg.Query.TopK)
	}
}

func TestLoadConfigExplicitZeroValues(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "system.yaml", "sources:\n  exclude: [node_modules]\n")
	project := writeFile(t, dir, "project.yaml", `sources:
  exclude: []
chunking:
  size: 200
  overlap: 0
`)

	cfg, err := newTestLoader([]string{project, system}, nil).LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Chunking.Size != 200 || cfg.Chunking.Overlap != 0 {
		t.Errorf("Expected chunking 200/0, got %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if len(cfg.Sources.Exclude) != 0 {
		t.Errorf("Expected an empty exclude list to clear exclusions, got %v", cfg.Sources.Exclude)
	}
	if len(cfg.Sources.Extensions) != 4 {
		t.Errorf("Expected default extensions to survive, got %v", cfg.Sources.Extensions)
	}
}

func TestLoadConfigTOMLZeroOverlap(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[chunking]\noverlap = 0\n")

	cfg, err := newTestLoader(nil, nil).LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Chunking.Overlap != 0 || cfg.Chunking.Size != 500 {
		t.Errorf("Expected chunking 500/0, got %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
}

func TestCloneSharesNoSlices(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Sources.Extensions[0] = ".txt"
	if cfg.Sources.Extensions[0] != ".html" {
		t.Errorf("Clone shares its extensions with the original: %v", cfg.Sources.Extensions)
	}
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key = "sk-test"

[index]
dir = "idx"
compress = true
`)

	cfg, err := newTestLoader(nil, nil).LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", cfg.Embedding.Provider)
	}
	if cfg.Index.Dir != "idx" || !cfg.Index.Compress {
		t.Errorf("Expected index idx with compression, got %s/%v", cfg.Index.Dir, cfg.Index.Compress)
	}
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	system := writeFile(t, dir, "system.yaml", "query:\n  top_k: 3\nindex:\n  dir: system_idx\n")
	project := writeFile(t, dir, "project.yaml", "index:\n  dir: project_idx\n")

	cfg, err := newTestLoader([]string{project, system}, nil).LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Index.Dir != "project_idx" {
		t.Errorf("Expected project file to win, got %s", cfg.Index.Dir)
	}
	if cfg.Query.TopK != 3 {
		t.Errorf("Expected top_k from system file, got %d", cfg.Query.TopK)
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"DOCRAG_EMBEDDING_PROVIDER": "openai",
		"DOCRAG_QUERY_TOP_K":        "8",
		"DOCRAG_SOURCES_EXTENSIONS": ".md, .pdf",
		"DOCRAG_OUTPUT_VERBOSE":     "true",
		"OPENAI_API_KEY":            "sk-env",
	}

	cfg, err := newTestLoader(nil, env).LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("Expected provider override, got %s", cfg.Embedding.Provider)
	}
	if cfg.Query.TopK != 8 {
		t.Errorf("Expected top_k 8, got %d", cfg.Query.TopK)
	}
	if strings.Join(cfg.Sources.Extensions, ",") != ".md,.pdf" {
		t.Errorf("Expected extensions .md,.pdf, got %v", cfg.Sources.Extensions)
	}
	if !cfg.Output.Verbose {
		t.Error("Expected verbose override")
	}
	if cfg.Embedding.APIKey != "sk-env" {
		t.Errorf("Expected OPENAI_API_KEY fallback, got %q", cfg.Embedding.APIKey)
	}
}

func TestEnvOverridesInvalidValue(t *testing.T) {
	_, err := newTestLoader(nil, map[string]string{"DOCRAG_CHUNKING_SIZE": "big"}).LoadConfig("")
	if err == nil || !strings.Contains(err.Error(), "DOCRAG_CHUNKING_SIZE") {
		t.Errorf("Expected error naming the variable, got %v", err)
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "embedding:\n  provider: bogus\n")
	_, err := newTestLoader(nil, nil).LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Expected validation failure, got %v", err)
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"config.yaml", false},
		{"config.yml", false},
		{"config.toml", false},
		{"config.json", true},
		{"../config.yaml", true},
		{"/proc/self/config.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".docrag.yaml")

	if err := WriteSample(path, false); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := WriteSample(path, false); err == nil {
		t.Error("Expected error when file exists without force")
	}
	if err := WriteSample(path, true); err != nil {
		t.Errorf("WriteSample with force failed: %v", err)
	}

	cfg, err := newTestLoader(nil, nil).LoadConfig(path)
	if err != nil {
		t.Fatalf("written sample does not load: %v", err)
	}
	if cfg.Chunking.Size != 500 {
		t.Errorf("Expected chunk size 500, got %d", cfg.Chunking.Size)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath(~/x) = %s", got)
	}
	if got := ExpandPath("/abs"); got != "/abs" {
		t.Errorf("ExpandPath(/abs) = %s", got)
	}
}
