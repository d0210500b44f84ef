package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yildizm/docrag/internal/docstore"
	"github.com/yildizm/docrag/internal/vectorstore"
)

// execute runs the root command with args and stdin, returning combined output
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand("1.2.3", "abc123", "2024-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()

	return writeConfig(t, dir, `version: "1.0"
embedding:
  provider: local
output:
  no_emoji: true
  color_mode: never
`)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func writeSources(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"deploy.html": "<html><body><script>tracking()</script><p>Deploy the service with a blue green rollout.</p></body></html>",
		"recipes.md":  "# Bread\n\nKnead the dough and let it rise overnight.",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "docrag 1.2.3 (abc123) built on 2024-01-01") {
		t.Errorf("Unexpected version output: %s", out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docrag.yaml")

	out, err := execute(t, "", "--no-emoji", "config", "init", "--path", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Configuration file created at: "+path) {
		t.Errorf("Unexpected init output: %s", out)
	}

	if _, err := execute(t, "", "config", "init", "--path", path); err == nil {
		t.Error("Expected init to refuse overwriting without --force")
	}
	if _, err := execute(t, "", "config", "init", "--path", path, "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}

	out, err = execute(t, "", "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration is valid") {
		t.Errorf("Unexpected validate output: %s", out)
	}
}

func TestConfigValidateRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "chunking:\n  size: 100\n  overlap: 100\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "--config", path, "config", "validate")
	if err == nil {
		t.Fatal("Expected validation failure")
	}
	if !strings.Contains(out, "Configuration validation failed") {
		t.Errorf("Unexpected output: %s", out)
	}
}

func TestConfigShowJSON(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())
	t.Setenv("DOCRAG_EMBEDDING_API_KEY", "sk-secret")

	out, err := execute(t, "", "--config", path, "config", "show", "--format", "json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("config show did not print JSON: %v\n%s", err, out)
	}
	if strings.Contains(out, "sk-secret") {
		t.Error("API key should be redacted")
	}
}

func TestIngestThenQuery(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	sources := filepath.Join(dir, "sources")
	index := filepath.Join(dir, "vector_index")
	if err := os.MkdirAll(sources, 0o750); err != nil {
		t.Fatal(err)
	}
	writeSources(t, sources)

	out, err := execute(t, "", "--config", cfgPath, "ingest", "--source", sources, "--index", index)
	if err != nil {
		t.Fatalf("ingest failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Loaded deploy.html:",
		"Loaded recipes.md:",
		"After splitting, got 2 chunks.",
		"Vector database saved successfully to folder " + index,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ingest output missing %q:\n%s", want, out)
		}
	}

	manifest, err := vectorstore.ReadManifest(index)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if manifest.Chunks != 2 || manifest.Provider != "local" {
		t.Errorf("Unexpected manifest: %+v", manifest)
	}

	out, err = execute(t, "\nblue green rollout\nEXIT\n", "--config", cfgPath, "query", "--index", index, "--top-k", "1")
	if err != nil {
		t.Fatalf("query failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Loading embedding model and vector database...",
		"Vector database loaded successfully!",
		"Please enter a valid question.",
		"Found 1 relevant results:",
		"Source: " + filepath.Join(sources, "deploy.html"),
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("query output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "tracking()") {
		t.Error("script content leaked into the index")
	}
}

func TestIngestMissingSource(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	_, err := execute(t, "", "--config", cfgPath, "ingest", "--source", filepath.Join(dir, "nope"), "--index", filepath.Join(dir, "idx"))
	if err == nil {
		t.Fatal("Expected ingest to fail for a missing source directory")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "idx")); !os.IsNotExist(statErr) {
		t.Error("No index directory should be created when the source is missing")
	}
}

func TestIngestChecksSourceBeforeLoadingModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DOCRAG_EMBEDDING_API_KEY", "")

	dir := t.TempDir()
	// the openai provider cannot be created without an API key
	cfgPath := writeConfig(t, dir, "embedding:\n  provider: openai\noutput:\n  no_emoji: true\n")

	out, err := execute(t, "", "--config", cfgPath, "ingest", "--source", filepath.Join(dir, "nope"), "--index", filepath.Join(dir, "idx"))
	if !errors.Is(err, docstore.ErrSourceNotFound) {
		t.Fatalf("Expected ErrSourceNotFound, got %v", err)
	}
	if strings.Contains(out, "Embedding model loaded") {
		t.Errorf("model must not be loaded before the source check:\n%s", out)
	}
}

func TestIngestNoMatchingFilesBeforeLoadingModel(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	sources := filepath.Join(dir, "sources")
	if err := os.MkdirAll(sources, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sources, "notes.txt"), []byte("plain"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "--config", cfgPath, "ingest", "--source", sources, "--index", filepath.Join(dir, "idx"))
	if !errors.Is(err, docstore.ErrNoFiles) {
		t.Fatalf("Expected ErrNoFiles, got %v", err)
	}
	if strings.Contains(out, "Embedding model loaded") {
		t.Errorf("model must not be loaded when nothing matches:\n%s", out)
	}
}

func TestIngestUnavailableModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"model \"all-minilm\" not found, try pulling it first"}}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "embedding:\n  provider: ollama\n  endpoint: "+server.URL+"\noutput:\n  no_emoji: true\n")
	sources := filepath.Join(dir, "sources")
	if err := os.MkdirAll(sources, 0o750); err != nil {
		t.Fatal(err)
	}
	writeSources(t, sources)
	index := filepath.Join(dir, "idx")

	out, err := execute(t, "", "--config", cfgPath, "ingest", "--source", sources, "--index", index)
	if err == nil {
		t.Fatal("Expected ingest to fail when the model is unavailable")
	}
	if !strings.Contains(err.Error(), "failed to load embedding model") {
		t.Errorf("Expected a model load error, got %v", err)
	}
	if strings.Contains(out, "Embedding model loaded successfully") {
		t.Errorf("success must not be reported for an unavailable model:\n%s", out)
	}
	if strings.Contains(out, "Loaded deploy.html") {
		t.Errorf("documents must not be loaded after a model failure:\n%s", out)
	}
	if _, statErr := os.Stat(index); !os.IsNotExist(statErr) {
		t.Error("No index directory should be created when the model is unavailable")
	}
}

func TestQueryMissingIndex(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	out, err := execute(t, "exit\n", "--config", cfgPath, "query", "--index", filepath.Join(dir, "missing"))
	if err == nil {
		t.Fatal("Expected query to fail without an index")
	}
	if !strings.Contains(out, "Possible solutions:") {
		t.Errorf("Expected troubleshooting hints, got:\n%s", out)
	}
}

func TestQueryRejectsUnknownOutput(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())
	if _, err := execute(t, "", "--config", cfgPath, "-o", "xml", "query"); err == nil {
		t.Error("Expected unsupported output format error")
	}
}
