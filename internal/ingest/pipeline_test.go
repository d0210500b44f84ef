package ingest

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/docrag/internal/chunker"
	"github.com/yildizm/docrag/internal/docstore"
	"github.com/yildizm/docrag/internal/embedding"
	"github.com/yildizm/docrag/internal/embedding/providers/local"
	"github.com/yildizm/docrag/internal/monitor"
	"github.com/yildizm/docrag/internal/vectorstore"
)

type emptySplitter struct{}

func (emptySplitter) SplitText(string) ([]string, error) { return nil, nil }

type failingEmbedder struct{ embedding.Embedder }

func (failingEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model unavailable")
}

// recordingEmbedder returns a one-hot vector keyed by the text's first byte
type recordingEmbedder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	r.mu.Lock()
	r.calls = append(r.calls, texts)
	r.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 8)
		v[int(t[0]-'a')%8] = 1
		out[i] = v
	}
	return out, nil
}

func (r *recordingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v, err := r.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (r *recordingEmbedder) Info() embedding.ModelInfo {
	return embedding.ModelInfo{Provider: "test", Model: "onehot", Dimensions: 8}
}

func (r *recordingEmbedder) Close() error { return nil }

func newLocalEmbedder(t *testing.T) embedding.Embedder {
	t.Helper()
	e, err := local.New(nil)
	require.NoError(t, err)
	return e
}

func sourceFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func testOptions(t *testing.T) Options {
	return Options{
		SourceDir:    "sources",
		IndexDir:     filepath.Join(t.TempDir(), "vector_index"),
		ChunkSize:    500,
		ChunkOverlap: 50,
		BatchSize:    4,
		Concurrency:  2,
	}
}

func TestRun_BuildsAndPersistsIndex(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"sources/deploy.html": `<html><head><title>Deploy</title><script>var secret = 1;</script></head>
<body><p>Kubernetes deployment rollout and rollback strategies.</p></body></html>`,
		"sources/cooking.md":       "# Pasta\n\nBoil water, add salt, cook the spaghetti until al dente.",
		"sources/guides/garden.md": "Water tomato plants early in the morning.",
	})

	var out bytes.Buffer
	opts := testOptions(t)
	p, err := NewPipeline(newLocalEmbedder(t), opts, WithFs(fs), WithOutput(&out))
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.FilesMatched)
	assert.Equal(t, 3, report.DocumentsLoaded)
	assert.Zero(t, report.FilesFailed)
	assert.Equal(t, 3, report.Chunks)
	assert.False(t, report.Fallback)
	assert.Equal(t, local.DefaultDimensions, report.Dimensions)

	stages := make([]monitor.Stage, len(report.Stages))
	for i, st := range report.Stages {
		stages[i] = st.Stage
	}
	assert.Equal(t, []monitor.Stage{
		monitor.StageScan, monitor.StageSplit, monitor.StageEmbed,
		monitor.StageEmbedBatch, monitor.StageBuild, monitor.StageSave,
	}, stages)

	text := out.String()
	assert.Contains(t, text, "Loaded deploy.html:")
	assert.Contains(t, text, "After splitting, got 3 chunks.")
	assert.Contains(t, text, "Vector database saved successfully to folder "+opts.IndexDir)

	index, err := vectorstore.Load(opts.IndexDir)
	require.NoError(t, err)
	assert.Equal(t, 3, index.Count())

	manifest := index.Manifest()
	assert.Equal(t, "local", manifest.Provider)
	assert.Equal(t, 3, manifest.Documents)
	assert.Equal(t, 500, manifest.ChunkSize)

	query, err := newLocalEmbedder(t).EmbedQuery(context.Background(), "kubernetes rollout")
	require.NoError(t, err)
	hits, err := index.Search(context.Background(), query, 5)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, filepath.Join("sources", "deploy.html"), hits[0].Source)
	assert.NotContains(t, hits[0].Text, "secret")
}

func TestRun_SkipsUnloadableFiles(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"sources/good.md":   "readable text",
		"sources/latin1.md": "caf\xe9",
	})

	var out bytes.Buffer
	p, err := NewPipeline(newLocalEmbedder(t), testOptions(t), WithFs(fs), WithOutput(&out))
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.FilesMatched)
	assert.Equal(t, 1, report.DocumentsLoaded)
	assert.Equal(t, 1, report.FilesFailed)
	assert.Contains(t, out.String(), "Error loading "+filepath.Join("sources", "latin1.md"))
}

func TestRun_FallsBackToUnsplitDocuments(t *testing.T) {
	fs := sourceFs(t, map[string]string{
		"sources/a.md": "alpha",
		"sources/b.md": "beta",
	})

	var out bytes.Buffer
	p, err := NewPipeline(newLocalEmbedder(t), testOptions(t),
		WithFs(fs), WithOutput(&out), WithChunker(chunker.NewWithSplitter(emptySplitter{})))
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Fallback)
	assert.Equal(t, 2, report.Chunks)
	assert.Contains(t, out.String(), "Using original documents without chunking instead.")
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		opts := testOptions(t)
		p, err := NewPipeline(newLocalEmbedder(t), opts, WithFs(afero.NewMemMapFs()), WithOutput(&bytes.Buffer{}))
		require.NoError(t, err)

		_, err = p.Run(context.Background())
		assert.ErrorIs(t, err, docstore.ErrSourceNotFound)

		_, statErr := vectorstore.ReadManifest(opts.IndexDir)
		assert.ErrorIs(t, statErr, vectorstore.ErrIndexNotFound)
	})

	t.Run("no matching files", func(t *testing.T) {
		fs := sourceFs(t, map[string]string{"sources/notes.txt": "x"})
		p, err := NewPipeline(newLocalEmbedder(t), testOptions(t), WithFs(fs), WithOutput(&bytes.Buffer{}))
		require.NoError(t, err)

		_, err = p.Run(context.Background())
		assert.ErrorIs(t, err, docstore.ErrNoFiles)
	})

	t.Run("every file unloadable", func(t *testing.T) {
		fs := sourceFs(t, map[string]string{"sources/bad.md": "\xff\xfe"})
		p, err := NewPipeline(newLocalEmbedder(t), testOptions(t), WithFs(fs), WithOutput(&bytes.Buffer{}))
		require.NoError(t, err)

		_, err = p.Run(context.Background())
		assert.ErrorIs(t, err, chunker.ErrNoDocuments)
	})

	t.Run("embedding failure", func(t *testing.T) {
		fs := sourceFs(t, map[string]string{"sources/a.md": "alpha"})
		opts := testOptions(t)
		p, err := NewPipeline(failingEmbedder{newLocalEmbedder(t)}, opts, WithFs(fs), WithOutput(&bytes.Buffer{}))
		require.NoError(t, err)

		_, err = p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model unavailable")

		_, statErr := vectorstore.ReadManifest(opts.IndexDir)
		assert.ErrorIs(t, statErr, vectorstore.ErrIndexNotFound)
	})
}

func TestNewPipeline_Validation(t *testing.T) {
	e := newLocalEmbedder(t)

	_, err := NewPipeline(nil, testOptions(t))
	assert.Error(t, err)

	opts := testOptions(t)
	opts.SourceDir = ""
	_, err = NewPipeline(e, opts)
	assert.Error(t, err)

	opts = testOptions(t)
	opts.ChunkOverlap = opts.ChunkSize
	_, err = NewPipeline(e, opts)
	assert.Error(t, err)
}

func TestEmbedAll_BatchesAndKeepsOrder(t *testing.T) {
	texts := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf"}
	chunks := make([]*chunker.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &chunker.Chunk{ID: text, Text: text}
	}

	embedder := &recordingEmbedder{}
	opts := testOptions(t)
	opts.BatchSize = 3
	opts.Concurrency = 3
	p, err := NewPipeline(embedder, opts, WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	rec := monitor.NewRecorder()
	vectors, err := p.embedAll(context.Background(), chunks, rec)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		hot := int(text[0]-'a') % 8
		assert.Equal(t, float32(1), vectors[i][hot], "vector %d out of order", i)
	}

	assert.Equal(t, int64(3), rec.Timer(monitor.StageEmbedBatch).Count())

	assert.Len(t, embedder.calls, 3)
	for _, call := range embedder.calls {
		assert.LessOrEqual(t, len(call), 3)
	}
}

func TestSample(t *testing.T) {
	assert.Equal(t, "short", sample("short"))
	assert.Len(t, []rune(sample(strings.Repeat("é", 300))), sampleLength)
}
