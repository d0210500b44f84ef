// Package vectorstore builds, persists and searches the chunk vector index.
package vectorstore

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/docrag/internal/chunker"
)

// DefaultCollection is used when the manifest names none
const DefaultCollection = "documents"

// Index is an exact nearest-neighbour index over chunk embeddings
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	manifest   Manifest
}

// BuildOptions configures Build
type BuildOptions struct {
	// Manifest seeds the descriptive fields (provider, model, chunking, documents)
	Manifest Manifest
	// Concurrency bounds the workers used while inserting documents
	Concurrency int
}

// errNoEmbeddingFunc guards against the collection embedding text on its own
var errNoEmbeddingFunc = errors.New("index stores precomputed embeddings only")

func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

// Build creates an in-memory index from chunks and their vectors
func Build(ctx context.Context, chunks []*chunker.Chunk, vectors [][]float32, opts BuildOptions) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(chunks) != len(vectors) {
		return nil, errors.Errorf("got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil, errors.Wrap(ErrDimensionMismatch, "embeddings are empty")
	}

	docs := make([]chromem.Document, len(chunks))
	for i, ch := range chunks {
		if len(vectors[i]) != dims {
			return nil, errors.Wrapf(ErrDimensionMismatch, "chunk %s has %d dimensions, expected %d", ch.ID, len(vectors[i]), dims)
		}
		docs[i] = chromem.Document{
			ID:        ch.ID,
			Metadata:  chunkMetadata(ch),
			Embedding: NormalizeVector(vectors[i]),
			Content:   ch.Text,
		}
	}

	manifest := opts.Manifest
	manifest.FormatVersion = FormatVersion
	if manifest.Collection == "" {
		manifest.Collection = DefaultCollection
	}
	manifest.Dimensions = dims
	manifest.Chunks = len(chunks)
	if manifest.CreatedAt.IsZero() {
		manifest.CreatedAt = time.Now().UTC()
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(manifest.Collection, nil, noEmbedding)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create collection")
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	if err := collection.AddDocuments(ctx, docs, concurrency); err != nil {
		return nil, errors.Wrap(err, "failed to add documents to index")
	}

	return &Index{db: db, collection: collection, manifest: manifest}, nil
}

func chunkMetadata(ch *chunker.Chunk) map[string]string {
	meta := make(map[string]string, len(ch.Metadata)+1)
	for k, v := range ch.Metadata {
		meta[k] = v
	}
	meta[chunker.MetaSource] = ch.Source
	return meta
}

// Manifest returns a copy of the index manifest
func (idx *Index) Manifest() Manifest {
	return idx.manifest
}

// Count returns the number of indexed chunks
func (idx *Index) Count() int {
	return idx.collection.Count()
}

// Search returns up to k hits ordered by increasing distance.
// k is clamped to the number of indexed chunks.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != idx.manifest.Dimensions {
		return nil, errors.Wrapf(ErrDimensionMismatch, "query has %d dimensions, index has %d", len(query), idx.manifest.Dimensions)
	}

	count := idx.collection.Count()
	if k <= 0 || count == 0 {
		return []Hit{}, nil
	}
	if k > count {
		k = count
	}

	unit := NormalizeVector(query)
	results, err := idx.collection.QueryEmbedding(ctx, unit, k, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "search failed")
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			ID:         r.ID,
			Text:       r.Content,
			Source:     r.Metadata[chunker.MetaSource],
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
			Distance:   hitDistance(unit, r),
		}
	}
	return hits, nil
}

// hitDistance measures the stored chunk vector directly and falls back to the
// similarity when the result carries no embedding
func hitDistance(query []float32, r chromem.Result) float32 {
	if len(r.Embedding) == len(query) {
		return SquaredDistance(query, r.Embedding)
	}
	return SquaredDistanceFromSimilarity(r.Similarity)
}

// CheckModel verifies that the index was built with the given provider and model
func (idx *Index) CheckModel(provider, model string) error {
	if idx.manifest.Provider != provider || idx.manifest.Model != model {
		return errors.Wrapf(ErrManifestMismatch, "index uses %s/%s, configured embedder is %s/%s",
			idx.manifest.Provider, idx.manifest.Model, provider, model)
	}
	return nil
}

// Save writes the index to dir, replacing any index already there
func (idx *Index) Save(dir string, compress bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrapf(err, "failed to create index directory %s", dir)
	}

	manifest := idx.manifest
	manifest.Compressed = compress

	// chromem-go picks gzip by file suffix, so the staging file keeps the real extension
	dataPath := filepath.Join(dir, manifest.DataFileName())
	staging := filepath.Join(dir, "staging-"+manifest.DataFileName())
	if err := idx.db.ExportToFile(staging, compress, ""); err != nil {
		_ = os.Remove(staging)
		return errors.Wrap(err, "failed to export index")
	}
	if err := os.Rename(staging, dataPath); err != nil {
		return errors.Wrap(err, "failed to move index into place")
	}

	// drop the data file of the other compression mode so a reload is unambiguous
	stale := DataFile
	if !compress {
		stale = CompressedDataFile
	}
	if err := os.Remove(filepath.Join(dir, stale)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove stale index file")
	}

	if err := writeManifest(dir, &manifest); err != nil {
		return err
	}

	idx.manifest = manifest
	return nil
}

// Load reads an index previously written by Save
func Load(dir string) (*Index, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest.FormatVersion != FormatVersion {
		return nil, errors.Errorf("unsupported index format version %d (expected %d)", manifest.FormatVersion, FormatVersion)
	}

	dataPath := filepath.Join(dir, manifest.DataFileName())
	if _, err := os.Stat(dataPath); err != nil {
		return nil, errors.Wrapf(ErrIndexNotFound, "missing index data %s", dataPath)
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(dataPath, ""); err != nil {
		return nil, errors.Wrapf(err, "failed to import index from %s", dataPath)
	}

	collection := db.GetCollection(manifest.Collection, noEmbedding)
	if collection == nil {
		return nil, errors.Errorf("index file %s has no collection %q", dataPath, manifest.Collection)
	}
	if collection.Count() != manifest.Chunks {
		return nil, errors.Errorf("index holds %d chunks but manifest records %d", collection.Count(), manifest.Chunks)
	}

	return &Index{db: db, collection: collection, manifest: *manifest}, nil
}

// ReadManifest reads the manifest of an index directory
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path) //nolint:gosec // index directory comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrIndexNotFound, "no manifest in %s", dir)
		}
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	return &manifest, nil
}

func writeManifest(dir string, manifest *Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}

	path := filepath.Join(dir, ManifestFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "failed to move manifest into place")
	}
	return nil
}
