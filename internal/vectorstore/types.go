package vectorstore

import (
	"errors"
	"time"
)

const (
	// ManifestFile describes the index directory
	ManifestFile = "manifest.yaml"
	// DataFile holds the exported collection
	DataFile = "index.gob"
	// CompressedDataFile holds the gzip-compressed exported collection
	CompressedDataFile = "index.gob.gz"

	// FormatVersion is bumped when the on-disk layout changes
	FormatVersion = 1
)

var (
	// ErrIndexNotFound is returned when the index directory holds no manifest
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrEmptyIndex is returned when building an index from nothing
	ErrEmptyIndex = errors.New("cannot build an empty index")
	// ErrDimensionMismatch is returned for vectors whose length differs from the index
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrManifestMismatch is returned when the index was built with a different model
	ErrManifestMismatch = errors.New("index was built with a different embedding model")
)

// Manifest describes how an index directory was produced
type Manifest struct {
	FormatVersion int       `yaml:"format_version" json:"format_version"`
	Collection    string    `yaml:"collection" json:"collection"`
	Provider      string    `yaml:"provider" json:"provider"`
	Model         string    `yaml:"model" json:"model"`
	Dimensions    int       `yaml:"dimensions" json:"dimensions"`
	Chunks        int       `yaml:"chunks" json:"chunks"`
	Documents     int       `yaml:"documents" json:"documents"`
	ChunkSize     int       `yaml:"chunk_size" json:"chunk_size"`
	ChunkOverlap  int       `yaml:"chunk_overlap" json:"chunk_overlap"`
	Compressed    bool      `yaml:"compressed" json:"compressed"`
	CreatedAt     time.Time `yaml:"created_at" json:"created_at"`
}

// DataFileName returns the collection export file for this manifest
func (m *Manifest) DataFileName() string {
	if m.Compressed {
		return CompressedDataFile
	}
	return DataFile
}

// Hit is a single search result
type Hit struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Source     string            `json:"source"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float32           `json:"similarity"`
	// Distance is the squared L2 distance between the unit query and chunk vectors
	Distance float32 `json:"distance"`
}

// Relevance returns the display percentage for the hit
func (h Hit) Relevance() float64 {
	return Relevance(h.Distance)
}
