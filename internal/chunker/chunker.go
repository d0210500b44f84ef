// Package chunker splits documents into overlapping, bounded-length chunks.
package chunker

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/yildizm/docrag/internal/docstore"
)

// ErrNoDocuments is returned when there is nothing left to index, even after fallback.
var ErrNoDocuments = errors.New("no documents to index")

// Metadata keys attached to every chunk
const (
	MetaSource = "source"
	MetaTitle  = "title"
	MetaFormat = "format"
	MetaChunk  = "chunk"
)

// Chunk is a bounded window of a document's text
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Source   string            `json:"source"`
	Index    int               `json:"index"`
	Metadata map[string]string `json:"metadata"`
}

// Result holds the chunks of a split run
type Result struct {
	Chunks []*Chunk
	// Fallback is set when splitting produced nothing and the unsplit documents were used.
	Fallback bool
	// SplitErr is the splitter error that triggered the fallback, if any.
	SplitErr error
}

// Chunker splits documents with a text splitter
type Chunker struct {
	splitter textsplitter.TextSplitter
}

// New creates a chunker using a recursive character splitter with the given window and overlap (in runes).
func New(size, overlap int) (*Chunker, error) {
	if size < 1 {
		return nil, fmt.Errorf("chunk size must be greater than 0, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)
	return &Chunker{splitter: splitter}, nil
}

// NewWithSplitter creates a chunker around any text splitter.
func NewWithSplitter(splitter textsplitter.TextSplitter) *Chunker {
	return &Chunker{splitter: splitter}
}

// Split splits every document. When splitting fails or yields no chunks the
// documents themselves become the chunks; having no documents at all is an error.
func (c *Chunker) Split(docs []*docstore.Document) (*Result, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	chunks, err := c.splitAll(docs)
	if err == nil && len(chunks) > 0 {
		return &Result{Chunks: chunks}, nil
	}

	return &Result{
		Chunks:   Unsplit(docs),
		Fallback: true,
		SplitErr: err,
	}, nil
}

func (c *Chunker) splitAll(docs []*docstore.Document) ([]*Chunk, error) {
	var chunks []*Chunk
	for _, doc := range docs {
		parts, err := c.splitter.SplitText(doc.Text)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to split %s", doc.Source)
		}
		for i, part := range parts {
			chunks = append(chunks, newChunk(doc, i, part))
		}
	}
	return chunks, nil
}

// Unsplit turns each document into exactly one chunk carrying its full text.
func Unsplit(docs []*docstore.Document) []*Chunk {
	return lo.Map(docs, func(doc *docstore.Document, _ int) *Chunk {
		return newChunk(doc, 0, doc.Text)
	})
}

func newChunk(doc *docstore.Document, index int, text string) *Chunk {
	meta := make(map[string]string, len(doc.Metadata)+4)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta[MetaSource] = doc.Source
	meta[MetaTitle] = doc.Title
	meta[MetaFormat] = doc.Format
	meta[MetaChunk] = strconv.Itoa(index)

	return &Chunk{
		ID:       ChunkID(doc.Source, index),
		Text:     text,
		Source:   doc.Source,
		Index:    index,
		Metadata: meta,
	}
}

// ChunkID derives a stable identifier from the source path and chunk position.
func ChunkID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"#"+strconv.Itoa(index))).String()
}
