package shell

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/yildizm/docrag/internal/embedding"
	"github.com/yildizm/docrag/internal/emoji"
	"github.com/yildizm/docrag/internal/vectorstore"
)

// EmbedderFunc creates the embedding model used for questions
type EmbedderFunc func() (embedding.Embedder, error)

// Load creates the embedding model and loads the index in indexDir. The
// index must have been built with the same provider and model, and with the
// same vector size when the model reports one. Failures are printed with
// troubleshooting hints before being returned.
func Load(out io.Writer, indexDir string, newEmbedder EmbedderFunc) (*vectorstore.Index, embedding.Embedder, error) {
	fmt.Fprintln(out, "Loading embedding model and vector database...")

	embedder, err := newEmbedder()
	if err != nil {
		err = errors.Wrap(err, "failed to load embedding model")
		PrintFailure(out, err)
		return nil, nil, err
	}

	index, err := openIndex(indexDir, embedder)
	if err != nil {
		_ = embedder.Close()
		PrintFailure(out, err)
		return nil, nil, err
	}
	return index, embedder, nil
}

func openIndex(indexDir string, embedder embedding.Embedder) (*vectorstore.Index, error) {
	index, err := vectorstore.Load(indexDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load vector database from %s", indexDir)
	}

	info := embedder.Info()
	if err := index.CheckModel(info.Provider, info.Model); err != nil {
		return nil, err
	}
	if dims := index.Manifest().Dimensions; info.Dimensions > 0 && info.Dimensions != dims {
		return nil, errors.Wrapf(vectorstore.ErrDimensionMismatch,
			"model %s produces %d dimensions but the index has %d", info, info.Dimensions, dims)
	}
	return index, nil
}

// PrintFailure prints err followed by the usual remedies
func PrintFailure(out io.Writer, err error) {
	fmt.Fprintf(out, "%sError: %v\n", emoji.Prefix("error"), err)
	fmt.Fprintln(out, "\nPossible solutions:")
	fmt.Fprintln(out, "1. Make sure you have run 'docrag ingest' to create the vector database")
	fmt.Fprintln(out, "2. Verify that the embedding model is available")
	fmt.Fprintln(out, "3. Check that the index directory exists and contains the index files")
}
