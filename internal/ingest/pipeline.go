// Package ingest runs the document ingestion pipeline: scan a source tree,
// split the documents into chunks, embed them and persist the vector index.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/yildizm/docrag/internal/chunker"
	"github.com/yildizm/docrag/internal/docstore"
	"github.com/yildizm/docrag/internal/embedding"
	"github.com/yildizm/docrag/internal/emoji"
	"github.com/yildizm/docrag/internal/logger"
	"github.com/yildizm/docrag/internal/monitor"
	"github.com/yildizm/docrag/internal/vectorstore"
)

const sampleLength = 100

// Options configures a pipeline run
type Options struct {
	SourceDir    string
	Extensions   []string
	Exclude      []string
	IndexDir     string
	Collection   string
	Compress     bool
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	Concurrency  int
}

// Report summarizes a completed run
type Report struct {
	FilesMatched    int           `json:"files_matched"`
	DocumentsLoaded int           `json:"documents_loaded"`
	FilesFailed     int           `json:"files_failed"`
	Chunks          int           `json:"chunks"`
	Fallback        bool          `json:"fallback"`
	Dimensions      int           `json:"dimensions"`
	IndexDir        string        `json:"index_dir"`
	Elapsed         time.Duration `json:"elapsed"`

	Stages []monitor.StageStats `json:"stages"`
}

// Pipeline turns a directory of documents into a persisted vector index
type Pipeline struct {
	opts     Options
	embedder embedding.Embedder
	scanner  *docstore.Scanner
	chunker  *chunker.Chunker
	fs       afero.Fs
	out      io.Writer
	log      *logger.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithFs sets the filesystem the sources are read from
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// WithOutput sets where progress lines are printed
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithLogger sets the pipeline logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithChunker replaces the recursive character chunker
func WithChunker(c *chunker.Chunker) Option {
	return func(p *Pipeline) { p.chunker = c }
}

// NewPipeline validates opts and wires the pipeline stages
func NewPipeline(embedder embedding.Embedder, opts Options, options ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if opts.SourceDir == "" {
		return nil, errors.New("source directory is required")
	}
	if opts.IndexDir == "" {
		return nil, errors.New("index directory is required")
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 32
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	p := &Pipeline{
		opts:     opts,
		embedder: embedder,
		fs:       afero.NewOsFs(),
		out:      os.Stdout,
		log:      logger.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}

	if p.chunker == nil {
		c, err := chunker.New(opts.ChunkSize, opts.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		p.chunker = c
	}

	p.scanner = docstore.NewScanner(
		docstore.WithFs(p.fs),
		docstore.WithExtensions(opts.Extensions),
		docstore.WithExclude(opts.Exclude),
		docstore.WithObserver(p),
		docstore.WithLogger(p.log),
	)
	return p, nil
}

// Scanner returns the scanner used for source matching
func (p *Pipeline) Scanner() *docstore.Scanner {
	return p.scanner
}

// Run executes one full ingestion
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	rec := monitor.NewRecorder()

	// 1. Load
	var scan *docstore.ScanResult
	err := rec.Track(monitor.StageScan, func() (err error) {
		scan, err = p.scanner.ScanDirectory(ctx, p.opts.SourceDir)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.printf("%sLoaded %d documents.\n", emoji.Prefix("success"), len(scan.Documents))

	// 2. Split
	var split *chunker.Result
	err = rec.Track(monitor.StageSplit, func() (err error) {
		split, err = p.chunker.Split(scan.Documents)
		return err
	})
	if err != nil {
		p.printf("%sNo documents to process. Please check your files.\n", emoji.Prefix("error"))
		return nil, err
	}
	if split.Fallback {
		if split.SplitErr != nil {
			p.log.Warn("Splitting failed: %v", split.SplitErr)
		}
		p.printf("%sNo chunks were created. The document might be too small or there might be issues with the text extraction.\n", emoji.Prefix("warning"))
		p.printf("%sUsing original documents without chunking instead.\n", emoji.Prefix("point"))
	} else {
		p.printf("%sAfter splitting, got %d chunks.\n", emoji.Prefix("success"), len(split.Chunks))
	}
	p.log.Debug("First chunk content sample (first %d chars): %s...", sampleLength, sample(split.Chunks[0].Text))

	// 3. Embed
	info := p.embedder.Info()
	p.printf("%sEmbedding %d chunks with %s\n", emoji.Prefix("brain"), len(split.Chunks), info)
	var vectors [][]float32
	err = rec.Track(monitor.StageEmbed, func() (err error) {
		vectors, err = p.embedAll(ctx, split.Chunks, rec)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed chunks")
	}

	// 4. Build
	var index *vectorstore.Index
	err = rec.Track(monitor.StageBuild, func() (err error) {
		index, err = vectorstore.Build(ctx, split.Chunks, vectors, vectorstore.BuildOptions{
			Manifest: vectorstore.Manifest{
				Collection:   p.opts.Collection,
				Provider:     info.Provider,
				Model:        info.Model,
				Documents:    len(scan.Documents),
				ChunkSize:    p.opts.ChunkSize,
				ChunkOverlap: p.opts.ChunkOverlap,
			},
			Concurrency: p.opts.Concurrency,
		})
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build the vector database")
	}
	p.printf("%sCreated vector database with %d documents.\n", emoji.Prefix("success"), index.Count())

	// 5. Persist
	err = rec.Track(monitor.StageSave, func() error {
		return index.Save(p.opts.IndexDir, p.opts.Compress)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to save the vector database")
	}
	p.printf("%sVector database saved successfully to folder %s!\n", emoji.Prefix("party"), p.opts.IndexDir)

	report := &Report{
		FilesMatched:    scan.Matched,
		DocumentsLoaded: len(scan.Documents),
		FilesFailed:     len(scan.Failed),
		Chunks:          len(split.Chunks),
		Fallback:        split.Fallback,
		Dimensions:      index.Manifest().Dimensions,
		IndexDir:        p.opts.IndexDir,
		Elapsed:         time.Since(start),
		Stages:          rec.Snapshot(),
	}
	p.log.InfoWithFields("Ingestion complete", []logger.Field{
		logger.F("documents", report.DocumentsLoaded),
		logger.F("chunks", report.Chunks),
		logger.F("dimensions", report.Dimensions),
		logger.Duration(report.Elapsed),
	})
	return report, nil
}

// FileLoaded implements docstore.Observer
func (p *Pipeline) FileLoaded(doc *docstore.Document, chars int) {
	p.printf("%sLoaded %s: %d characters\n", emoji.Prefix("success"), filepath.Base(doc.Source), chars)
}

// FileFailed implements docstore.Observer
func (p *Pipeline) FileFailed(path string, err error) {
	p.printf("%sError loading %s: %v\n", emoji.Prefix("warning"), path, err)
}

func (p *Pipeline) printf(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(p.out, format, args...); err != nil {
		p.log.Debug("failed to write progress: %v", err)
	}
}

func sample(text string) string {
	runes := []rune(text)
	if len(runes) > sampleLength {
		runes = runes[:sampleLength]
	}
	return string(runes)
}
