package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/docrag/internal/config"
	"github.com/yildizm/docrag/internal/docstore"
	"github.com/yildizm/docrag/internal/emoji"
	"github.com/yildizm/docrag/internal/ingest"
)

var (
	ingestSource   string
	ingestIndex    string
	ingestWatch    bool
	ingestCompress bool
)

func newIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build the vector index from a directory of documents",
		Long: `Load every HTML and Markdown document under the source directory, split
the text into overlapping chunks, embed each chunk and save the vector index.

Any existing index in the index directory is replaced.`,
		Example: `  docrag ingest
  docrag ingest --source ./docs --index ./vector_index
  docrag ingest --watch`,
		Args: cobra.NoArgs,
		RunE: runIngest,
	}

	cmd.Flags().StringVarP(&ingestSource, "source", "s", "", "source directory (default from config: sources)")
	cmd.Flags().StringVarP(&ingestIndex, "index", "i", "", "index directory (default from config: vector_index)")
	cmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest whenever a source file changes")
	cmd.Flags().BoolVar(&ingestCompress, "compress", false, "gzip the saved index")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}
	applyIngestFlags(cmd, cfg)

	out := cmd.OutOrStdout()
	log := newLogger("ingest")
	ctx := cmd.Context()

	// a missing or empty source directory is fatal before the model is touched
	sources := docstore.NewScanner(
		docstore.WithExtensions(cfg.Sources.Extensions),
		docstore.WithExclude(cfg.Sources.Exclude),
	)
	if _, err := sources.FindFiles(ctx, cfg.Sources.Dir); err != nil {
		return err
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load embedding model: %w", err)
	}
	defer func() {
		if err := embedder.Close(); err != nil {
			log.Debug("failed to close embedder: %v", err)
		}
	}()
	fmt.Fprintf(out, "%sEmbedding model loaded successfully: %s\n", emoji.Prefix("success"), embedder.Info())

	pipeline, err := ingest.NewPipeline(embedder, ingest.Options{
		SourceDir:    cfg.Sources.Dir,
		Extensions:   cfg.Sources.Extensions,
		Exclude:      cfg.Sources.Exclude,
		IndexDir:     cfg.Index.Dir,
		Collection:   cfg.Index.Collection,
		Compress:     cfg.Index.Compress,
		ChunkSize:    cfg.Chunking.Size,
		ChunkOverlap: cfg.Chunking.Overlap,
		BatchSize:    cfg.Embedding.BatchSize,
		Concurrency:  cfg.Embedding.Concurrency,
	}, ingest.WithOutput(out), ingest.WithLogger(log))
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	if err := writeIngestReport(out, report); err != nil {
		return err
	}

	if !ingestWatch {
		return nil
	}

	fmt.Fprintf(out, "%sWatching %s for changes (Ctrl+C to stop)...\n", emoji.Prefix("watch"), cfg.Sources.Dir)
	watcher := ingest.NewWatcher(cfg.Sources.Dir, pipeline.Scanner(), func(ctx context.Context) error {
		report, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}
		return writeIngestReport(out, report)
	}, log)
	return watcher.Watch(ctx)
}

// applyIngestFlags lets explicit flags override the loaded configuration
func applyIngestFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flag("source").Changed {
		cfg.Sources.Dir = ingestSource
	}
	if cmd.Flag("index").Changed {
		cfg.Index.Dir = ingestIndex
	}
	if cmd.Flag("compress").Changed {
		cfg.Index.Compress = ingestCompress
	}
	cfg.Sources.Dir = config.ExpandPath(cfg.Sources.Dir)
	cfg.Index.Dir = config.ExpandPath(cfg.Index.Dir)
}

func writeIngestReport(out io.Writer, report *ingest.Report) error {
	if getOutputFormat() == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	if isVerbose() {
		fmt.Fprintf(out, "%sIngestion summary:\n", emoji.Prefix("info"))
		fmt.Fprintf(out, "   Files matched: %d\n", report.FilesMatched)
		fmt.Fprintf(out, "   Documents loaded: %d\n", report.DocumentsLoaded)
		fmt.Fprintf(out, "   Files failed: %d\n", report.FilesFailed)
		fmt.Fprintf(out, "   Chunks: %d (fallback: %t)\n", report.Chunks, report.Fallback)
		fmt.Fprintf(out, "   Dimensions: %d\n", report.Dimensions)
		fmt.Fprintf(out, "   Elapsed: %s\n", report.Elapsed.Round(time.Millisecond))
		for _, st := range report.Stages {
			fmt.Fprintf(out, "     %-12s %s (%d calls)\n", st.Stage, st.Total.Round(time.Millisecond), st.Count)
		}
	}
	return nil
}
