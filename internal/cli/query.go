package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yildizm/docrag/internal/config"
	"github.com/yildizm/docrag/internal/embedding"
	"github.com/yildizm/docrag/internal/formatter"
	"github.com/yildizm/docrag/internal/shell"
)

var (
	queryIndex string
	queryTopK  int
)

func newQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Ask questions against the vector index",
		Long: `Load the embedding model and the saved vector index, then answer questions
interactively with the most relevant passages and their relevance scores.

Type 'exit', 'quit' or 'q' to end the session.`,
		Example: `  docrag query
  docrag query --top-k 3 --output markdown
  echo "how do I deploy?" | docrag query -o json`,
		Args: cobra.NoArgs,
		RunE: runQuery,
	}

	cmd.Flags().StringVarP(&queryIndex, "index", "i", "", "index directory (default from config: vector_index)")
	cmd.Flags().IntVarP(&queryTopK, "top-k", "k", shell.DefaultTopK, "number of results per question")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}
	if cmd.Flag("index").Changed {
		cfg.Index.Dir = queryIndex
	}
	if cmd.Flag("top-k").Changed {
		cfg.Query.TopK = queryTopK
	}
	indexDir := config.ExpandPath(cfg.Index.Dir)

	out := cmd.OutOrStdout()
	log := newLogger("query")

	fmtr, err := formatter.New(getOutputFormat(), colorEnabled(cfg))
	if err != nil {
		return err
	}

	index, embedder, err := shell.Load(out, indexDir, func() (embedding.Embedder, error) {
		return newEmbedder(cmd.Context(), cfg)
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := embedder.Close(); err != nil {
			log.Debug("failed to close embedder: %v", err)
		}
	}()

	reader := newLineReader(cmd, cfg)
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warn("Failed to save query history: %v", err)
		}
	}()

	sh := shell.New(index, embedder,
		shell.WithReader(reader),
		shell.WithOutput(out),
		shell.WithFormatter(fmtr),
		shell.WithTopK(cfg.Query.TopK),
		shell.WithPrompt(cfg.Query.Prompt),
		shell.WithLogger(log),
	)
	err = sh.Run(cmd.Context())
	if isVerbose() {
		for _, st := range sh.Stats() {
			log.Info("%s: %d calls, avg %s, max %s", st.Stage, st.Count, st.Avg, st.Max)
		}
	}
	return err
}

// newLineReader uses line editing when stdin is a terminal
func newLineReader(cmd *cobra.Command, cfg *config.Config) shell.LineReader {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return shell.NewTerminalReader(config.ExpandPath(cfg.Query.HistoryFile))
	}
	return shell.NewBufferedReader(in, cmd.OutOrStdout())
}
