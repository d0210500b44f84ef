// Package shell implements the interactive question loop over a loaded vector index.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/yildizm/docrag/internal/embedding"
	"github.com/yildizm/docrag/internal/emoji"
	"github.com/yildizm/docrag/internal/formatter"
	"github.com/yildizm/docrag/internal/logger"
	"github.com/yildizm/docrag/internal/monitor"
	"github.com/yildizm/docrag/internal/vectorstore"
)

const (
	// DefaultTopK is the number of results returned per question
	DefaultTopK = 5
	// DefaultPrompt is shown before every question
	DefaultPrompt = "Enter your question: "
)

// exitWords end the session, compared case-insensitively
var exitWords = []string{"exit", "quit", "q"}

// Searcher finds the chunks nearest to a query vector
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]vectorstore.Hit, error)
}

// Shell is the interactive query loop
type Shell struct {
	index     Searcher
	embedder  embedding.Embedder
	reader    LineReader
	formatter formatter.Formatter
	out       io.Writer
	topK      int
	prompt    string
	log       *logger.Logger
	stats     *monitor.Recorder
}

// Option customizes a Shell
type Option func(*Shell)

// WithReader sets the input source
func WithReader(r LineReader) Option {
	return func(s *Shell) { s.reader = r }
}

// WithOutput sets where results are printed
func WithOutput(w io.Writer) Option {
	return func(s *Shell) { s.out = w }
}

// WithFormatter sets the result formatter
func WithFormatter(f formatter.Formatter) Option {
	return func(s *Shell) { s.formatter = f }
}

// WithTopK sets the number of results per question
func WithTopK(k int) Option {
	return func(s *Shell) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithPrompt sets the input prompt
func WithPrompt(p string) Option {
	return func(s *Shell) {
		if p != "" {
			s.prompt = p
		}
	}
}

// WithLogger sets the shell logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Shell) { s.log = l }
}

// New creates a shell over a loaded index and the embedder it was built with
func New(index Searcher, embedder embedding.Embedder, opts ...Option) *Shell {
	s := &Shell{
		index:     index,
		embedder:  embedder,
		formatter: formatter.NewTerminal(false),
		out:       os.Stdout,
		topK:      DefaultTopK,
		prompt:    DefaultPrompt,
		log:       logger.Nop(),
		stats:     monitor.NewRecorder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reader == nil {
		s.reader = NewBufferedReader(os.Stdin, s.out)
	}
	return s
}

// Run prints the banner and answers questions until the user exits, input
// ends or ctx is cancelled. A failed search is printed and returned.
func (s *Shell) Run(ctx context.Context) error {
	s.printBanner()

	for {
		if ctx.Err() != nil {
			return nil
		}

		s.printf("\n")
		line, err := s.reader.ReadLine(s.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.printGoodbye()
				return nil
			}
			return s.fail(fmt.Errorf("failed to read input: %w", err))
		}

		query := strings.TrimSpace(line)
		if IsExit(query) {
			s.printGoodbye()
			return nil
		}
		if query == "" {
			s.printf("Please enter a valid question.\n")
			continue
		}
		s.reader.AppendHistory(query)

		if err := s.answer(ctx, query); err != nil {
			return s.fail(err)
		}
	}
}

// answer embeds one question, searches and prints the results
func (s *Shell) answer(ctx context.Context, query string) error {
	start := time.Now()

	var vector []float32
	err := s.stats.Track(monitor.StageEmbedQuery, func() (err error) {
		vector, err = s.embedder.EmbedQuery(ctx, query)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to embed question: %w", err)
	}

	var hits []vectorstore.Hit
	err = s.stats.Track(monitor.StageSearch, func() (err error) {
		hits, err = s.index.Search(ctx, vector, s.topK)
		return err
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	report := &formatter.Report{Query: query, Hits: hits, Took: time.Since(start)}
	s.log.DebugWithFields("Search complete", []logger.Field{
		logger.Count(len(hits)),
		logger.Duration(report.Took),
	})

	out, err := s.formatter.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	if _, err := s.out.Write(out); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// Stats returns per-stage timings for the questions answered so far
func (s *Shell) Stats() []monitor.StageStats {
	return s.stats.Snapshot()
}

// IsExit reports whether input ends the session
func IsExit(input string) bool {
	return lo.Contains(exitWords, strings.ToLower(strings.TrimSpace(input)))
}

func (s *Shell) printBanner() {
	s.printf("\n%sVector database loaded successfully!\n", emoji.Prefix("success"))
	s.printf("%s\n", formatter.Separator)
	s.printf("Personal RAG Query System\n")
	s.printf("Type 'exit' or 'quit' to end the session\n")
	s.printf("%s\n", formatter.Separator)
}

func (s *Shell) printGoodbye() {
	s.printf("\nThank you for using the Personal RAG Query System. Goodbye!\n")
}

func (s *Shell) fail(err error) error {
	PrintFailure(s.out, err)
	return err
}

func (s *Shell) printf(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		s.log.Debug("failed to write output: %v", err)
	}
}
