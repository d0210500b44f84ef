package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/yildizm/docrag/internal/logger"
)

// Scanner walks a source tree and loads every supported file as a Document
type Scanner struct {
	fs         afero.Fs
	extensions []string
	exclude    []string
	extractors map[string]Extractor
	observer   Observer
	log        *logger.Logger
}

// Option configures a Scanner
type Option func(*Scanner)

// WithFs sets the filesystem the scanner reads from
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) { s.fs = fs }
}

// WithExtensions sets the matched file extensions
func WithExtensions(exts []string) Option {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.extensions = lo.Map(exts, func(e string, _ int) string { return strings.ToLower(e) })
		}
	}
}

// WithExclude sets directory name patterns that are skipped. An empty list
// excludes nothing.
func WithExclude(patterns []string) Option {
	return func(s *Scanner) { s.exclude = patterns }
}

// WithObserver sets the receiver of per-file events
func WithObserver(o Observer) Option {
	return func(s *Scanner) { s.observer = o }
}

// WithLogger sets the logger for non-fatal extraction problems
func WithLogger(l *logger.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// WithExtractor registers an extractor for an extension
func WithExtractor(ext string, e Extractor) Option {
	return func(s *Scanner) { s.extractors[strings.ToLower(ext)] = e }
}

// NewScanner creates a scanner with the default HTML and Markdown extensions.
// Every directory is walked unless excluded with WithExclude.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		fs:         afero.NewOsFs(),
		extensions: []string{".html", ".htm", ".md", ".markdown"},
		extractors: DefaultExtractors(),
		observer:   stderrObserver{},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Matches reports whether path has one of the scanned extensions
func (s *Scanner) Matches(path string) bool {
	return lo.Contains(s.extensions, strings.ToLower(filepath.Ext(path)))
}

// Excluded reports whether a directory name matches one of the exclude patterns
func (s *Scanner) Excluded(dirName string) bool {
	return lo.ContainsBy(s.exclude, func(pattern string) bool {
		matched, _ := filepath.Match(pattern, dirName)
		return matched
	})
}

// CheckSource verifies that root exists and is a directory
func (s *Scanner) CheckSource(root string) error {
	info, err := s.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, root)
		}
		return fmt.Errorf("failed to stat source directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return nil
}

// FindFiles returns every matching file under root in lexical order
func (s *Scanner) FindFiles(ctx context.Context, root string) ([]string, error) {
	if err := s.CheckSource(root); err != nil {
		return nil, err
	}

	var files []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			s.observer.FileFailed(path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path != root && s.Excluded(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.Matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s (extensions: %s)", ErrNoFiles, root, strings.Join(s.extensions, ", "))
	}
	return files, nil
}

// ScanDirectory loads every matching file under root. Files that fail to
// load are reported to the observer and skipped.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) (*ScanResult, error) {
	files, err := s.FindFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Matched: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.ScanFile(path)
		if err != nil {
			result.Failed = append(result.Failed, &FileError{Path: path, Err: err})
			s.observer.FileFailed(path, err)
			continue
		}

		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			doc.ID = filepath.ToSlash(rel)
		}
		result.Documents = append(result.Documents, doc)
		s.observer.FileLoaded(doc, utf8.RuneCountInString(doc.Text))
	}

	return result, nil
}

// ScanFile loads a single file
func (s *Scanner) ScanFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := s.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if extractor.Format() != FormatPDF && !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	extracted, err := extractor.Extract(data)
	if err != nil {
		return nil, err
	}
	if extracted.Warning != nil {
		s.log.Debug("Keeping %s without front matter: %v", path, extracted.Warning)
	}

	title := extracted.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &Document{
		ID:           filepath.ToSlash(path),
		Source:       path,
		Title:        title,
		Text:         norm.NFC.String(extracted.Text),
		Format:       extractor.Format(),
		Metadata:     extracted.Metadata,
		LastModified: info.ModTime(),
		Size:         info.Size(),
	}, nil
}

// stderrObserver reports failures the way the CLI does when no observer is set
type stderrObserver struct{}

func (stderrObserver) FileLoaded(*Document, int) {}

func (stderrObserver) FileFailed(path string, err error) {
	fmt.Fprintf(os.Stderr, "Warning: Failed to load file %s: %v\n", path, err)
}
