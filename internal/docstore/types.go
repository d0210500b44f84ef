package docstore

import (
	"errors"
	"time"
)

// Document formats produced by the scanner
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

var (
	// ErrSourceNotFound is returned when the source directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")
	// ErrNotDirectory is returned when the source path is a regular file.
	ErrNotDirectory = errors.New("source path is not a directory")
	// ErrNoFiles is returned when the walk matched no supported files.
	ErrNoFiles = errors.New("no matching files found")
	// ErrUnsupportedFormat is returned for extensions without an extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrInvalidEncoding is returned for files that are not valid UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
)

// Document is the normalized plain text of one source file
type Document struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	Title        string            `json:"title"`
	Text         string            `json:"text"`
	Format       string            `json:"format"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	Size         int64             `json:"size"`
}

// FileError records a file that matched but could not be loaded
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ScanResult is the outcome of a directory scan
type ScanResult struct {
	Matched   int
	Documents []*Document
	Failed    []*FileError
}

// Observer receives per-file scan events
type Observer interface {
	FileLoaded(doc *Document, chars int)
	FileFailed(path string, err error)
}
