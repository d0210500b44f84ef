package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/docrag/internal/vectorstore"
)

// Output format names accepted by New
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Report is the answer to one query
type Report struct {
	Query string
	Hits  []vectorstore.Hit
	Took  time.Duration
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// New returns the formatter registered for format
func New(format string, color bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatText, "terminal":
		return NewTerminal(color), nil
	case FormatJSON:
		return NewJSON(), nil
	case FormatMarkdown, "md":
		return NewMarkdown(), nil
	case FormatCSV:
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: text, json, markdown, csv)", format)
	}
}
