package docstore

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extracted is the text and metadata an extractor pulls out of raw file bytes
type Extracted struct {
	Text     string
	Title    string
	Metadata map[string]string
	// Warning is a problem that cost metadata but not the document
	Warning error
}

// Extractor turns raw file bytes into plain text
type Extractor interface {
	Format() string
	Extract(data []byte) (*Extracted, error)
}

// skippedElements never contribute visible text
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// HTMLExtractor extracts visible text from HTML, dropping script and style content
type HTMLExtractor struct{}

func (HTMLExtractor) Format() string { return FormatHTML }

// Extract walks the parsed tree and joins every trimmed, non-empty text node with a single space.
func (HTMLExtractor) Extract(data []byte) (*Extracted, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var parts []string
	var title string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Title && title == "" {
				title = strings.TrimSpace(textContent(n))
			}
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return &Extracted{
		Text:     strings.Join(parts, " "),
		Title:    title,
		Metadata: map[string]string{},
	}, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// MarkdownExtractor passes markdown through unchanged, reading front-matter into metadata
type MarkdownExtractor struct{}

func (MarkdownExtractor) Format() string { return FormatMarkdown }

// Extract never fails: a leading "---" block that is not a YAML mapping
// (a horizontal rule, say) is kept as text and reported as a warning.
func (MarkdownExtractor) Extract(data []byte) (*Extracted, error) {
	text := string(data)
	meta, body, err := ExtractFrontmatter(text)
	if err != nil {
		meta, body = map[string]string{}, text
	}

	title := meta["title"]
	if title == "" {
		title = firstHeading(body)
	}

	return &Extracted{Text: text, Title: title, Metadata: meta, Warning: err}, nil
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// PDFExtractor extracts plain text from PDF files
type PDFExtractor struct{}

func (PDFExtractor) Format() string { return FormatPDF }

func (PDFExtractor) Extract(data []byte) (*Extracted, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, fmt.Errorf("failed to read PDF text: %w", err)
	}

	return &Extracted{
		Text:     strings.TrimSpace(buf.String()),
		Metadata: map[string]string{"pages": fmt.Sprintf("%d", r.NumPage())},
	}, nil
}

// DefaultExtractors maps lower-case extensions to their extractor
func DefaultExtractors() map[string]Extractor {
	return map[string]Extractor{
		".html":     HTMLExtractor{},
		".htm":      HTMLExtractor{},
		".md":       MarkdownExtractor{},
		".markdown": MarkdownExtractor{},
		".pdf":      PDFExtractor{},
	}
}
