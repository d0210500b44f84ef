package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// terminalFormatter formats results as plain text for terminal display
type terminalFormatter struct {
	color     bool
	header    lipgloss.Style
	title     lipgloss.Style
	relevance lipgloss.Style
	label     lipgloss.Style
	source    lipgloss.Style
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	return &terminalFormatter{
		color:     color,
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		title:     lipgloss.NewStyle().Bold(true),
		relevance: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		source:    lipgloss.NewStyle().Faint(true),
	}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	if len(report.Hits) == 0 {
		b.WriteString("\nNo relevant results found. Try a different question.\n")
		return []byte(b.String()), nil
	}

	b.WriteString("\n" + f.render(f.header, fmt.Sprintf("Found %d relevant results:", len(report.Hits))) + "\n")
	b.WriteString(Separator + "\n")

	for i, hit := range report.Hits {
		f.writeHit(&b, i+1, hit.Relevance(), hit.Text, sourceOf(hit))
	}

	return []byte(b.String()), nil
}

// writeHit writes one ranked result followed by the separator
func (f *terminalFormatter) writeHit(b *strings.Builder, rank int, relevance float64, text, source string) {
	rel := f.render(f.relevance, FormatRelevance(relevance)+"%")
	fmt.Fprintf(b, "%s (Relevance: %s):\n", f.render(f.title, fmt.Sprintf("Result %d", rank)), rel)
	fmt.Fprintf(b, "%s %s\n", f.render(f.label, "Content:"), text)
	fmt.Fprintf(b, "%s %s\n", f.render(f.label, "Source:"), f.render(f.source, source))
	b.WriteString(Separator + "\n")
}

func (f *terminalFormatter) render(style lipgloss.Style, s string) string {
	if !f.color {
		return s
	}
	return style.Render(s)
}
