package formatter

import (
	"fmt"
	"strings"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("## Query Results\n\n")
	fmt.Fprintf(&b, "**Question:** %s\n\n", report.Query)

	if len(report.Hits) == 0 {
		b.WriteString("_No relevant results found. Try a different question._\n")
		return []byte(b.String()), nil
	}

	f.writeSummaryTable(&b, report)

	for i, hit := range report.Hits {
		fmt.Fprintf(&b, "### Result %d (Relevance: %s%%)\n\n", i+1, FormatRelevance(hit.Relevance()))
		fmt.Fprintf(&b, "Source: `%s`\n\n", sourceOf(hit))
		for _, line := range strings.Split(hit.Text, "\n") {
			b.WriteString("> " + line + "\n")
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// writeSummaryTable writes one row per hit
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, report *Report) {
	b.WriteString("| Rank | Relevance | Source |\n")
	b.WriteString("|------|-----------|--------|\n")
	for i, hit := range report.Hits {
		source := strings.ReplaceAll(sourceOf(hit), "|", "\\|")
		fmt.Fprintf(b, "| %d | %s%% | %s |\n", i+1, FormatRelevance(hit.Relevance()), source)
	}
	b.WriteString("\n")
}
