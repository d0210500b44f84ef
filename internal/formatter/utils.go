package formatter

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/yildizm/docrag/internal/vectorstore"
)

const separatorWidth = 50

// Separator is the rule printed between results
var Separator = strings.Repeat("-", separatorWidth)

// FormatRelevance renders a relevance percentage with at least one decimal,
// so 50 prints as "50.0" and 87.123 as "87.12".
func FormatRelevance(relevance float64) string {
	s := strconv.FormatFloat(relevance, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// sourceOf returns the hit source or "Unknown"
func sourceOf(hit vectorstore.Hit) string {
	return lo.Ternary(hit.Source != "", hit.Source, "Unknown")
}

// singleLine collapses newlines so a chunk fits one table cell
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to n runes, appending "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
