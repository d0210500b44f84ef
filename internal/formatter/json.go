package formatter

import (
	"encoding/json"

	"github.com/samber/lo"

	"github.com/yildizm/docrag/internal/vectorstore"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written for one query
type JSONOutput struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	TookMS  int64         `json:"took_ms"`
	Results []*ResultJSON `json:"results"`
}

// ResultJSON is a single ranked hit
type ResultJSON struct {
	Rank       int               `json:"rank"`
	Relevance  float64           `json:"relevance"`
	Distance   float32           `json:"distance"`
	Similarity float32           `json:"similarity"`
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (f *jsonFormatter) Format(report *Report) ([]byte, error) {
	output := &JSONOutput{
		Query:  report.Query,
		Count:  len(report.Hits),
		TookMS: report.Took.Milliseconds(),
		Results: lo.Map(report.Hits, func(hit vectorstore.Hit, i int) *ResultJSON {
			return &ResultJSON{
				Rank:       i + 1,
				Relevance:  hit.Relevance(),
				Distance:   hit.Distance,
				Similarity: hit.Similarity,
				ID:         hit.ID,
				Source:     sourceOf(hit),
				Content:    hit.Text,
				Metadata:   hit.Metadata,
			}
		}),
	}

	return json.MarshalIndent(output, "", "  ")
}
