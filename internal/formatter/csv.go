package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// csvFormatter formats hits as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(report *Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{
		"Rank",
		"Relevance",
		"Distance",
		"Source",
		"Chunk ID",
		"Content",
	}

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, hit := range report.Hits {
		record := []string{
			strconv.Itoa(i + 1),
			FormatRelevance(hit.Relevance()),
			strconv.FormatFloat(float64(hit.Distance), 'f', 4, 32),
			sourceOf(hit),
			hit.ID,
			escapeCSVString(hit.Text),
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// escapeCSVString flattens newlines and truncates long chunks
func escapeCSVString(s string) string {
	return truncate(singleLine(s), 200)
}
