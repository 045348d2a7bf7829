package extractors

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Ensure CSV implements the interface.
var _ driven.Extractor = (*CSV)(nil)

// CSV extracts tabular files. Each data row becomes one page of
// "header: value" lines, numbered by row order, so retrieval can
// point at the exact row that answered a question.
type CSV struct{}

// NewCSV creates a new CSV extractor.
func NewCSV() *CSV {
	return &CSV{}
}

// Extract reads the CSV at path and returns one page per data row.
func (e *CSV) Extract(_ context.Context, path string) ([]driven.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parsing csv: %v", domain.ErrInvalidInput, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	headers := records[0]
	var pages []driven.Page
	for i, record := range records[1:] {
		var lines []string
		for j, value := range record {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
				lines = append(lines, strings.TrimSpace(headers[j])+": "+value)
			} else {
				lines = append(lines, value)
			}
		}
		if len(lines) == 0 {
			continue
		}
		pages = append(pages, driven.Page{
			Text:   strings.Join(lines, "\n"),
			Number: i + 1,
		})
	}

	return pages, nil
}
