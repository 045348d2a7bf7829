package extractors

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Ensure Text implements the interface.
var _ driven.Extractor = (*Text)(nil)

// Text extracts plain text files (txt, md) as a single page.
type Text struct{}

// NewText creates a new plain text extractor.
func NewText() *Text {
	return &Text{}
}

// Extract reads the file at path and returns its content as one page.
func (e *Text) Extract(_ context.Context, path string) ([]driven.Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return nil, nil
	}
	return []driven.Page{{Text: text}}, nil
}
