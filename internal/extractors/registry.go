package extractors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file types to extractors.
type Registry struct {
	byType map[string]driven.Extractor
}

// NewRegistry creates a registry with the default set of extractors.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]driven.Extractor)}
	r.Register("pdf", NewPDF())
	r.Register("docx", NewDOCX())
	r.Register("pptx", NewPPTX())
	r.Register("csv", NewCSV())
	r.Register("txt", NewText())
	r.Register("md", NewText())
	return r
}

// Register adds an extractor for a file type, replacing any existing one.
func (r *Registry) Register(fileType string, e driven.Extractor) {
	r.byType[normalizeType(fileType)] = e
}

// Lookup returns the extractor for a file type.
func (r *Registry) Lookup(fileType string) (driven.Extractor, error) {
	e, ok := r.byType[normalizeType(fileType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, fileType)
	}
	return e, nil
}

// SupportedTypes returns the registered file types in sorted order.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// normalizeType lowercases and strips a leading dot so ".PDF" and "pdf"
// resolve to the same extractor.
func normalizeType(fileType string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileType)), ".")
}
