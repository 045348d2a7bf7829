package driven

import "context"

// Page is one unit of extracted text: a PDF page, a spreadsheet record,
// a DOCX body, or a PPTX slide.
type Page struct {
	// Text is the extracted plain text.
	Text string

	// Number is the 1-based page, record, or slide number.
	// 0 when the format has no page concept.
	Number int
}

// Extractor turns a raw document file into plain text pages.
type Extractor interface {
	// Extract reads the file at path and returns its text pages.
	Extract(ctx context.Context, path string) ([]Page, error)
}

// ExtractorRegistry selects the extractor for a declared file type.
type ExtractorRegistry interface {
	// Lookup returns the extractor for a file type, or
	// domain.ErrUnsupportedType when none is registered.
	Lookup(fileType string) (Extractor, error)

	// SupportedTypes returns the registered file types, sorted.
	SupportedTypes() []string
}
