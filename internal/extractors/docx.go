package extractors

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Ensure DOCX implements the interface.
var _ driven.Extractor = (*DOCX)(nil)

// DOCX extracts text from Word documents. The format has no page
// boundaries in the XML, so the whole document is one page.
type DOCX struct{}

// NewDOCX creates a new DOCX extractor.
func NewDOCX() *DOCX {
	return &DOCX{}
}

// Extract reads the DOCX at path and returns its text as a single page.
func (e *DOCX) Extract(_ context.Context, path string) ([]driven.Page, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening docx: %v", domain.ErrInvalidInput, err)
	}
	defer reader.Close()

	text, err := extractWordText(&reader.Reader)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return []driven.Page{{Text: text}}, nil
}

// extractWordText extracts text from word/document.xml.
func extractWordText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: reading document.xml", domain.ErrInvalidInput)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: reading document.xml", domain.ErrInvalidInput)
		}

		return parseWordXML(content), nil
	}
	return "", nil
}

// wordXML represents the structure of word/document.xml.
type wordXML struct {
	Body struct {
		Paragraphs []wordParagraph `xml:"p"`
	} `xml:"body"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text []wordText `xml:"t"`
}

type wordText struct {
	Content string `xml:",chardata"`
}

// parseWordXML extracts text content from the document XML.
func parseWordXML(content []byte) string {
	var doc wordXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}
