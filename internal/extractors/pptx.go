package extractors

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Ensure PPTX implements the interface.
var _ driven.Extractor = (*PPTX)(nil)

// PPTX extracts text from PowerPoint files, one page per slide.
type PPTX struct{}

// NewPPTX creates a new PPTX extractor.
func NewPPTX() *PPTX {
	return &PPTX{}
}

// Extract reads the PPTX at path and returns one page per slide,
// numbered by slide order. Slides with no text are skipped.
func (e *PPTX) Extract(_ context.Context, path string) ([]driven.Page, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening pptx: %v", domain.ErrInvalidInput, err)
	}
	defer reader.Close()

	// Slide entries are named ppt/slides/slideN.xml
	type slideFile struct {
		number int
		file   *zip.File
	}
	var slides []slideFile
	for _, file := range reader.File {
		var n int
		if _, err := fmt.Sscanf(file.Name, "ppt/slides/slide%d.xml", &n); err != nil {
			continue
		}
		slides = append(slides, slideFile{number: n, file: file})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var pages []driven.Page
	for _, slide := range slides {
		rc, err := slide.file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: reading slide %d", domain.ErrInvalidInput, slide.number)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading slide %d", domain.ErrInvalidInput, slide.number)
		}

		text := parseSlideXML(content)
		if text == "" {
			continue
		}
		pages = append(pages, driven.Page{Text: text, Number: slide.number})
	}

	return pages, nil
}

// slideXML captures every a:t text element in a slide. Using a flat
// collector keeps text from shapes, tables, and grouped elements alike.
type slideXML struct {
	Texts []string `xml:"cSld>spTree>sp>txBody>p>r>t"`
}

// parseSlideXML extracts text content from a slide XML document.
func parseSlideXML(content []byte) string {
	var slide slideXML
	if err := xml.Unmarshal(content, &slide); err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(slide.Texts, "\n"))
}
