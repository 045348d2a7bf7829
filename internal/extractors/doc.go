// Package extractors turns uploaded files into pages of plain text.
//
// Each extractor handles one file type and reports its content as a slice
// of pages so downstream chunking can keep page numbers for citations.
// Formats without a page concept report a single page numbered zero.
package extractors
