package domain

import (
	"strings"
	"time"
)

// DocumentVersion represents one registered version of an uploaded document.
// A new upload of the same filename within the same category produces a new
// DocumentVersion with a fresh DocID; rows are never mutated except to toggle
// IsActive.
type DocumentVersion struct {
	// DocID is the unique identifier for this version (one per upload event).
	DocID string

	// Filename is the original upload filename.
	// Filename and Category together identify a document family.
	Filename string

	// Category is the corpus category this document belongs to.
	Category string

	// FileType is the declared file type (pdf, docx, csv, pptx).
	FileType string

	// Version is the position within the family, starting at 1.
	// Strictly increasing per family, never reused.
	Version int

	// ChunkCount is the number of chunks produced at ingestion.
	ChunkCount int

	// UploadedBy is the username of the uploader.
	UploadedBy string

	// UploadTime is when ingestion completed.
	UploadTime time.Time

	// Description is the optional uploader-supplied description.
	Description string

	// IsActive marks the version eligible for retrieval.
	// At most one active version per family.
	IsActive bool

	// IndexPath is the directory holding this version's persisted vector index.
	IndexPath string
}

// FamilyKey returns the identity of the document family this version belongs to.
func (d *DocumentVersion) FamilyKey() string {
	return FamilyKey(d.Filename, d.Category)
}

// FamilyKey builds the (filename, category) family identity used for
// version-assignment serialisation.
func FamilyKey(filename, category string) string {
	return filename + "\x00" + category
}

// VersionLogEntry is an immutable record of a version transition.
// NewVersion 0 is the sentinel for a permanent delete.
type VersionLogEntry struct {
	ID    int64
	DocID string

	// Filename and Category identify the family, so the log remains the
	// family's version high-water mark even after its document rows are
	// permanently deleted.
	Filename string
	Category string

	PreviousVersion   int
	NewVersion        int
	ChangeDescription string
	ChangedBy         string
	ChangedAt         time.Time
}

// Chunk is a bounded text segment produced by splitting a source document.
// Chunks are immutable once created and carry their owning metadata so a
// merged index can attribute every hit without a registry lookup.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocID links to the owning DocumentVersion.
	DocID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Page is the source page or record number, 0 when not applicable.
	Page int

	// SourceFile is the original upload filename.
	SourceFile string

	// FileType is the declared file type of the source.
	FileType string

	// Category is the owning document's category.
	Category string

	// Version is the owning document's version number.
	Version int

	// UploadedBy is the username of the uploader.
	UploadedBy string

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// Registration carries the metadata needed to register a new document version.
type Registration struct {
	// DocID pins the new version's identifier when set, so chunks embedded
	// before registration carry the same ID as the registry row. Empty
	// means the registry generates one.
	DocID string

	Filename    string
	Category    string
	FileType    string
	ChunkCount  int
	UploadedBy  string
	Description string
	IndexPath   string
}

// Validate checks the registration for malformed input.
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.Filename) == "" {
		return ErrInvalidInput
	}
	if !ValidCategory(r.Category) {
		return ErrInvalidInput
	}
	return nil
}

// ValidCategory reports whether a category name is usable.
// Path separators are rejected because categories appear in index paths.
func ValidCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return false
	}
	return !strings.ContainsAny(category, "/\\\x00")
}
