package driven

import (
	"context"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// DocumentRegistry persists document-version metadata and the version log.
// Backed by SQLite for durable relational storage.
type DocumentRegistry interface {
	// RegisterVersion writes a new DocumentVersion with version
	// 1 + FamilyMaxVersion. The new version is active; an active prior
	// version of the family is deactivated in the same transaction and a
	// VersionLogEntry is appended capturing the transition. A first upload
	// writes no log entry.
	RegisterVersion(ctx context.Context, reg domain.Registration) (*domain.DocumentVersion, error)

	// FamilyMaxVersion returns the highest version number a family has ever
	// held, counting both live rows and the version log. Permanently deleted
	// version numbers are never reused, so the log acts as the family's
	// durable high-water mark. Zero for an unknown family.
	FamilyMaxVersion(ctx context.Context, filename, category string) (int, error)

	// GetActive returns all active versions, optionally filtered by category
	// (empty category means all). Reflects registry state at call time.
	GetActive(ctx context.Context, category string) ([]domain.DocumentVersion, error)

	// GetFamilyHistory returns every version of a family, newest first.
	GetFamilyHistory(ctx context.Context, filename, category string) ([]domain.DocumentVersion, error)

	// Get retrieves a single version by doc ID.
	Get(ctx context.Context, docID string) (*domain.DocumentVersion, error)

	// Deactivate flips IsActive off for a version.
	// Returns domain.ErrNotFound for an unknown doc ID.
	Deactivate(ctx context.Context, docID string) error

	// Delete removes a version. Soft delete flips IsActive off; permanent
	// delete removes the row and appends a NewVersion=0 sentinel log entry.
	// Returns domain.ErrNotFound for an unknown doc ID.
	Delete(ctx context.Context, docID string, permanent bool, deletedBy string) error

	// ListCategories returns the distinct categories across active documents.
	ListCategories(ctx context.Context) ([]string, error)

	// VersionLog returns the log entries recorded for a doc ID, oldest first.
	VersionLog(ctx context.Context, docID string) ([]domain.VersionLogEntry, error)
}
