package services

import (
	"context"
	"fmt"
	"os"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driving"
	"github.com/monster2z/llm-rag-pro/internal/logger"
)

// Ensure DocumentManager implements the interface.
var _ driving.DocumentService = (*DocumentManager)(nil)

// DocumentManager exposes the versioned corpus: listing, history,
// deactivation, and deletion. Mutations rebuild the combined index so
// retrieval reflects the new active set.
type DocumentManager struct {
	registry driven.DocumentRegistry
	indexes  *IndexManager
}

// NewDocumentManager creates a document service.
func NewDocumentManager(registry driven.DocumentRegistry, indexes *IndexManager) *DocumentManager {
	return &DocumentManager{
		registry: registry,
		indexes:  indexes,
	}
}

// ListActive returns active versions, optionally filtered by category.
func (m *DocumentManager) ListActive(ctx context.Context, category string) ([]domain.DocumentVersion, error) {
	return m.registry.GetActive(ctx, category)
}

// History returns every version of a family, newest first.
func (m *DocumentManager) History(ctx context.Context, filename, category string) ([]domain.DocumentVersion, error) {
	return m.registry.GetFamilyHistory(ctx, filename, category)
}

// Deactivate soft-deletes a version and rebuilds the combined index.
func (m *DocumentManager) Deactivate(ctx context.Context, docID string) error {
	if err := m.registry.Deactivate(ctx, docID); err != nil {
		return err
	}
	return m.indexes.Rebuild(ctx)
}

// Delete removes a version. Permanent delete also removes the persisted
// index directory so a later rebuild never references it.
func (m *DocumentManager) Delete(ctx context.Context, docID string, permanent bool, deletedBy string) error {
	var indexPath string
	if permanent {
		doc, err := m.registry.Get(ctx, docID)
		if err != nil {
			return err
		}
		indexPath = doc.IndexPath
	}

	if err := m.registry.Delete(ctx, docID, permanent, deletedBy); err != nil {
		return err
	}

	if permanent && indexPath != "" {
		if err := os.RemoveAll(indexPath); err != nil {
			logger.Warn("removing index directory %s: %v", indexPath, err)
		}
	}

	if err := m.indexes.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding combined index: %w", err)
	}
	return nil
}

// Categories returns the distinct categories across active documents.
func (m *DocumentManager) Categories(ctx context.Context) ([]string, error) {
	return m.registry.ListCategories(ctx)
}

// VersionLog returns the version-change log for a doc ID, oldest first.
func (m *DocumentManager) VersionLog(ctx context.Context, docID string) ([]domain.VersionLogEntry, error) {
	return m.registry.VersionLog(ctx, docID)
}
