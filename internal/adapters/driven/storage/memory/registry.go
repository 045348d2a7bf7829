package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Registry is an in-memory document registry.
type Registry struct {
	mu     sync.RWMutex
	docs   map[string]domain.DocumentVersion
	log    []domain.VersionLogEntry
	nextID int64
}

var _ driven.DocumentRegistry = (*Registry)(nil)

// NewRegistry creates an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		docs: make(map[string]domain.DocumentVersion),
	}
}

// RegisterVersion appends a new version and deactivates the family's
// prior active version.
func (r *Registry) RegisterVersion(ctx context.Context, reg domain.Registration) (*domain.DocumentVersion, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	family := domain.FamilyKey(reg.Filename, reg.Category)

	maxVersion := r.familyMaxLocked(family)
	var priorID string
	var priorVersion int
	for id, doc := range r.docs {
		if domain.FamilyKey(doc.Filename, doc.Category) != family {
			continue
		}
		if doc.IsActive {
			priorID = id
			priorVersion = doc.Version
		}
	}

	now := time.Now().UTC()
	docID := reg.DocID
	if docID == "" {
		docID = uuid.New().String()
	}
	doc := domain.DocumentVersion{
		DocID:       docID,
		Filename:    reg.Filename,
		Category:    reg.Category,
		FileType:    reg.FileType,
		Version:     maxVersion + 1,
		ChunkCount:  reg.ChunkCount,
		UploadedBy:  reg.UploadedBy,
		UploadTime:  now,
		Description: reg.Description,
		IsActive:    true,
		IndexPath:   reg.IndexPath,
	}
	r.docs[doc.DocID] = doc

	if priorID != "" {
		prior := r.docs[priorID]
		prior.IsActive = false
		r.docs[priorID] = prior

		changeDesc := "new version upload"
		if reg.Description != "" {
			changeDesc += ": " + reg.Description
		}
		r.appendLog(domain.VersionLogEntry{
			DocID:             doc.DocID,
			Filename:          doc.Filename,
			Category:          doc.Category,
			PreviousVersion:   priorVersion,
			NewVersion:        doc.Version,
			ChangeDescription: changeDesc,
			ChangedBy:         reg.UploadedBy,
			ChangedAt:         now,
		})
	}

	return &doc, nil
}

// FamilyMaxVersion returns the highest version a family has ever held,
// counting both live versions and the log.
func (r *Registry) FamilyMaxVersion(ctx context.Context, filename, category string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.familyMaxLocked(domain.FamilyKey(filename, category)), nil
}

// familyMaxLocked must be called with the lock held. The log is the durable
// high-water mark: permanently deleted versions never have their numbers
// reused.
func (r *Registry) familyMaxLocked(family string) int {
	max := 0
	for _, doc := range r.docs {
		if domain.FamilyKey(doc.Filename, doc.Category) != family {
			continue
		}
		if doc.Version > max {
			max = doc.Version
		}
	}
	for _, e := range r.log {
		if domain.FamilyKey(e.Filename, e.Category) != family {
			continue
		}
		if e.PreviousVersion > max {
			max = e.PreviousVersion
		}
		if e.NewVersion > max {
			max = e.NewVersion
		}
	}
	return max
}

// GetActive returns active versions, optionally filtered by category.
func (r *Registry) GetActive(ctx context.Context, category string) ([]domain.DocumentVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []domain.DocumentVersion
	for _, doc := range r.docs {
		if !doc.IsActive {
			continue
		}
		if category != "" && doc.Category != category {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadTime.Before(docs[j].UploadTime)
	})
	return docs, nil
}

// GetFamilyHistory returns every version of a family, newest first.
func (r *Registry) GetFamilyHistory(ctx context.Context, filename, category string) ([]domain.DocumentVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	family := domain.FamilyKey(filename, category)
	var docs []domain.DocumentVersion
	for _, doc := range r.docs {
		if domain.FamilyKey(doc.Filename, doc.Category) == family {
			docs = append(docs, doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Version > docs[j].Version
	})
	return docs, nil
}

// Get retrieves a single version by doc ID.
func (r *Registry) Get(ctx context.Context, docID string) (*domain.DocumentVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Deactivate flips IsActive off for a version.
func (r *Registry) Deactivate(ctx context.Context, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.IsActive = false
	r.docs[docID] = doc
	return nil
}

// Delete removes a version. Permanent delete drops it entirely and records
// the NewVersion=0 sentinel log entry.
func (r *Registry) Delete(ctx context.Context, docID string, permanent bool, deletedBy string) error {
	if !permanent {
		return r.Deactivate(ctx, docID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[docID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.docs, docID)

	r.appendLog(domain.VersionLogEntry{
		DocID:             docID,
		Filename:          doc.Filename,
		Category:          doc.Category,
		PreviousVersion:   doc.Version,
		NewVersion:        0,
		ChangeDescription: "permanently deleted",
		ChangedBy:         deletedBy,
		ChangedAt:         time.Now().UTC(),
	})
	return nil
}

// ListCategories returns distinct categories across active documents.
func (r *Registry) ListCategories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, doc := range r.docs {
		if !doc.IsActive || seen[doc.Category] {
			continue
		}
		seen[doc.Category] = true
		categories = append(categories, doc.Category)
	}

	sort.Strings(categories)
	return categories, nil
}

// VersionLog returns the log entries for a doc ID, oldest first.
func (r *Registry) VersionLog(ctx context.Context, docID string) ([]domain.VersionLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []domain.VersionLogEntry
	for _, e := range r.log {
		if e.DocID == docID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// appendLog must be called with the write lock held.
func (r *Registry) appendLog(e domain.VersionLogEntry) {
	r.nextID++
	e.ID = r.nextID
	r.log = append(r.log, e)
}
