package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
	"github.com/monster2z/llm-rag-pro/internal/logger"
)

// IndexManager maintains the combined search index over all active
// document versions. Rebuilds swap in a freshly merged index; the old
// index keeps serving concurrent readers until the swap.
type IndexManager struct {
	registry driven.DocumentRegistry
	store    driven.IndexStore

	mu        sync.RWMutex
	current   driven.Index
	onRebuild []func()
}

// NewIndexManager creates an index manager. Call Rebuild to populate it.
func NewIndexManager(registry driven.DocumentRegistry, store driven.IndexStore) *IndexManager {
	return &IndexManager{
		registry: registry,
		store:    store,
	}
}

// Current returns the combined index, or nil when no rebuild has run or
// no active documents exist.
func (m *IndexManager) Current() driven.Index {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnRebuild registers a hook invoked after every successful rebuild.
// Used by the retriever to invalidate its query cache.
func (m *IndexManager) OnRebuild(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRebuild = append(m.onRebuild, fn)
}

// Rebuild re-merges the per-version indexes of every active document into
// a new combined index and swaps it in. A version whose index artifact is
// missing or unreadable is skipped with a warning; it never sinks the
// rebuild.
func (m *IndexManager) Rebuild(ctx context.Context) error {
	active, err := m.registry.GetActive(ctx, "")
	if err != nil {
		return fmt.Errorf("listing active versions: %w", err)
	}

	var combined driven.Index
	loaded := 0
	for _, doc := range active {
		if doc.IndexPath == "" {
			logger.Warn("document %s v%d has no index artifact, skipping", doc.Filename, doc.Version)
			continue
		}

		idx, err := m.store.Load(doc.IndexPath)
		if err != nil {
			if errors.Is(err, domain.ErrIndexLoad) {
				logger.Warn("skipping index for %s v%d: %v", doc.Filename, doc.Version, err)
				continue
			}
			return fmt.Errorf("loading index for %s: %w", doc.DocID, err)
		}

		combined = m.store.Merge(combined, idx)
		loaded++
	}

	m.mu.Lock()
	m.current = combined
	hooks := make([]func(), len(m.onRebuild))
	copy(hooks, m.onRebuild)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	size := 0
	if combined != nil {
		size = combined.Size()
	}
	logger.Debug("combined index rebuilt: %d documents, %d chunks", loaded, size)
	return nil
}
