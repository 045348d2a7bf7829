package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/monster2z/llm-rag-pro/internal/chunker"
	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driving"
	"github.com/monster2z/llm-rag-pro/internal/logger"
)

// batchWorkers bounds concurrent file ingestions within a batch.
const batchWorkers = 4

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor processes file uploads into the versioned corpus: extract,
// chunk, embed, persist the per-version index, register the version,
// and rebuild the combined index.
type Ingestor struct {
	registry   driven.DocumentRegistry
	store      driven.IndexStore
	embedder   driven.EmbeddingService
	extractors driven.ExtractorRegistry
	splitter   *chunker.Splitter
	indexes    *IndexManager
	dataDir    string

	// families serialises version assignment per (filename, category)
	// family. Uploads of different families proceed in parallel.
	families sync.Map
}

// NewIngestor creates an ingest service writing index artifacts under dataDir.
func NewIngestor(
	registry driven.DocumentRegistry,
	store driven.IndexStore,
	embedder driven.EmbeddingService,
	extractors driven.ExtractorRegistry,
	splitter *chunker.Splitter,
	indexes *IndexManager,
	dataDir string,
) *Ingestor {
	return &Ingestor{
		registry:   registry,
		store:      store,
		embedder:   embedder,
		extractors: extractors,
		splitter:   splitter,
		indexes:    indexes,
		dataDir:    dataDir,
	}
}

// IngestFile runs the full pipeline for one file and rebuilds the
// combined index on success.
func (s *Ingestor) IngestFile(ctx context.Context, req driving.IngestRequest) (*domain.DocumentVersion, error) {
	doc, err := s.ingest(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.indexes.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("rebuilding combined index: %w", err)
	}
	return doc, nil
}

// IngestBatch ingests several files with per-file failure isolation and
// rebuilds the combined index once afterwards. onDone fires per finished
// file, from worker goroutines.
func (s *Ingestor) IngestBatch(ctx context.Context, reqs []driving.IngestRequest, onDone func(driving.IngestResult)) []driving.IngestResult {
	results := make([]driving.IngestResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			doc, err := s.ingest(ctx, req)
			results[i] = driving.IngestResult{Path: req.Path, Version: doc, Err: err}
			if onDone != nil {
				onDone(results[i])
			}
			return nil // per-file failures stay in the result, not the group
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	succeeded := false
	for _, result := range results {
		if result.Err == nil {
			succeeded = true
			break
		}
	}
	if succeeded {
		if err := s.indexes.Rebuild(ctx); err != nil {
			logger.Warn("combined index rebuild after batch failed: %v", err)
		}
	}
	return results
}

// ingest validates, extracts, chunks, embeds, persists, and registers
// one file. The family lock is held across version prediction and
// registration so concurrent same-family uploads cannot race on version
// numbers.
func (s *Ingestor) ingest(ctx context.Context, req driving.IngestRequest) (*domain.DocumentVersion, error) {
	filename := filepath.Base(req.Path)
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Path)), ".")

	if !domain.ValidCategory(req.Category) {
		return nil, fmt.Errorf("%w: invalid category %q", domain.ErrInvalidInput, req.Category)
	}
	extractor, err := s.extractors.Lookup(fileType)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(req.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, req.Path, err)
	}

	lock := s.familyLock(filename, req.Category)
	lock.Lock()
	defer lock.Unlock()

	pages, err := extractor.Extract(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting %s: %v", domain.ErrIngestion, filename, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s yielded no text", domain.ErrInvalidInput, filename)
	}

	version, err := s.nextVersion(ctx, filename, req.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegistry, err)
	}

	docID := uuid.New().String()
	chunks := s.chunkPages(pages, docID, filename, fileType, version, req)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrInvalidInput, filename)
	}

	indexDir := filepath.Join(s.dataDir, "index_"+docID)
	idx, err := s.store.Build(ctx, chunks, s.embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding %s: %v", domain.ErrIngestion, filename, err)
	}
	if err := s.store.Save(idx, indexDir); err != nil {
		os.RemoveAll(indexDir) //nolint:errcheck
		return nil, fmt.Errorf("%w: persisting index for %s: %v", domain.ErrIngestion, filename, err)
	}

	doc, err := s.registry.RegisterVersion(ctx, domain.Registration{
		DocID:       docID,
		Filename:    filename,
		Category:    req.Category,
		FileType:    fileType,
		ChunkCount:  len(chunks),
		UploadedBy:  req.Username,
		Description: req.Description,
		IndexPath:   indexDir,
	})
	if err != nil {
		// A version must never look registered while its artifact is gone,
		// nor leave an orphaned artifact behind.
		os.RemoveAll(indexDir) //nolint:errcheck
		return nil, fmt.Errorf("%w: registering %s: %v", domain.ErrRegistry, filename, err)
	}

	logger.Info("ingested %s v%d (%d chunks, category %s)", filename, doc.Version, len(chunks), req.Category)
	return doc, nil
}

// nextVersion predicts the version RegisterVersion will assign. Valid only
// while the family lock is held.
func (s *Ingestor) nextVersion(ctx context.Context, filename, category string) (int, error) {
	max, err := s.registry.FamilyMaxVersion(ctx, filename, category)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// chunkPages splits every page and tags the chunks with their owning
// metadata.
func (s *Ingestor) chunkPages(pages []driven.Page, docID, filename, fileType string,
	version int, req driving.IngestRequest) []domain.Chunk {

	var chunks []domain.Chunk
	position := 0
	for _, page := range pages {
		for _, text := range s.splitter.Split(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:         fmt.Sprintf("%s-%d", docID, position),
				DocID:      docID,
				Content:    text,
				Position:   position,
				Page:       page.Number,
				SourceFile: filename,
				FileType:   fileType,
				Category:   req.Category,
				Version:    version,
				UploadedBy: req.Username,
			})
			position++
		}
	}
	return chunks
}

// familyLock returns the mutex serialising a document family's uploads.
func (s *Ingestor) familyLock(filename, category string) *sync.Mutex {
	key := domain.FamilyKey(filename, category)
	lock, _ := s.families.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
