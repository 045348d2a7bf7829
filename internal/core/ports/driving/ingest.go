package driving

import (
	"context"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// IngestRequest describes one file to ingest.
type IngestRequest struct {
	// Path is the location of the file on disk.
	Path string

	// Category is the corpus category to file the document under.
	Category string

	// Description is an optional uploader-supplied description.
	Description string

	// Username is the uploading user.
	Username string
}

// IngestResult reports the outcome of ingesting one file within a batch.
type IngestResult struct {
	// Path is the ingested file.
	Path string

	// Version is the registered version, nil when Err is set.
	Version *domain.DocumentVersion

	// Err is the per-file failure, nil on success.
	Err error
}

// IngestService processes file uploads into the versioned corpus.
type IngestService interface {
	// IngestFile runs the full pipeline for one file: validate, extract,
	// chunk, embed, build and persist the per-version index, and register
	// the version. The combined index is rebuilt afterwards.
	IngestFile(ctx context.Context, req IngestRequest) (*domain.DocumentVersion, error)

	// IngestBatch ingests several files, isolating failures per file.
	// One result per request, in request order. The combined index is
	// rebuilt once after the batch. A non-nil onDone is invoked as each
	// file finishes, possibly from concurrent workers.
	IngestBatch(ctx context.Context, reqs []IngestRequest, onDone func(IngestResult)) []IngestResult
}
