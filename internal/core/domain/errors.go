package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty upload or a malformed category name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document file type.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrIndexLoad indicates a persisted index directory is missing or
	// corrupt. Non-fatal at merge time: the version is skipped with a warning.
	ErrIndexLoad = errors.New("index load failed")

	// ErrIngestion indicates extraction, chunking, or embedding failed for
	// one file. Isolated per file within a batch.
	ErrIngestion = errors.New("ingestion failed")

	// ErrRegistry indicates a durable-store read or write failure.
	// Fatal for the operation that hit it.
	ErrRegistry = errors.New("registry failure")

	// ErrSynthesis indicates the completion service call failed.
	// The pipeline degrades to a fixed fallback answer.
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrLLMUnavailable indicates the completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval both require embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
