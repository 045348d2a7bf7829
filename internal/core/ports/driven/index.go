package driven

import (
	"context"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// Index is a queryable nearest-neighbour structure over embedded chunks.
// An Index is immutable once constructed: rebuilds replace the reference,
// they never mutate an index in place, so concurrent readers stay safe.
type Index interface {
	// Search returns the k entries most similar to the query vector,
	// highest similarity first.
	Search(query []float32, k int) []IndexHit

	// Size returns the number of indexed chunks.
	Size() int

	// Entries exposes the raw vector/chunk pairs for merging.
	Entries() []IndexEntry
}

// IndexHit is a similarity search result.
type IndexHit struct {
	// Chunk is the matched chunk with its owning metadata.
	Chunk domain.Chunk

	// Similarity is the cosine similarity against the query.
	Similarity float64
}

// IndexEntry pairs a stored vector with its chunk metadata.
type IndexEntry struct {
	Chunk  domain.Chunk
	Vector []float32
}

// IndexStore builds, persists, and merges per-version vector indexes.
// Each document version owns an independent index directory on disk;
// a failed build for version N+1 can never corrupt version N's artifact.
type IndexStore interface {
	// Build embeds every chunk's content and constructs a queryable index.
	Build(ctx context.Context, chunks []domain.Chunk, embedder EmbeddingService) (Index, error)

	// Save persists an index to a directory.
	Save(index Index, dir string) error

	// Load reads a persisted index. A missing or corrupt directory returns
	// an error wrapping domain.ErrIndexLoad, which callers treat as
	// skip-with-warning rather than fatal.
	Load(dir string) (Index, error)

	// Merge unions two indexes into one. Associative and commutative with
	// respect to the set of retrievable chunks.
	Merge(a, b Index) Index
}
