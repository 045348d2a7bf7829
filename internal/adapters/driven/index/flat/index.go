// Package flat provides a brute-force cosine similarity vector index with
// directory-based persistence. Every document version owns one index
// directory; merged query views are built by unioning entries.
package flat

import (
	"math"
	"sort"

	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.Index = (*Index)(nil)

// Index is an immutable in-memory vector index. Construct via Store.Build,
// Store.Load, or Store.Merge; never mutate after construction.
type Index struct {
	entries []driven.IndexEntry
}

// NewIndex wraps pre-built entries into an index.
func NewIndex(entries []driven.IndexEntry) *Index {
	return &Index{entries: entries}
}

// Search returns the k entries most similar to the query vector,
// highest cosine similarity first. Ordering is stable across equal
// scores so merge order only affects tie-breaks, never membership.
func (idx *Index) Search(query []float32, k int) []driven.IndexHit {
	if len(idx.entries) == 0 || k <= 0 {
		return nil
	}

	hits := make([]driven.IndexHit, 0, len(idx.entries))
	for _, e := range idx.entries {
		hits = append(hits, driven.IndexHit{
			Chunk:      e.Chunk,
			Similarity: cosine(query, e.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

// Size returns the number of indexed chunks.
func (idx *Index) Size() int {
	return len(idx.entries)
}

// Entries exposes the raw vector/chunk pairs for merging.
func (idx *Index) Entries() []driven.IndexEntry {
	return idx.entries
}

// cosine computes cosine similarity between two vectors.
// Mismatched lengths compare over the shorter prefix.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
