package flat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// stubEmbedder returns a fixed vector per text, keyed by call order.
type stubEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vectors[e.calls%len(e.vectors)]
		e.calls++
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int              { return len(e.vectors[0]) }
func (e *stubEmbedder) ModelName() string            { return "stub-embedder" }
func (e *stubEmbedder) Ping(_ context.Context) error { return nil }
func (e *stubEmbedder) Close() error                 { return nil }

func entry(id string, vector []float32) driven.IndexEntry {
	return driven.IndexEntry{
		Chunk:  domain.Chunk{ID: id, Content: "chunk " + id, Embedding: vector},
		Vector: vector,
	}
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	idx := NewIndex([]driven.IndexEntry{
		entry("orthogonal", []float32{0, 1, 0}),
		entry("aligned", []float32{1, 0, 0}),
		entry("close", []float32{0.9, 0.1, 0}),
	})

	hits := idx.Search([]float32{1, 0, 0}, 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "aligned", hits[0].Chunk.ID)
	assert.Equal(t, "close", hits[1].Chunk.ID)
	assert.Equal(t, "orthogonal", hits[2].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.InDelta(t, 0.0, hits[2].Similarity, 1e-6)
}

func TestSearchTruncatesToK(t *testing.T) {
	idx := NewIndex([]driven.IndexEntry{
		entry("a", []float32{1, 0}),
		entry("b", []float32{0, 1}),
		entry("c", []float32{1, 1}),
	})

	assert.Len(t, idx.Search([]float32{1, 0}, 2), 2)
	assert.Len(t, idx.Search([]float32{1, 0}, 10), 3)
	assert.Nil(t, idx.Search([]float32{1, 0}, 0))
}

func TestSearchEmptyIndex(t *testing.T) {
	assert.Nil(t, NewIndex(nil).Search([]float32{1, 0}, 5))
}

func TestCosineEdgeCases(t *testing.T) {
	// Zero vectors score zero instead of dividing by zero
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosine([]float32{1, 1}, []float32{0, 0}))
	assert.Equal(t, 0.0, cosine(nil, []float32{1}))

	// Mismatched lengths compare over the shorter prefix
	assert.InDelta(t, 1.0, cosine([]float32{1, 0}, []float32{1, 0, 7, 7}), 1e-6)

	// Opposite vectors
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-6)
}

func TestBuildEmbedsMissingVectorsOnly(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{{0.5, 0.5}}}
	chunks := []domain.Chunk{
		{ID: "has", Content: "already embedded", Embedding: []float32{1, 0}},
		{ID: "missing", Content: "needs embedding"},
	}

	idx, err := NewStore().Build(context.Background(), chunks, embedder)
	require.NoError(t, err)
	require.Equal(t, 2, idx.Size())

	entries := idx.(*Index).Entries()
	assert.Equal(t, []float32{1, 0}, entries[0].Vector)
	assert.Equal(t, []float32{0.5, 0.5}, entries[1].Vector)
	assert.Equal(t, 1, embedder.calls)
}

func TestBuildEmbedderFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("quota exceeded")}
	chunks := []domain.Chunk{{ID: "a", Content: "text"}}

	_, err := NewStore().Build(context.Background(), chunks, embedder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunks")
}

func TestBuildNilEmbedder(t *testing.T) {
	_, err := NewStore().Build(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index_doc1")
	store := NewStore()

	original := NewIndex([]driven.IndexEntry{
		{
			Chunk: domain.Chunk{
				ID:         "doc1-0",
				DocID:      "doc1",
				Content:    "remote work policy",
				Position:   0,
				Page:       3,
				SourceFile: "policy.pdf",
				FileType:   "pdf",
				Category:   "HR",
				Version:    2,
				UploadedBy: "alice",
				Embedding:  []float32{0.1, 0.2, 0.3},
			},
			Vector: []float32{0.1, 0.2, 0.3},
		},
		entry("doc1-1", []float32{-1, 0.5, 2}),
	})

	require.NoError(t, store.Save(original, dir))

	loaded, err := store.Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Size())

	got := loaded.(*Index).Entries()
	want := original.Entries()
	for i := range want {
		assert.Equal(t, want[i].Vector, got[i].Vector, "entry %d", i)
		assert.Equal(t, want[i].Chunk.ID, got[i].Chunk.ID)
	}
	first := got[0].Chunk
	assert.Equal(t, "policy.pdf", first.SourceFile)
	assert.Equal(t, 3, first.Page)
	assert.Equal(t, "HR", first.Category)
	assert.Equal(t, 2, first.Version)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, first.Embedding)
}

func TestSaveEmptyIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	store := NewStore()

	require.NoError(t, store.Save(NewIndex(nil), dir))

	loaded, err := store.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Size())
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := NewStore().Load(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrIndexLoad)
}

func TestLoadCorruptMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, metaFile), []byte("{broken"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, vectorsFile), nil, 0600))

	_, err := NewStore().Load(dir)
	assert.ErrorIs(t, err, domain.ErrIndexLoad)
}

func TestLoadTruncatedVectors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "truncated")
	store := NewStore()
	require.NoError(t, store.Save(NewIndex([]driven.IndexEntry{
		entry("a", []float32{1, 2, 3}),
	}), dir))

	blob, err := os.ReadFile(filepath.Join(dir, vectorsFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, vectorsFile), blob[:len(blob)-4], 0600))

	_, err = store.Load(dir)
	assert.ErrorIs(t, err, domain.ErrIndexLoad)
}

func TestMergeUnionsEntries(t *testing.T) {
	store := NewStore()
	a := NewIndex([]driven.IndexEntry{entry("a1", []float32{1, 0}), entry("a2", []float32{0, 1})})
	b := NewIndex([]driven.IndexEntry{entry("b1", []float32{1, 1})})

	merged := store.Merge(a, b)
	require.Equal(t, 3, merged.Size())

	// Same retrievable set regardless of merge order
	reversed := store.Merge(b, a)
	ids := func(idx driven.Index) map[string]bool {
		out := make(map[string]bool)
		for _, e := range idx.(*Index).Entries() {
			out[e.Chunk.ID] = true
		}
		return out
	}
	assert.Equal(t, ids(merged), ids(reversed))
}

func TestMergeShortCircuits(t *testing.T) {
	store := NewStore()
	a := NewIndex([]driven.IndexEntry{entry("a1", []float32{1, 0})})

	assert.Same(t, a, store.Merge(a, nil))
	assert.Same(t, a, store.Merge(nil, a))
	assert.Same(t, a, store.Merge(a, NewIndex(nil)))
	assert.Same(t, a, store.Merge(NewIndex(nil), a))
	assert.Nil(t, store.Merge(nil, nil))
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	store := NewStore()
	a := NewIndex([]driven.IndexEntry{entry("a1", []float32{1, 0})})
	b := NewIndex([]driven.IndexEntry{entry("b1", []float32{0, 1})})

	before := a.Size()
	_ = store.Merge(a, b)
	assert.Equal(t, before, a.Size())
	assert.Equal(t, 1, b.Size())
}
