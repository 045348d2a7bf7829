package flat

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Persisted artifact names within an index directory.
const (
	metaFile    = "meta.json"
	vectorsFile = "vectors.bin"
)

// Store builds, persists, and merges flat indexes.
type Store struct{}

// NewStore creates a flat index store.
func NewStore() *Store {
	return &Store{}
}

// meta is the JSON sidecar persisted next to the vector blob.
type meta struct {
	Dimensions int            `json:"dimensions"`
	Chunks     []domain.Chunk `json:"chunks"`
}

// Build embeds every chunk's content and constructs a queryable index.
// Chunk embeddings already present are reused rather than recomputed.
func (s *Store) Build(ctx context.Context, chunks []domain.Chunk, embedder driven.EmbeddingService) (driven.Index, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	var missing []int
	var texts []string
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, chunks[i].Content)
		}
	}

	if len(texts) > 0 {
		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		for j, i := range missing {
			chunks[i].Embedding = vectors[j]
		}
	}

	entries := make([]driven.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = driven.IndexEntry{Chunk: chunk, Vector: chunk.Embedding}
	}

	return NewIndex(entries), nil
}

// Save persists an index to a directory: meta.json carries chunk metadata,
// vectors.bin holds the float32 vectors little-endian.
func (s *Store) Save(index driven.Index, dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	entries := index.Entries()
	dims := 0
	if len(entries) > 0 {
		dims = len(entries[0].Vector)
	}

	m := meta{Dimensions: dims, Chunks: make([]domain.Chunk, len(entries))}
	blob := make([]byte, 0, len(entries)*dims*4)
	for i, e := range entries {
		if len(e.Vector) != dims {
			return fmt.Errorf("vector %d: dimension mismatch (%d != %d)", i, len(e.Vector), dims)
		}
		chunk := e.Chunk
		chunk.Embedding = nil // vectors live in the blob, not the sidecar
		m.Chunks[i] = chunk
		blob = append(blob, float32SliceToBytes(e.Vector)...)
	}

	metaJSON, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling index metadata: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, metaFile), metaJSON, 0600); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, vectorsFile), blob, 0600); err != nil {
		return fmt.Errorf("writing index vectors: %w", err)
	}

	return nil
}

// Load reads a persisted index. Any missing or inconsistent artifact is
// reported as domain.ErrIndexLoad so callers can skip-with-warning.
func (s *Store) Load(dir string) (driven.Index, error) {
	metaJSON, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrIndexLoad, dir, err)
	}

	var m meta
	if err := json.Unmarshal(metaJSON, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing metadata in %s: %v", domain.ErrIndexLoad, dir, err)
	}

	blob, err := os.ReadFile(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: reading vectors in %s: %v", domain.ErrIndexLoad, dir, err)
	}

	if m.Dimensions < 0 || len(blob) != len(m.Chunks)*m.Dimensions*4 {
		return nil, fmt.Errorf("%w: %s: vector blob size %d does not match %d chunks of dimension %d",
			domain.ErrIndexLoad, dir, len(blob), len(m.Chunks), m.Dimensions)
	}

	entries := make([]driven.IndexEntry, len(m.Chunks))
	stride := m.Dimensions * 4
	for i, chunk := range m.Chunks {
		vector := bytesToFloat32Slice(blob[i*stride : (i+1)*stride])
		chunk.Embedding = vector
		entries[i] = driven.IndexEntry{Chunk: chunk, Vector: vector}
	}

	return NewIndex(entries), nil
}

// Merge unions two indexes. The retrievable chunk set is independent of
// merge order; only tie-break ordering among equal scores can differ.
func (s *Store) Merge(a, b driven.Index) driven.Index {
	if a == nil || a.Size() == 0 {
		return b
	}
	if b == nil || b.Size() == 0 {
		return a
	}

	entries := make([]driven.IndexEntry, 0, a.Size()+b.Size())
	entries = append(entries, a.Entries()...)
	entries = append(entries, b.Entries()...)
	return NewIndex(entries)
}

// float32SliceToBytes encodes vectors little-endian for the blob file.
func float32SliceToBytes(floats []float32) []byte {
	bytes := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(bytes[i*4:], math.Float32bits(f))
	}
	return bytes
}

// bytesToFloat32Slice decodes a little-endian vector blob.
func bytesToFloat32Slice(bytes []byte) []float32 {
	floats := make([]float32, len(bytes)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(bytes[i*4:]))
	}
	return floats
}
