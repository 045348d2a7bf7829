package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/index/flat"
	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/storage/memory"
	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// saveIndex builds and persists a small index for the given chunks.
func saveIndex(t *testing.T, store *flat.Store, chunks []domain.Chunk) string {
	t.Helper()
	dir := t.TempDir()
	idx, err := store.Build(context.Background(), chunks, &fakeEmbedder{})
	require.NoError(t, err)
	require.NoError(t, store.Save(idx, dir))
	return dir
}

func TestRebuildMergesActiveVersions(t *testing.T) {
	ctx := context.Background()
	store := flat.NewStore()
	registry := memory.NewRegistry()
	manager := NewIndexManager(registry, store)

	dirA := saveIndex(t, store, []domain.Chunk{
		{ID: "a1", Content: "alpha", SourceFile: "a.pdf", Version: 1},
	})
	dirB := saveIndex(t, store, []domain.Chunk{
		{ID: "b1", Content: "beta", SourceFile: "b.pdf", Version: 1},
		{ID: "b2", Content: "gamma", SourceFile: "b.pdf", Version: 1},
	})

	for _, reg := range []domain.Registration{
		{Filename: "a.pdf", Category: "hr", FileType: "pdf", UploadedBy: "u", IndexPath: dirA},
		{Filename: "b.pdf", Category: "hr", FileType: "pdf", UploadedBy: "u", IndexPath: dirB},
	} {
		_, err := registry.RegisterVersion(ctx, reg)
		require.NoError(t, err)
	}

	require.NoError(t, manager.Rebuild(ctx))
	require.NotNil(t, manager.Current())
	assert.Equal(t, 3, manager.Current().Size())
}

func TestRebuildExcludesDeactivatedVersions(t *testing.T) {
	ctx := context.Background()
	store := flat.NewStore()
	registry := memory.NewRegistry()
	manager := NewIndexManager(registry, store)

	dirV1 := saveIndex(t, store, []domain.Chunk{
		{ID: "v1", Content: "old policy text", SourceFile: "policy.pdf", Version: 1},
	})
	dirV2 := saveIndex(t, store, []domain.Chunk{
		{ID: "v2", Content: "new policy text", SourceFile: "policy.pdf", Version: 2},
	})

	_, err := registry.RegisterVersion(ctx, domain.Registration{
		Filename: "policy.pdf", Category: "hr", FileType: "pdf",
		UploadedBy: "u", IndexPath: dirV1,
	})
	require.NoError(t, err)
	_, err = registry.RegisterVersion(ctx, domain.Registration{
		Filename: "policy.pdf", Category: "hr", FileType: "pdf",
		UploadedBy: "u", IndexPath: dirV2,
	})
	require.NoError(t, err)

	require.NoError(t, manager.Rebuild(ctx))
	require.NotNil(t, manager.Current())

	// Only version 2's chunk is retrievable
	entries := manager.Current().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Chunk.Version)
}

func TestRebuildSkipsCorruptIndex(t *testing.T) {
	ctx := context.Background()
	store := flat.NewStore()
	registry := memory.NewRegistry()
	manager := NewIndexManager(registry, store)

	goodDir := saveIndex(t, store, []domain.Chunk{
		{ID: "g1", Content: "good", SourceFile: "good.pdf", Version: 1},
	})

	badDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "meta.json"), []byte("{broken"), 0600))

	for _, reg := range []domain.Registration{
		{Filename: "good.pdf", Category: "hr", FileType: "pdf", UploadedBy: "u", IndexPath: goodDir},
		{Filename: "bad.pdf", Category: "hr", FileType: "pdf", UploadedBy: "u", IndexPath: badDir},
	} {
		_, err := registry.RegisterVersion(ctx, reg)
		require.NoError(t, err)
	}

	// The corrupt version is skipped, not fatal
	require.NoError(t, manager.Rebuild(ctx))
	require.NotNil(t, manager.Current())
	assert.Equal(t, 1, manager.Current().Size())
}

func TestRebuildReplacesNotMutates(t *testing.T) {
	ctx := context.Background()
	store := flat.NewStore()
	registry := memory.NewRegistry()
	manager := NewIndexManager(registry, store)

	dir := saveIndex(t, store, []domain.Chunk{
		{ID: "1", Content: "one", SourceFile: "a.pdf", Version: 1},
	})
	doc, err := registry.RegisterVersion(ctx, domain.Registration{
		Filename: "a.pdf", Category: "hr", FileType: "pdf",
		UploadedBy: "u", IndexPath: dir,
	})
	require.NoError(t, err)
	require.NoError(t, manager.Rebuild(ctx))

	// A reader's reference survives a rebuild that empties the corpus
	held := manager.Current()
	require.NoError(t, registry.Deactivate(ctx, doc.DocID))
	require.NoError(t, manager.Rebuild(ctx))

	assert.Equal(t, 1, held.Size())
	assert.Nil(t, manager.Current())
}

func TestRebuildEmptyRegistry(t *testing.T) {
	manager := NewIndexManager(memory.NewRegistry(), flat.NewStore())
	require.NoError(t, manager.Rebuild(context.Background()))
	assert.Nil(t, manager.Current())
}
