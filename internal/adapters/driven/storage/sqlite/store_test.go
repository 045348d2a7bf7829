package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same database must not re-run applied migrations
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := newTestStore(t).Registry()

	doc, err := reg.RegisterVersion(ctx, domain.Registration{
		Filename:    "handbook.pdf",
		Category:    "hr",
		FileType:    "pdf",
		ChunkCount:  12,
		UploadedBy:  "alice",
		Description: "initial upload",
		IndexPath:   "/tmp/index_abc",
	})
	require.NoError(t, err)
	require.Equal(t, 1, doc.Version)

	got, err := reg.Get(ctx, doc.DocID)
	require.NoError(t, err)
	assert.Equal(t, doc.DocID, got.DocID)
	assert.Equal(t, "handbook.pdf", got.Filename)
	assert.Equal(t, 12, got.ChunkCount)
	assert.Equal(t, "/tmp/index_abc", got.IndexPath)
	assert.True(t, got.IsActive)
}

func TestRegistryVersioning(t *testing.T) {
	ctx := context.Background()
	reg := newTestStore(t).Registry()

	v1, err := reg.RegisterVersion(ctx, domain.Registration{
		Filename: "handbook.pdf", Category: "hr", FileType: "pdf", UploadedBy: "alice",
	})
	require.NoError(t, err)

	v2, err := reg.RegisterVersion(ctx, domain.Registration{
		Filename: "handbook.pdf", Category: "hr", FileType: "pdf",
		UploadedBy: "bob", Description: "typo fixes",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	// Exactly one active version in the family
	active, err := reg.GetActive(ctx, "hr")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, v2.DocID, active[0].DocID)

	history, err := reg.GetFamilyHistory(ctx, "handbook.pdf", "hr")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Version)
	assert.Equal(t, 1, history[1].Version)

	log, err := reg.VersionLog(ctx, v2.DocID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, 1, log[0].PreviousVersion)
	assert.Equal(t, 2, log[0].NewVersion)
	assert.Contains(t, log[0].ChangeDescription, "typo fixes")

	_ = v1
}

func TestRegistryDeletePermanent(t *testing.T) {
	ctx := context.Background()
	reg := newTestStore(t).Registry()

	doc, err := reg.RegisterVersion(ctx, domain.Registration{
		Filename: "old.pdf", Category: "hr", FileType: "pdf", UploadedBy: "alice",
	})
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, doc.DocID, true, "admin"))

	_, err = reg.Get(ctx, doc.DocID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	log, err := reg.VersionLog(ctx, doc.DocID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, 0, log[0].NewVersion)
	assert.Equal(t, "admin", log[0].ChangedBy)
}

func TestRegistryVersionsSurvivePermanentDelete(t *testing.T) {
	ctx := context.Background()
	reg := newTestStore(t).Registry()

	v1, err := reg.RegisterVersion(ctx, domain.Registration{
		Filename: "policy.pdf", Category: "hr", FileType: "pdf", UploadedBy: "alice",
	})
	require.NoError(t, err)
	v2, err := reg.RegisterVersion(ctx, domain.Registration{
		Filename: "policy.pdf", Category: "hr", FileType: "pdf", UploadedBy: "alice",
	})
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, v2.DocID, true, "admin"))
	require.NoError(t, reg.Delete(ctx, v1.DocID, true, "admin"))

	// Sentinel log rows keep the family's high-water mark alive
	max, err := reg.FamilyMaxVersion(ctx, "policy.pdf", "hr")
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	v3, err := reg.RegisterVersion(ctx, domain.Registration{
		Filename: "policy.pdf", Category: "hr", FileType: "pdf", UploadedBy: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)
}

func TestRegistryNotFound(t *testing.T) {
	ctx := context.Background()
	reg := newTestStore(t).Registry()

	_, err := reg.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = reg.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = reg.Delete(ctx, "missing", true, "admin")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	convs := newTestStore(t).Conversations()

	now := time.Now().UTC().Truncate(time.Second)
	conv := &domain.Conversation{
		ID:        "c1",
		Username:  "alice",
		Title:     "benefits questions",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, convs.SaveConversation(ctx, conv))

	got, err := convs.GetConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "benefits questions", got.Title)

	// Upsert updates in place
	conv.Title = "renamed"
	conv.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, convs.SaveConversation(ctx, conv))

	got, err = convs.GetConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	require.NoError(t, convs.AppendTurn(ctx, &domain.ConversationTurn{
		ID: "t1", ConversationID: "c1", Role: domain.RoleUser,
		Content: "what is the leave policy?", Timestamp: now,
	}))
	require.NoError(t, convs.AppendTurn(ctx, &domain.ConversationTurn{
		ID: "t2", ConversationID: "c1", Role: domain.RoleAssistant,
		Content: "the leave policy allows...", Timestamp: now.Add(time.Second),
	}))

	turns, err := convs.GetTurns(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
}

func TestListConversationsExcludesArchived(t *testing.T) {
	ctx := context.Background()
	convs := newTestStore(t).Conversations()

	now := time.Now().UTC()
	require.NoError(t, convs.SaveConversation(ctx, &domain.Conversation{
		ID: "c1", Username: "alice", Title: "a", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, convs.SaveConversation(ctx, &domain.Conversation{
		ID: "c2", Username: "alice", Title: "b",
		CreatedAt: now, UpdatedAt: now.Add(time.Minute),
	}))
	require.NoError(t, convs.SaveConversation(ctx, &domain.Conversation{
		ID: "c3", Username: "alice", Title: "hidden",
		CreatedAt: now, UpdatedAt: now, Archived: true,
	}))

	list, err := convs.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, "c1", list[1].ID)
}
