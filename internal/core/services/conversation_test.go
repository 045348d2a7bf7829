package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/storage/memory"
	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationManager(memory.NewConversationStore())

	conv, err := svc.Create(ctx, "alice", "benefits chat")
	require.NoError(t, err)
	assert.Equal(t, "benefits chat", conv.Title)
	assert.NotEmpty(t, conv.ID)

	require.NoError(t, svc.Append(ctx, conv.ID, domain.RoleUser, "what about dental?"))
	require.NoError(t, svc.Append(ctx, conv.ID, domain.RoleAssistant, "dental is covered"))

	history, err := svc.History(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "what about dental?", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Archive(ctx, conv.ID))
	list, err = svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConversationDefaultTitle(t *testing.T) {
	svc := NewConversationManager(memory.NewConversationStore())

	conv, err := svc.Create(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Contains(t, conv.Title, "Conversation ")
}

func TestConversationRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationManager(memory.NewConversationStore())

	conv, err := svc.Create(ctx, "alice", "t")
	require.NoError(t, err)

	err = svc.Append(ctx, conv.ID, "system", "not allowed")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConversationRename(t *testing.T) {
	ctx := context.Background()
	svc := NewConversationManager(memory.NewConversationStore())

	conv, err := svc.Create(ctx, "alice", "old")
	require.NoError(t, err)
	require.NoError(t, svc.Rename(ctx, conv.ID, "new"))

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].Title)
}

func TestConversationAppendMissing(t *testing.T) {
	svc := NewConversationManager(memory.NewConversationStore())
	err := svc.Append(context.Background(), "missing", domain.RoleUser, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
