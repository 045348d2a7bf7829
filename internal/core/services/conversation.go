package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driving"
)

// Ensure ConversationManager implements the interface.
var _ driving.ConversationService = (*ConversationManager)(nil)

// ConversationManager manages per-user chat sessions.
type ConversationManager struct {
	store driven.ConversationStore
}

// NewConversationManager creates a conversation service.
func NewConversationManager(store driven.ConversationStore) *ConversationManager {
	return &ConversationManager{store: store}
}

// Create starts a new conversation. An empty title gets a timestamped default.
func (m *ConversationManager) Create(ctx context.Context, username, title string) (*domain.Conversation, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if title == "" {
		title = "Conversation " + now.Format("2006-01-02 15:04")
	}

	conv := &domain.Conversation{
		ID:        uuid.New().String(),
		Username:  username,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.SaveConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Append records one turn and bumps the conversation's UpdatedAt.
func (m *ConversationManager) Append(ctx context.Context, conversationID, role, content string) error {
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	conv, err := m.store.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := m.store.AppendTurn(ctx, &domain.ConversationTurn{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      now,
	}); err != nil {
		return err
	}

	conv.UpdatedAt = now
	return m.store.SaveConversation(ctx, conv)
}

// History returns a conversation's turns ordered by timestamp.
func (m *ConversationManager) History(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	return m.store.GetTurns(ctx, conversationID)
}

// List returns a user's conversations, most recently updated first.
func (m *ConversationManager) List(ctx context.Context, username string) ([]domain.Conversation, error) {
	return m.store.ListConversations(ctx, username)
}

// Rename updates a conversation's title.
func (m *ConversationManager) Rename(ctx context.Context, conversationID, title string) error {
	if title == "" {
		return fmt.Errorf("%w: title required", domain.ErrInvalidInput)
	}

	conv, err := m.store.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	conv.Title = title
	conv.UpdatedAt = time.Now().UTC()
	return m.store.SaveConversation(ctx, conv)
}

// Archive hides a conversation from listings.
func (m *ConversationManager) Archive(ctx context.Context, conversationID string) error {
	conv, err := m.store.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	conv.Archived = true
	conv.UpdatedAt = time.Now().UTC()
	return m.store.SaveConversation(ctx, conv)
}
