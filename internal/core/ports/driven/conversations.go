package driven

import (
	"context"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// ConversationStore persists conversations and their turns.
// Turns are append-only; the pipeline only ever reads them.
type ConversationStore interface {
	// SaveConversation stores or updates a conversation.
	SaveConversation(ctx context.Context, conv *domain.Conversation) error

	// GetConversation retrieves a conversation by ID.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// ListConversations returns a user's conversations, most recently
	// updated first, excluding archived ones.
	ListConversations(ctx context.Context, username string) ([]domain.Conversation, error)

	// AppendTurn records one turn at the end of a conversation.
	AppendTurn(ctx context.Context, turn *domain.ConversationTurn) error

	// GetTurns returns a conversation's turns ordered by timestamp.
	GetTurns(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error)
}
