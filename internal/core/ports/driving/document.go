package driving

import (
	"context"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// DocumentService manages the versioned document corpus.
type DocumentService interface {
	// ListActive returns active versions, optionally filtered by category.
	ListActive(ctx context.Context, category string) ([]domain.DocumentVersion, error)

	// History returns every version of a (filename, category) family,
	// newest first.
	History(ctx context.Context, filename, category string) ([]domain.DocumentVersion, error)

	// Deactivate soft-deletes a version and rebuilds the combined index.
	Deactivate(ctx context.Context, docID string) error

	// Delete removes a version. Permanent delete also removes the
	// persisted index directory. The combined index is rebuilt.
	Delete(ctx context.Context, docID string, permanent bool, deletedBy string) error

	// Categories returns the distinct categories across active documents.
	Categories(ctx context.Context) ([]string, error)

	// VersionLog returns the version-change log for a doc ID, oldest first.
	VersionLog(ctx context.Context, docID string) ([]domain.VersionLogEntry, error)
}

// ConversationService manages per-user chat sessions.
type ConversationService interface {
	// Create starts a new conversation. An empty title gets a timestamped
	// default.
	Create(ctx context.Context, username, title string) (*domain.Conversation, error)

	// Append records one turn and bumps the conversation's UpdatedAt.
	Append(ctx context.Context, conversationID, role, content string) error

	// History returns a conversation's turns ordered by timestamp.
	History(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error)

	// List returns a user's conversations, most recently updated first.
	List(ctx context.Context, username string) ([]domain.Conversation, error)

	// Rename updates a conversation's title.
	Rename(ctx context.Context, conversationID, title string) error

	// Archive hides a conversation from listings.
	Archive(ctx context.Context, conversationID string) error
}
