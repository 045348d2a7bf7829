package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// ConversationStore is an in-memory conversation store.
type ConversationStore struct {
	mu    sync.RWMutex
	convs map[string]domain.Conversation
	turns map[string][]domain.ConversationTurn
}

var _ driven.ConversationStore = (*ConversationStore)(nil)

// NewConversationStore creates an empty in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		convs: make(map[string]domain.Conversation),
		turns: make(map[string][]domain.ConversationTurn),
	}
}

// SaveConversation stores or updates a conversation.
func (s *ConversationStore) SaveConversation(ctx context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.convs[conv.ID] = *conv
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *ConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &conv, nil
}

// ListConversations returns a user's conversations, newest update first.
func (s *ConversationStore) ListConversations(ctx context.Context, username string) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var convs []domain.Conversation
	for _, conv := range s.convs {
		if conv.Username != username || conv.Archived {
			continue
		}
		convs = append(convs, conv)
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// AppendTurn records one turn at the end of a conversation.
func (s *ConversationStore) AppendTurn(ctx context.Context, turn *domain.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns[turn.ConversationID] = append(s.turns[turn.ConversationID], *turn)
	return nil
}

// GetTurns returns a conversation's turns ordered by timestamp.
func (s *ConversationStore) GetTurns(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]domain.ConversationTurn, len(s.turns[conversationID]))
	copy(turns, s.turns[conversationID])

	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})
	return turns, nil
}
