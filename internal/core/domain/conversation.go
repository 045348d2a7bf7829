package domain

import "time"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is a named, per-user chat session.
type Conversation struct {
	// ID is the unique identifier for the conversation.
	ID string

	// Username is the owning user.
	Username string

	// Title is the display title.
	Title string

	// CreatedAt is when the conversation was started.
	CreatedAt time.Time

	// UpdatedAt is when the last turn was appended.
	UpdatedAt time.Time

	// Archived hides the conversation from listings without deleting it.
	Archived bool
}

// ConversationTurn is one append-only message within a conversation.
// The answer pipeline reads turns as read-only history context.
type ConversationTurn struct {
	// ID is the unique identifier for the turn.
	ID string

	// ConversationID links to the owning Conversation.
	ConversationID string

	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string

	// Timestamp is when the turn was recorded.
	Timestamp time.Time
}
