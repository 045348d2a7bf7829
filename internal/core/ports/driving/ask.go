package driving

import (
	"context"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// AskService answers questions grounded in the document corpus.
type AskService interface {
	// Ask runs the retrieve-generate-annotate pipeline for one question.
	// History is read-only prior conversation context. The returned state
	// always carries a non-empty Answer; Sources and NeedMoreInfo are
	// available for instrumentation.
	Ask(ctx context.Context, question, username string,
		history []domain.ConversationTurn, opts domain.RetrieveOptions) (domain.AskState, error)
}

// Retriever finds the chunks most relevant to a question.
type Retriever interface {
	// Retrieve returns up to opts.K scored chunks. An empty or absent
	// combined index yields an empty slice, not an error.
	Retrieve(ctx context.Context, question string, opts domain.RetrieveOptions) ([]domain.ScoredChunk, error)
}
