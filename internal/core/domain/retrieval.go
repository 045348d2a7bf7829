package domain

// RetrieveOptions configures a retrieval query.
type RetrieveOptions struct {
	// K is the maximum number of chunks to return (default 5).
	K int

	// Category restricts scoring to a category when set.
	// Matching candidates receive a re-rank bonus; retrieval itself
	// still runs over the whole combined index.
	Category string
}

// ScoredChunk is a retrieval hit paired with its relevance score.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the similarity or composite re-rank score.
	Score float64
}

// SourceRef is the provenance of a retrieved chunk, used for citations.
type SourceRef struct {
	// Source is the originating filename.
	Source string

	// Page is the source page or record number, 0 when unknown.
	Page int

	// Category is the document category, empty when unknown.
	Category string
}

// AskState is the mutable state threaded through the answer pipeline.
// A fresh AskState is constructed per invocation; stages transform and
// return it rather than sharing global structures.
type AskState struct {
	// Question is the user's question, set before the pipeline runs.
	Question string

	// Username identifies the asking user.
	Username string

	// Context holds the retrieved chunk texts.
	Context []string

	// Sources holds the provenance of each retrieved chunk, in retrieval order.
	Sources []SourceRef

	// History is the prior conversation, read-only.
	History []ConversationTurn

	// Answer is the generated (and later annotated) answer text.
	Answer string

	// NeedMoreInfo is set when the model reported that the provided
	// documents do not contain the answer.
	NeedMoreInfo bool
}
