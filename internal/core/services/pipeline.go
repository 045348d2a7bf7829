package services

import (
	"context"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driving"
	"github.com/monster2z/llm-rag-pro/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.AskService = (*Pipeline)(nil)

// Pipeline runs the fixed three-stage answer pipeline:
// retrieve, generate, annotate. The orchestrator itself is stateless;
// a fresh state value is built per invocation, so concurrent Ask calls
// never share mutable structures.
type Pipeline struct {
	retriever driving.Retriever
	synth     *Synthesizer
}

// NewPipeline wires a retriever and synthesizer into an answer pipeline.
func NewPipeline(retriever driving.Retriever, synth *Synthesizer) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		synth:     synth,
	}
}

// Ask answers one question grounded in the document corpus.
func (p *Pipeline) Ask(ctx context.Context, question, username string,
	history []domain.ConversationTurn, opts domain.RetrieveOptions) (domain.AskState, error) {

	state := domain.AskState{
		Question: question,
		Username: username,
		History:  history,
	}

	state, err := p.retrieve(ctx, state, opts)
	if err != nil {
		return state, err
	}
	if err := ctx.Err(); err != nil {
		return state, err
	}

	state = p.synth.Generate(ctx, state)
	if err := ctx.Err(); err != nil {
		return state, err
	}

	state = p.synth.Annotate(state)
	return state, nil
}

// retrieve populates Context and Sources. An empty corpus leaves both
// empty and the pipeline proceeds in ungrounded mode.
func (p *Pipeline) retrieve(ctx context.Context, state domain.AskState, opts domain.RetrieveOptions) (domain.AskState, error) {
	results, err := p.retriever.Retrieve(ctx, state.Question, opts)
	if err != nil {
		return state, err
	}
	if len(results) == 0 {
		logger.Debug("no chunks retrieved for %q, answering ungrounded", state.Question)
		return state, nil
	}

	state.Context = make([]string, 0, len(results))
	state.Sources = make([]domain.SourceRef, 0, len(results))
	for _, result := range results {
		state.Context = append(state.Context, result.Chunk.Content)
		state.Sources = append(state.Sources, domain.SourceRef{
			Source:   result.Chunk.SourceFile,
			Page:     result.Chunk.Page,
			Category: result.Chunk.Category,
		})
	}
	return state, nil
}
