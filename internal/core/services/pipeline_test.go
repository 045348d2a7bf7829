package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/index/flat"
	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/storage/memory"
	"github.com/monster2z/llm-rag-pro/internal/core/domain"
)

// newGroundedPipeline builds a pipeline over a corpus with one indexed
// document so retrieval has something to find.
func newGroundedPipeline(t *testing.T, llm *fakeLLM) *Pipeline {
	t.Helper()
	ctx := context.Background()
	store := flat.NewStore()
	registry := memory.NewRegistry()
	manager := NewIndexManager(registry, store)

	dir := saveIndex(t, store, []domain.Chunk{
		{
			ID: "1", Content: "employees receive 25 days of annual leave",
			SourceFile: "policy.pdf", Category: "HR", Version: 2, Page: 3,
		},
	})
	_, err := registry.RegisterVersion(ctx, domain.Registration{
		Filename: "policy.pdf", Category: "HR", FileType: "pdf",
		UploadedBy: "alice", IndexPath: dir,
	})
	require.NoError(t, err)
	require.NoError(t, manager.Rebuild(ctx))

	retriever := NewRetriever(&fakeEmbedder{}, manager)
	return NewPipeline(retriever, NewSynthesizer(llm))
}

func TestAskGroundedAnswerWithCitations(t *testing.T) {
	llm := &fakeLLM{answer: "Employees receive 25 days of annual leave."}
	pipeline := newGroundedPipeline(t, llm)

	state, err := pipeline.Ask(context.Background(), "how many days of annual leave",
		"alice", nil, domain.RetrieveOptions{})
	require.NoError(t, err)

	assert.False(t, state.NeedMoreInfo)
	assert.Contains(t, state.Answer, "25 days")
	assert.Contains(t, state.Answer, "Sources:")
	assert.Contains(t, state.Answer, "policy.pdf (page 3, HR)")
	require.Len(t, state.Sources, 1)
	assert.Equal(t, "policy.pdf", state.Sources[0].Source)

	// The retrieved text reached the model
	require.NotEmpty(t, llm.messages)
	assert.Contains(t, llm.messages[0].Content, "annual leave")
}

func TestAskUngroundedMode(t *testing.T) {
	llm := &fakeLLM{answer: "General guidance without documents."}
	manager := NewIndexManager(memory.NewRegistry(), flat.NewStore())
	retriever := NewRetriever(&fakeEmbedder{}, manager)
	pipeline := NewPipeline(retriever, NewSynthesizer(llm))

	state, err := pipeline.Ask(context.Background(), "what is the dress code",
		"alice", nil, domain.RetrieveOptions{})
	require.NoError(t, err)

	assert.Empty(t, state.Context)
	assert.Empty(t, state.Sources)
	assert.NotEmpty(t, state.Answer)
	assert.Contains(t, state.Answer, "no relevant documents were found")
	assert.Contains(t, llm.messages[0].Content, "(no relevant documents found)")
}

func TestAskNeedMoreInfoMarker(t *testing.T) {
	llm := &fakeLLM{answer: NoAnswerMarker}
	pipeline := newGroundedPipeline(t, llm)

	state, err := pipeline.Ask(context.Background(), "annual leave days",
		"alice", nil, domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.True(t, state.NeedMoreInfo)
}

func TestAskLLMFailureYieldsApology(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model overloaded")}
	pipeline := newGroundedPipeline(t, llm)

	state, err := pipeline.Ask(context.Background(), "annual leave days",
		"alice", nil, domain.RetrieveOptions{})
	require.NoError(t, err)

	// The apology still gets the citations block appended
	assert.Contains(t, state.Answer, "unable to generate an answer")
	assert.Contains(t, state.Answer, "Sources:")
}

func TestAskPassesHistoryVerbatim(t *testing.T) {
	llm := &fakeLLM{answer: "Yes, it carries over."}
	pipeline := newGroundedPipeline(t, llm)

	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "what is the leave policy"},
		{Role: domain.RoleAssistant, Content: "25 days of annual leave"},
	}
	_, err := pipeline.Ask(context.Background(), "does it carry over",
		"alice", history, domain.RetrieveOptions{})
	require.NoError(t, err)

	require.Len(t, llm.messages, 4)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Equal(t, "what is the leave policy", llm.messages[1].Content)
	assert.Equal(t, "25 days of annual leave", llm.messages[2].Content)
	assert.Equal(t, "does it carry over", llm.messages[3].Content)
}

func TestAnnotateDeduplicatesSources(t *testing.T) {
	synth := NewSynthesizer(&fakeLLM{})
	state := domain.AskState{
		Answer: "answer",
		Sources: []domain.SourceRef{
			{Source: "a.pdf", Page: 1, Category: "HR"},
			{Source: "a.pdf", Page: 1, Category: "HR"},
			{Source: "b.pdf"},
		},
	}

	state = synth.Annotate(state)
	assert.Equal(t, "answer\n\nSources:\n- a.pdf (page 1, HR)\n- b.pdf", state.Answer)
}
