package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
	"github.com/monster2z/llm-rag-pro/internal/logger"
)

// NoAnswerMarker is the sentence the model is instructed to emit when the
// provided documents do not contain the answer. Its presence in a
// completion sets NeedMoreInfo.
const NoAnswerMarker = "I could not find relevant information in the provided documents."

// apologyAnswer replaces the answer when the completion service fails.
const apologyAnswer = "I'm sorry, I was unable to generate an answer right now. Please try again in a moment."

// noDocumentsDisclaimer is appended instead of citations when retrieval
// found nothing.
const noDocumentsDisclaimer = "Note: no relevant documents were found for this question. " +
	"Uploading documents on this topic will improve future answers."

const systemInstruction = "You are an internal assistant that answers employee questions " +
	"using the provided company documents. Answer only from the documents below. " +
	"If the documents do not contain the answer, reply with exactly: " + NoAnswerMarker

// Synthesizer turns a question, retrieved context, and conversation
// history into a grounded answer with provenance.
type Synthesizer struct {
	llm driven.LLMService
}

// NewSynthesizer creates a synthesizer backed by the given completion service.
func NewSynthesizer(llm driven.LLMService) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Generate invokes the completion service once and fills in Answer and
// NeedMoreInfo. A failed completion becomes a fixed apology answer so the
// pipeline still produces user-visible output.
func (s *Synthesizer) Generate(ctx context.Context, state domain.AskState) domain.AskState {
	messages := s.buildMessages(state)

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("completion failed: %v", err)
		state.Answer = apologyAnswer
		return state
	}

	state.Answer = strings.TrimSpace(answer)
	if state.Answer == "" {
		state.Answer = apologyAnswer
		return state
	}
	if strings.Contains(state.Answer, NoAnswerMarker) {
		state.NeedMoreInfo = true
	}
	return state
}

// Annotate appends the citations block, or the upload-documents
// disclaimer when nothing was retrieved. Deterministic given the state.
func (s *Synthesizer) Annotate(state domain.AskState) domain.AskState {
	if len(state.Sources) == 0 {
		state.Answer += "\n\n" + noDocumentsDisclaimer
		return state
	}

	var b strings.Builder
	b.WriteString(state.Answer)
	b.WriteString("\n\nSources:")

	seen := make(map[domain.SourceRef]bool)
	for _, src := range state.Sources {
		if seen[src] {
			continue
		}
		seen[src] = true

		b.WriteString("\n- ")
		b.WriteString(src.Source)
		var details []string
		if src.Page > 0 {
			details = append(details, "page "+strconv.Itoa(src.Page))
		}
		if src.Category != "" {
			details = append(details, src.Category)
		}
		if len(details) > 0 {
			b.WriteString(" (" + strings.Join(details, ", ") + ")")
		}
	}

	state.Answer = b.String()
	return state
}

// buildMessages assembles the chat transcript: system instruction with the
// retrieved documents, prior turns verbatim, then the question.
func (s *Synthesizer) buildMessages(state domain.AskState) []driven.ChatMessage {
	var system strings.Builder
	system.WriteString(systemInstruction)
	system.WriteString("\n\nDocuments:\n")
	if len(state.Context) == 0 {
		system.WriteString("(no relevant documents found)")
	} else {
		for i, text := range state.Context {
			if i > 0 {
				system.WriteString("\n---\n")
			}
			system.WriteString(text)
		}
	}

	messages := make([]driven.ChatMessage, 0, len(state.History)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: system.String()})
	for _, turn := range state.History {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: state.Question})
	return messages
}
