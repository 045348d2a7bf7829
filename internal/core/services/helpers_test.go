package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"

	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// fakeEmbedder produces deterministic vectors where texts sharing words
// land close together, so similarity ranking behaves sensibly in tests.
type fakeEmbedder struct {
	failing bool
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

const fakeDims = 16

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.failing {
		return nil, errors.New("embedder offline")
	}

	vec := make([]float32, fakeDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%fakeDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimensions() int              { return fakeDims }
func (e *fakeEmbedder) ModelName() string            { return "fake-embedder" }
func (e *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (e *fakeEmbedder) Close() error                 { return nil }

// fakeLLM echoes a canned answer and records the messages it saw.
type fakeLLM struct {
	answer   string
	err      error
	messages []driven.ChatMessage
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (l *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func (l *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	l.messages = messages
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func (l *fakeLLM) ModelName() string            { return "fake-llm" }
func (l *fakeLLM) Ping(_ context.Context) error { return nil }
func (l *fakeLLM) Close() error                 { return nil }
