package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driving"
	"github.com/monster2z/llm-rag-pro/internal/logger"
)

const (
	// DefaultTopK is the number of chunks returned when none is requested.
	DefaultTopK = 5

	// queryCacheCap bounds the retriever's result cache.
	queryCacheCap = 100

	// queryWindowSize is how many recent queries feed the enhanced query.
	queryWindowSize = 5
)

// stopWords are excluded from enhanced-query context terms.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"was": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "why": true, "how": true, "does": true, "did": true,
	"has": true, "have": true, "this": true, "that": true, "with": true,
	"from": true, "about": true, "into": true, "than": true, "then": true,
	"them": true, "they": true, "there": true, "their": true, "would": true,
	"could": true, "should": true, "will": true, "been": true, "being": true,
}

// filterPrefixes mark queries that carry explicit field filters. Such
// queries bypass enhancement and are embedded verbatim.
var filterPrefixes = []string{"category:", "filename:", "type:"}

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// Retriever finds the chunks most relevant to a question by similarity
// search over the combined index, optionally re-ranked by a composite
// score over category match, version recency, and keyword overlap.
type Retriever struct {
	embedder driven.EmbeddingService
	indexes  *IndexManager
	rerank   bool

	mu         sync.Mutex
	cache      map[string][]domain.ScoredChunk
	cacheOrder []string
	recent     []string
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithRerank toggles the composite re-ranking layer. Enabled by default.
func WithRerank(enabled bool) RetrieverOption {
	return func(r *Retriever) { r.rerank = enabled }
}

// NewRetriever creates a retriever over the manager's combined index.
// The retriever's cache is invalidated whenever the index is rebuilt.
func NewRetriever(embedder driven.EmbeddingService, indexes *IndexManager, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		embedder: embedder,
		indexes:  indexes,
		rerank:   true,
		cache:    make(map[string][]domain.ScoredChunk),
	}
	for _, opt := range opts {
		opt(r)
	}
	indexes.OnRebuild(r.Invalidate)
	return r
}

// Retrieve returns up to opts.K scored chunks for the question.
// An empty or absent combined index yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, question string, opts domain.RetrieveOptions) ([]domain.ScoredChunk, error) {
	k := opts.K
	if k <= 0 {
		k = DefaultTopK
	}

	// The enhanced query is part of the key: the same question asked under
	// a different rolling window is a different lookup.
	query := r.enhanceQuery(question)
	cacheKey := fmt.Sprintf("%s|%s|%d", query, opts.Category, k)
	if cached, ok := r.cacheGet(cacheKey); ok {
		logger.Debug("retrieval cache hit for %q", question)
		return cached, nil
	}

	idx := r.indexes.Current()
	if idx == nil || idx.Size() == 0 {
		return []domain.ScoredChunk{}, nil
	}
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrEmbeddingUnavailable, err)
	}

	// 2k headroom gives the re-ranker candidates to promote
	hits := idx.Search(vector, 2*k)

	var results []domain.ScoredChunk
	if r.rerank {
		results = rerankHits(question, opts.Category, hits)
	} else {
		results = make([]domain.ScoredChunk, 0, len(hits))
		for _, hit := range hits {
			results = append(results, domain.ScoredChunk{Chunk: hit.Chunk, Score: hit.Similarity})
		}
	}
	if len(results) > k {
		results = results[:k]
	}

	r.cachePut(cacheKey, results)
	r.recordQuery(question)
	return results, nil
}

// Invalidate drops every cached result. Fired on index rebuilds so stale
// hits never outlive the index they came from.
func (r *Retriever) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string][]domain.ScoredChunk)
	r.cacheOrder = r.cacheOrder[:0]
}

// rerankHits computes the composite score for each candidate and sorts
// descending, stable so ties keep their similarity order.
func rerankHits(question, category string, hits []driven.IndexHit) []domain.ScoredChunk {
	keywords := questionKeywords(question)

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		score := 1.0
		if category != "" && hit.Chunk.Category == category {
			score *= 1.2
		}
		score *= 1.0 + 0.05*float64(hit.Chunk.Version)

		matches := 0
		content := strings.ToLower(hit.Chunk.Content)
		for _, word := range keywords {
			if strings.Contains(content, word) {
				matches++
			}
		}
		score *= 1.0 + 0.1*float64(matches)

		results = append(results, domain.ScoredChunk{Chunk: hit.Chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// questionKeywords returns the question's lowercased words longer than
// three characters, used for the keyword-overlap signal.
func questionKeywords(question string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// enhanceQuery appends context terms from the recent query window so a
// follow-up question keeps the conversation's subject in scope. Queries
// carrying explicit field filters pass through verbatim.
func (r *Retriever) enhanceQuery(question string) string {
	lower := strings.ToLower(question)
	for _, prefix := range filterPrefixes {
		if strings.Contains(lower, prefix) {
			return question
		}
	}

	r.mu.Lock()
	recent := make([]string, len(r.recent))
	copy(recent, r.recent)
	r.mu.Unlock()

	if len(recent) == 0 {
		return question
	}

	seen := make(map[string]bool)
	for _, word := range strings.Fields(lower) {
		seen[strings.Trim(word, ".,!?;:\"'()")] = true
	}

	var terms []string
	for _, prev := range recent {
		for _, word := range strings.Fields(strings.ToLower(prev)) {
			word = strings.Trim(word, ".,!?;:\"'()")
			if len(word) <= 2 || stopWords[word] || seen[word] {
				continue
			}
			seen[word] = true
			terms = append(terms, word)
		}
	}
	if len(terms) == 0 {
		return question
	}
	return question + " " + strings.Join(terms, " ")
}

// recordQuery pushes a question onto the rolling window, deduplicated,
// keeping the newest queryWindowSize entries.
func (r *Retriever) recordQuery(question string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, prev := range r.recent {
		if prev == question {
			r.recent = append(r.recent[:i], r.recent[i+1:]...)
			break
		}
	}
	r.recent = append(r.recent, question)
	if len(r.recent) > queryWindowSize {
		r.recent = r.recent[len(r.recent)-queryWindowSize:]
	}
}

func (r *Retriever) cacheGet(key string) ([]domain.ScoredChunk, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results, ok := r.cache[key]
	return results, ok
}

func (r *Retriever) cachePut(key string, results []domain.ScoredChunk) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cache[key]; !exists {
		if len(r.cacheOrder) >= queryCacheCap {
			oldest := r.cacheOrder[0]
			r.cacheOrder = r.cacheOrder[1:]
			delete(r.cache, oldest)
		}
		r.cacheOrder = append(r.cacheOrder, key)
	}
	r.cache[key] = results
}
