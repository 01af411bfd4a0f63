// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retriever wraps vector-similarity search with embedding caching,
// metadata filtering, score thresholds, optional reranking, and result-set
// caching.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mfreytag/diag-engine/internal/cache"
	"github.com/mfreytag/diag-engine/internal/embedding"
	"github.com/mfreytag/diag-engine/internal/vectorindex"
	"github.com/mfreytag/diag-engine/pkg/types"
)

// ErrUnavailable marks a retrieval that failed because the embedding
// provider or the vector index is unreachable. Callers degrade the
// affected source to empty evidence instead of aborting.
var ErrUnavailable = errors.New("retrieval unavailable")

// ErrValidation marks malformed retrieval input. Callers treat the call
// as returning no results.
var ErrValidation = errors.New("invalid retrieval input")

// Filters restricts retrieval to passages whose payload matches every
// non-empty field.
type Filters struct {
	VehicleType      string
	Variant          string
	CrewRole         string
	MaintenanceLevel string
	Priority         string
	ComponentID      string
	DataType         string
}

// Map returns the non-empty fields as a filter map. An empty map means no
// restriction.
func (f Filters) Map() map[string]string {
	m := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	set("vehicle_type", f.VehicleType)
	set("variant", f.Variant)
	set("crew_role", f.CrewRole)
	set("maintenance_level", f.MaintenanceLevel)
	set("priority", f.Priority)
	set("component_id", f.ComponentID)
	set("data_type", f.DataType)
	return m
}

// Options tunes one retrieval call.
type Options struct {
	// TopK is the number of items to return.
	TopK int

	// MinScore drops candidates scoring below it before any reranking.
	MinScore float64

	// Rerank reorders the candidate pool by a blended relevance signal.
	Rerank bool
}

// Result is one retrieval response. TotalFound counts the candidates that
// passed the score threshold, before truncation to TopK.
type Result struct {
	Items      []types.EvidenceItem
	TotalFound int
}

// Retriever is the shared semantic-retrieval service. It owns the two
// cache instances: query embeddings are stable and live long; result sets
// go stale when the knowledge base is re-seeded and live short.
type Retriever struct {
	provider    embedding.Provider
	index       vectorindex.Index
	embedCache  *cache.Cache[[]float64]
	resultCache *cache.Cache[Result]
	minScore    float64
}

// New wires a retriever from its collaborators.
func New(provider embedding.Provider, index vectorindex.Index, cfg types.RetrieverConfig) *Retriever {
	cfg = types.EngineConfig{Retriever: cfg}.WithDefaults().Retriever
	return &Retriever{
		provider:    provider,
		index:       index,
		embedCache:  cache.New[[]float64](cfg.EmbeddingTTL),
		resultCache: cache.New[Result](cfg.ResultTTL),
		minScore:    cfg.MinScore,
	}
}

// Retrieve embeds the query (cache-checked), runs the filtered
// nearest-neighbor search, applies the score threshold, optionally
// reranks, and returns at most TopK items. Responses are cached under the
// full (query, filters, topK, minScore, rerank) tuple. A zero MinScore
// falls back to the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters Filters, opts Options) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, fmt.Errorf("%w: empty query", ErrValidation)
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MinScore <= 0 {
		opts.MinScore = r.minScore
	}

	key := r.cacheKey(query, filters, opts)
	if cached, ok := r.resultCache.Get(key); ok {
		return cached, nil
	}

	vector, err := r.embed(ctx, query)
	if err != nil {
		return Result{}, err
	}

	// Reranking needs a wider pool to choose from.
	fetchK := opts.TopK
	if opts.Rerank {
		fetchK = opts.TopK * 3
		if fetchK < 15 {
			fetchK = 15
		}
	}

	matches, err := r.index.Query(ctx, vector, fetchK, filters.Map())
	if err != nil {
		return Result{}, fmt.Errorf("%w: vector index: %v", ErrUnavailable, err)
	}

	items := make([]types.EvidenceItem, 0, len(matches))
	for _, m := range matches {
		if m.Score < opts.MinScore {
			continue
		}
		items = append(items, types.EvidenceItem{
			Text:             m.Payload.Text,
			SourceSectionID:  m.Payload.SectionID,
			Score:            m.Score,
			ComponentID:      m.Payload.ComponentID,
			Priority:         m.Payload.Priority,
			CheckpointNumber: m.Payload.CheckpointNumber,
		})
	}

	totalFound := len(items)
	if opts.Rerank {
		items = rerank(query, items)
	}
	if len(items) > opts.TopK {
		items = items[:opts.TopK]
	}

	result := Result{Items: items, TotalFound: totalFound}
	r.resultCache.Set(key, result)
	return result, nil
}

// EmbedCacheStats and ResultCacheStats expose the cache counters for the
// CLI's verbose output.
func (r *Retriever) EmbedCacheStats() cache.Stats  { return r.embedCache.Stats() }
func (r *Retriever) ResultCacheStats() cache.Stats { return r.resultCache.Stats() }

// Cleanup sweeps expired entries from both caches.
func (r *Retriever) Cleanup() {
	r.embedCache.Cleanup()
	r.resultCache.Cleanup()
}

func (r *Retriever) embed(ctx context.Context, query string) ([]float64, error) {
	if vec, ok := r.embedCache.Get(query); ok {
		return vec, nil
	}
	vec, err := r.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding provider: %v", ErrUnavailable, err)
	}
	r.embedCache.Set(query, vec)
	return vec, nil
}

func (r *Retriever) cacheKey(query string, filters Filters, opts Options) string {
	m := filters.Map()
	m["_topk"] = strconv.Itoa(opts.TopK)
	m["_min_score"] = strconv.FormatFloat(opts.MinScore, 'f', -1, 64)
	m["_rerank"] = strconv.FormatBool(opts.Rerank)
	return cache.GenerateKey(query, m)
}

// rerank reorders the filtered candidates by a blend of lexical relevance
// to the query (0.5), the vector similarity (0.3), and the original rank
// position (0.2). It is a pure reordering: no candidate is added or
// modified.
func rerank(query string, items []types.EvidenceItem) []types.EvidenceItem {
	n := len(items)
	if n < 2 {
		return items
	}

	queryTokens := tokenSet(query)
	blended := make([]float64, n)
	for i, item := range items {
		position := 1.0 - float64(i)/float64(n-1)*0.9
		blended[i] = 0.5*lexicalOverlap(queryTokens, item.Text) + 0.3*item.Score + 0.2*position
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return blended[order[a]] > blended[order[b]]
	})

	reranked := make([]types.EvidenceItem, n)
	for i, idx := range order {
		reranked[i] = items[idx]
	}
	return reranked
}

// lexicalOverlap is the fraction of query tokens appearing in text.
func lexicalOverlap(queryTokens map[string]bool, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	textTokens := tokenSet(text)
	hits := 0
	for token := range queryTokens {
		if textTokens[token] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(token, ".,;:!?()\"'")] = true
	}
	return set
}
