// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gather collects diagnostic evidence from three independent
// sources: the general knowledge base, the component catalog, and the
// failure-mode records. The sources run concurrently and fail
// independently; a degraded source contributes empty evidence and a note
// for the report's evidence trail, never a pipeline abort.
package gather

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mfreytag/diag-engine/internal/retriever"
	"github.com/mfreytag/diag-engine/internal/symptom"
	"github.com/mfreytag/diag-engine/pkg/types"
)

const (
	relatedIssuesLimit = 10
	failureModesLimit  = 8
	kbSystemCap        = 3
	failureSystemCap   = 2
	failureMinScore    = 0.5
)

// Searcher is the retrieval contract the gatherer consumes.
type Searcher interface {
	Retrieve(ctx context.Context, query string, filters retriever.Filters, opts retriever.Options) (retriever.Result, error)
}

// Catalog is the component-table contract the gatherer consumes.
type Catalog interface {
	ComponentsForSystem(ctx context.Context, tag types.SystemTag) ([]string, error)
	Component(ctx context.Context, id string) (types.ComponentRecord, error)
	MatchHint(ctx context.Context, hint string) (string, bool)
	FallbackComponentID() string
}

// Bundle is the joined evidence from all three sources.
type Bundle struct {
	// RelatedIssues are the top knowledge-base passages, deduplicated
	// and sorted by score.
	RelatedIssues []types.EvidenceItem

	// ComponentEvidence maps resolved component IDs to their full
	// catalog records.
	ComponentEvidence map[string]types.ComponentRecord

	// FailureModes are the top defect-record passages, deduplicated and
	// sorted by score.
	FailureModes []types.EvidenceItem

	// SourceErrors records degraded sources or sub-calls for the
	// evidence trail.
	SourceErrors []string
}

// Gatherer fans retrieval out across the three evidence sources.
type Gatherer struct {
	searcher Searcher
	catalog  Catalog
}

// New wires a gatherer from its collaborators.
func New(searcher Searcher, catalog Catalog) *Gatherer {
	return &Gatherer{searcher: searcher, catalog: catalog}
}

// Gather runs the three sources concurrently and joins them. All three
// complete (or individually degrade) before it returns.
func (g *Gatherer) Gather(ctx context.Context, sctx types.SymptomContext) Bundle {
	var (
		wg         sync.WaitGroup
		related    []types.EvidenceItem
		relErrs    []string
		components map[string]types.ComponentRecord
		compErrs   []string
		failures   []types.EvidenceItem
		failErrs   []string
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		related, relErrs = g.searchKnowledgeBase(ctx, sctx)
	}()
	go func() {
		defer wg.Done()
		components, compErrs = g.lookupComponents(ctx, sctx)
	}()
	go func() {
		defer wg.Done()
		failures, failErrs = g.searchFailureModes(ctx, sctx)
	}()
	wg.Wait()

	bundle := Bundle{
		RelatedIssues:     related,
		ComponentEvidence: components,
		FailureModes:      failures,
	}
	bundle.SourceErrors = append(bundle.SourceErrors, relErrs...)
	bundle.SourceErrors = append(bundle.SourceErrors, compErrs...)
	bundle.SourceErrors = append(bundle.SourceErrors, failErrs...)
	return bundle
}

// searchKnowledgeBase runs the raw-text query plus one derived query per
// affected system (capped), merges in declared order, and keeps the top
// passages.
func (g *Gatherer) searchKnowledgeBase(ctx context.Context, sctx types.SymptomContext) ([]types.EvidenceItem, []string) {
	queries := []string{sctx.RawText}
	for i, tag := range sctx.AffectedSystems {
		if i == kbSystemCap {
			break
		}
		queries = append(queries, symptom.SystemQuery(tag))
	}

	results, errs := g.retrieveAll(ctx, "knowledge base", queries, retriever.Filters{}, retriever.Options{TopK: 5})

	var merged []types.EvidenceItem
	for _, r := range results {
		merged = append(merged, r.Items...)
	}
	merged = dedupe(merged, checkpointKey)
	sortByScore(merged)
	return truncate(merged, relatedIssuesLimit), errs
}

// lookupComponents resolves components from the affected systems and the
// operator hint, then fetches their catalog records in parallel. A failed
// lookup omits that component only.
func (g *Gatherer) lookupComponents(ctx context.Context, sctx types.SymptomContext) (map[string]types.ComponentRecord, []string) {
	var (
		ids  []string
		seen = make(map[string]bool)
		errs []string
	)

	for _, tag := range sctx.AffectedSystems {
		compIDs, err := g.catalog.ComponentsForSystem(ctx, tag)
		if err != nil {
			errs = append(errs, fmt.Sprintf("component lookup: system %s: %v", tag, err))
			continue
		}
		for _, id := range compIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	if sctx.ComponentHint != "" {
		if id, ok := g.catalog.MatchHint(ctx, sctx.ComponentHint); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		ids = []string{g.catalog.FallbackComponentID()}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records = make(map[string]types.ComponentRecord, len(ids))
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			rec, err := g.catalog.Component(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Sprintf("component lookup: %s: %v", id, err))
				return
			}
			records[id] = rec
		}(id)
	}
	wg.Wait()

	return records, errs
}

// searchFailureModes runs the defect-record query for the symptom text
// plus one component-failure query per affected system (capped), merges
// in declared order, and keeps the top passages.
func (g *Gatherer) searchFailureModes(ctx context.Context, sctx types.SymptomContext) ([]types.EvidenceItem, []string) {
	queries := []string{sctx.RawText}
	for i, tag := range sctx.AffectedSystems {
		if i == failureSystemCap {
			break
		}
		queries = append(queries, fmt.Sprintf("%s komponente ausfall fehlerbild", tag))
	}

	results, errs := g.retrieveAll(ctx, "failure modes", queries,
		retriever.Filters{DataType: "defect"},
		retriever.Options{TopK: 5, MinScore: failureMinScore})

	var merged []types.EvidenceItem
	for _, r := range results {
		merged = append(merged, r.Items...)
	}
	merged = dedupe(merged, componentKey)
	sortByScore(merged)
	return truncate(merged, failureModesLimit), errs
}

// retrieveAll fans the queries out in parallel but returns the results in
// declared query order, so first-seen deduplication stays deterministic.
func (g *Gatherer) retrieveAll(ctx context.Context, source string, queries []string, filters retriever.Filters, opts retriever.Options) ([]retriever.Result, []string) {
	var wg sync.WaitGroup
	results := make([]retriever.Result, len(queries))
	callErrs := make([]error, len(queries))

	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			results[i], callErrs[i] = g.searcher.Retrieve(ctx, q, filters, opts)
		}(i, q)
	}
	wg.Wait()

	var errs []string
	for i, err := range callErrs {
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: query %q: %v", source, shorten(queries[i]), err))
		}
	}
	return results, errs
}

// dedupe keeps the first occurrence of each key. Later duplicates are
// dropped regardless of score; first-seen wins by declared source order.
func dedupe(items []types.EvidenceItem, key func(types.EvidenceItem) string) []types.EvidenceItem {
	seen := make(map[string]bool, len(items))
	deduped := items[:0:0]
	for _, item := range items {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, item)
	}
	return deduped
}

// checkpointKey identifies knowledge-base passages by section and
// checkpoint.
func checkpointKey(e types.EvidenceItem) string {
	checkpoint := "n/a"
	if e.CheckpointNumber != 0 {
		checkpoint = fmt.Sprintf("%d", e.CheckpointNumber)
	}
	return e.SourceSectionID + "|" + checkpoint
}

// componentKey identifies failure-mode passages by section and component.
func componentKey(e types.EvidenceItem) string {
	return e.DedupKey()
}

func sortByScore(items []types.EvidenceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

func truncate(items []types.EvidenceItem, limit int) []types.EvidenceItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func shorten(q string) string {
	if len(q) <= 40 {
		return q
	}
	return strings.TrimSpace(q[:37]) + "..."
}
