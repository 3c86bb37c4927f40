package deepsearch

import (
	"context"
	"fmt"
	"sort"

	"Atlas_KB/internal/registry"
	"Atlas_KB/pkg/logger"
)

// Orchestrator fans a query out across an agent's knowledge-base scopes,
// deduplicates the merged results by id and ranks them by similarity.
type Orchestrator struct {
	search SearchFunc
	log    *logger.Logger
}

// NewOrchestrator creates an Orchestrator around the injected search function.
func NewOrchestrator(search SearchFunc, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		search: search,
		log:    log,
	}
}

// Search issues one search per scope, sequentially, and merges the results.
// A document returned by several scopes survives once, as the copy from the
// earliest scope in iteration order; the merged list is then ordered by
// similarity descending with ties keeping their relative input order.
//
// Any single scope failure fails the whole call. Scopes are few and trusted
// (typically 1-3 per agent); callers needing per-scope isolation must wrap
// the injected search function themselves.
func (o *Orchestrator) Search(ctx context.Context, query string, scopes []registry.KBScope, overrides *Overrides) ([]Result, error) {
	o.log.Info(fmt.Sprintf("Starting deep search across %d scope(s) for query: '%s'", len(scopes), query))

	var merged []Result
	for i, scope := range scopes {
		params := SearchParams{
			Query:         query,
			Category:      scope.Category,
			Jurisdictions: scope.Jurisdictions,
			MatchCount:    scope.MaxResults,
			MinSimilarity: scope.MinSimilarity,
		}
		if len(scope.TagsAny) > 0 {
			params.Tags = scope.TagsAny
		}
		if overrides != nil {
			if overrides.MatchCount != nil {
				params.MatchCount = *overrides.MatchCount
			}
			if overrides.MinSimilarity != nil {
				params.MinSimilarity = *overrides.MinSimilarity
			}
		}

		results, err := o.search(ctx, params)
		if err != nil {
			o.log.Error(fmt.Sprintf("Scope %d (category %q) search failed: %v", i+1, scope.Category, err))
			return nil, fmt.Errorf("deep search failed for scope %d (category %q): %w", i+1, scope.Category, err)
		}
		merged = append(merged, results...)
	}

	deduped := dedupeByID(merged)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Metadata.Similarity > deduped[j].Metadata.Similarity
	})

	o.log.Info(fmt.Sprintf("Deep search merged %d result(s) into %d after deduplication", len(merged), len(deduped)))
	return deduped, nil
}

// SearchSingleScope is a convenience wrapper around Search for one scope.
func (o *Orchestrator) SearchSingleScope(ctx context.Context, query string, scope registry.KBScope, overrides *Overrides) ([]Result, error) {
	return o.Search(ctx, query, []registry.KBScope{scope}, overrides)
}

// dedupeByID keeps the first occurrence of every id, preserving input order.
func dedupeByID(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	deduped := make([]Result, 0, len(results))
	for _, r := range results {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		deduped = append(deduped, r)
	}
	return deduped
}
