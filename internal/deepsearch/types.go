package deepsearch

import "context"

// ResultMetadata carries the retrieval metadata of one knowledge-base hit.
type ResultMetadata struct {
	Source       string   `json:"source"`
	Category     string   `json:"category"`
	Jurisdiction string   `json:"jurisdiction,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Similarity   float64  `json:"similarity"` // 0..1, comparable across scopes
}

// Result is one scored document returned by the injected search function.
// Results are transient per query; this subsystem never persists them.
type Result struct {
	ID       string         `json:"id"` // deduplication identity
	Content  string         `json:"content"`
	Metadata ResultMetadata `json:"metadata"`
}

// SearchParams is the request the orchestrator hands to the injected search
// function, one per knowledge-base scope.
type SearchParams struct {
	Query         string   `json:"query"`
	Category      string   `json:"category,omitempty"`
	Jurisdictions []string `json:"jurisdictions,omitempty"`
	Tags          []string `json:"tags,omitempty"` // match-any; nil means no tag filter
	MatchCount    int      `json:"match_count,omitempty"`
	MinSimilarity float64  `json:"min_similarity,omitempty"`
}

// SearchFunc is the injected vector-search backend. The orchestrator makes no
// assumption about its backing store beyond comparable similarity scores.
type SearchFunc func(ctx context.Context, params SearchParams) ([]Result, error)

// Overrides optionally replaces per-scope request fields for a single search.
type Overrides struct {
	MatchCount    *int
	MinSimilarity *float64
}
