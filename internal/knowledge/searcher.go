package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"Atlas_KB/internal/database/milvus"
	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/embedding"
	"Atlas_KB/pkg/logger"
)

// Field names of the knowledge collection.
const (
	fieldID           = "id"
	fieldContent      = "content"
	fieldSource       = "source"
	fieldCategory     = "category"
	fieldJurisdiction = "jurisdiction"
	fieldTags         = "tags"
)

// outputFields are the payload columns fetched alongside each hit.
var outputFields = []string{fieldContent, fieldSource, fieldCategory, fieldJurisdiction, fieldTags}

// Searcher runs scoped similarity searches over the Milvus knowledge
// collection. Its Search method satisfies the deep-search orchestrator's
// search function contract.
type Searcher struct {
	db       *milvus.MilvusClient
	embedder embedding.Embedding
	log      *logger.Logger
}

// NewSearcher creates a Searcher.
func NewSearcher(db *milvus.MilvusClient, embedder embedding.Embedding, log *logger.Logger) *Searcher {
	return &Searcher{
		db:       db,
		embedder: embedder,
		log:      log,
	}
}

// Search embeds the query, searches the knowledge collection under the scope
// filter and maps the hits into deep-search results. Category and
// jurisdictions filter server-side; tags filter client-side because they are
// stored as a comma-separated string.
func (s *Searcher) Search(ctx context.Context, params deepsearch.SearchParams) ([]deepsearch.Result, error) {
	vector, err := s.embedder.Embed(ctx, params.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.db.Search(ctx, vector, params.MatchCount, buildFilterExpr(params), outputFields)
	if err != nil {
		return nil, err
	}

	var results []deepsearch.Result
	for _, hit := range hits {
		for i := 0; i < hit.ResultCount; i++ {
			similarity := float64(hit.Scores[i])
			if similarity < params.MinSimilarity {
				continue
			}

			tags := splitTags(columnString(hit.Fields.GetColumn(fieldTags), i))
			if len(params.Tags) > 0 && !anyTagMatches(tags, params.Tags) {
				continue
			}

			results = append(results, deepsearch.Result{
				ID:      idAt(hit.IDs, i),
				Content: columnString(hit.Fields.GetColumn(fieldContent), i),
				Metadata: deepsearch.ResultMetadata{
					Source:       columnString(hit.Fields.GetColumn(fieldSource), i),
					Category:     columnString(hit.Fields.GetColumn(fieldCategory), i),
					Jurisdiction: columnString(hit.Fields.GetColumn(fieldJurisdiction), i),
					Tags:         tags,
					Similarity:   similarity,
				},
			})
		}
	}
	return results, nil
}

// buildFilterExpr composes the boolean filter for the scope. An empty scope
// yields an empty expression, which Milvus treats as no filter.
func buildFilterExpr(params deepsearch.SearchParams) string {
	var clauses []string
	if params.Category != "" {
		clauses = append(clauses, fmt.Sprintf("%s == %q", fieldCategory, escapeExprValue(params.Category)))
	}
	if len(params.Jurisdictions) > 0 {
		quoted := make([]string, 0, len(params.Jurisdictions))
		for _, j := range params.Jurisdictions {
			quoted = append(quoted, fmt.Sprintf("%q", escapeExprValue(j)))
		}
		clauses = append(clauses, fmt.Sprintf("%s in [%s]", fieldJurisdiction, strings.Join(quoted, ", ")))
	}
	return strings.Join(clauses, " && ")
}

// escapeExprValue keeps quotes in user-supplied scope values from breaking
// the filter expression.
func escapeExprValue(v string) string {
	return strings.ReplaceAll(v, `"`, ``)
}

// anyTagMatches reports whether the hit carries at least one wanted tag.
func anyTagMatches(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// splitTags parses the stored comma-separated tag string.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// columnString reads row i of a VarChar column, tolerating missing columns.
func columnString(col entity.Column, i int) string {
	if col == nil {
		return ""
	}
	v, err := col.GetAsString(i)
	if err != nil {
		return ""
	}
	return v
}

// idAt reads row i of the primary-key column.
func idAt(col entity.Column, i int) string {
	return columnString(col, i)
}
