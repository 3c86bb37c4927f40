package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"Atlas_KB/internal/classification"
	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/registry"
	"Atlas_KB/pkg/logger"
)

const apiRegistryYAML = `
version: 1
tools:
  - id: deep_search_kb
    kind: rag_search
    description: "Search the knowledge base."
    implementation:
      openai:
        tool_name: deep_search_knowledge_base
      gemini:
        function_name: deepSearchKnowledgeBase
agents:
  - id: ifrs_advisor
    label: "IFRS Advisor"
    group: accounting
    persona: "You are an IFRS advisor."
    runtime:
      openai:
        model: gpt-4o-mini
        tools: [deep_search_kb]
      gemini:
        model: gemini-2.0-flash
        tools: [deep_search_kb]
    kb_scopes:
      - tool: deep_search_kb
        category: IFRS
        jurisdictions: [GLOBAL]
        max_results: 10
  - id: audit_assistant
    label: "Audit Assistant"
    group: audit
    persona: "You support audit fieldwork."
    runtime:
      openai:
        model: gpt-4o-mini
        tools: [deep_search_kb]
      gemini:
        model: gemini-2.0-flash
        tools: [deep_search_kb]
`

func newTestRouter(t *testing.T, search deepsearch.SearchFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := registry.Parse([]byte(apiRegistryYAML))
	if err != nil {
		t.Fatalf("failed to parse test registry: %v", err)
	}

	log := logger.New("api_test", "")
	searchOrch := deepsearch.NewOrchestrator(search, log)
	classifyOrch := classification.NewOrchestrator(classification.NewHeuristicClassifier(), nil, 0, log)

	return SetupRouter(NewHandler(reg, searchOrch, classifyOrch, nil, log))
}

func noopSearch(ctx context.Context, params deepsearch.SearchParams) ([]deepsearch.Result, error) {
	return nil, nil
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListAgents(t *testing.T) {
	router := newTestRouter(t, noopSearch)

	w := doJSON(t, router, http.MethodGet, "/api/v1/agents", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count: got %d, want 2", resp.Count)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/agents?group=audit", "")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("filtered count: got %d, want 1", resp.Count)
	}
}

func TestGetAgent(t *testing.T) {
	router := newTestRouter(t, noopSearch)

	w := doJSON(t, router, http.MethodGet, "/api/v1/agents/ifrs_advisor", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/agents/ghost", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown agent, got %d", w.Code)
	}
}

func TestRegistryStats(t *testing.T) {
	router := newTestRouter(t, noopSearch)

	w := doJSON(t, router, http.MethodGet, "/api/v1/registry/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	var stats registry.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if stats.TotalAgents != 2 || stats.TotalTools != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestAgentSearch(t *testing.T) {
	search := func(ctx context.Context, params deepsearch.SearchParams) ([]deepsearch.Result, error) {
		return []deepsearch.Result{{
			ID:      "doc-1",
			Content: "IFRS 16 requires lessees to recognise assets.",
			Metadata: deepsearch.ResultMetadata{
				Source:       "ifrs.org",
				Jurisdiction: "GLOBAL",
				Similarity:   0.91,
			},
		}}, nil
	}
	router := newTestRouter(t, search)

	w := doJSON(t, router, http.MethodPost, "/api/v1/agents/ifrs_advisor/search", `{"query":"leases"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Formatted string              `json:"formatted"`
		Results   []deepsearch.Result `json:"results"`
		Cached    bool                `json:"cached"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "doc-1" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
	if !strings.HasPrefix(resp.Formatted, "## Knowledge Base Results") {
		t.Errorf("formatted block missing header: %q", resp.Formatted)
	}
	if resp.Cached {
		t.Error("cache disabled, response must not claim a hit")
	}
}

func TestAgentSearchValidation(t *testing.T) {
	router := newTestRouter(t, noopSearch)

	w := doJSON(t, router, http.MethodPost, "/api/v1/agents/ghost/search", `{"query":"q"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown agent, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/agents/ifrs_advisor/search", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing query, got %d", w.Code)
	}
}

func TestAgentSearchUpstreamFailure(t *testing.T) {
	search := func(ctx context.Context, params deepsearch.SearchParams) ([]deepsearch.Result, error) {
		return nil, errors.New("vector store unavailable")
	}
	router := newTestRouter(t, search)

	w := doJSON(t, router, http.MethodPost, "/api/v1/agents/ifrs_advisor/search", `{"query":"leases"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for upstream search failure, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "vector store unavailable") {
		t.Errorf("error body should carry the upstream cause: %s", w.Body.String())
	}
}

func TestClassifyWebSource(t *testing.T) {
	router := newTestRouter(t, noopSearch)

	w := doJSON(t, router, http.MethodPost, "/api/v1/web-sources/classify", `{"url":"https://www.ifrs.org/standards"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var result classification.WebSourceClassification
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.Category != "IFRS" || result.Source != classification.SourceHeuristic {
		t.Errorf("unexpected classification: %+v", result)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/web-sources/classify", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing url, got %d", w.Code)
	}
}

func TestClassifyWebSourceBatch(t *testing.T) {
	router := newTestRouter(t, noopSearch)

	body := `{"sources":[{"url":"https://www.ifrs.org"},{"url":"https://rra.gov.rw"}],"heuristic_only":true}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/web-sources/classify/batch", body)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count   int                                      `json:"count"`
		Results []classification.WebSourceClassification `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count: got %d, want 2", resp.Count)
	}
	if resp.Results[0].Category != "IFRS" || resp.Results[1].Category != "TAX" {
		t.Errorf("batch order not preserved: %+v", resp.Results)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter(t, noopSearch)

	w := doJSON(t, router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("request id not echoed: %q", got)
	}
}
