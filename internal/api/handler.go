package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Atlas_KB/internal/cache"
	"Atlas_KB/internal/classification"
	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/registry"
	"Atlas_KB/pkg/logger"
)

// Handler bundles the service dependencies used by the HTTP routes.
type Handler struct {
	reg        *registry.AgentRegistry
	search     *deepsearch.Orchestrator
	classifier *classification.Orchestrator
	cache      *cache.SearchCache // nil disables response caching
	log        *logger.Logger
}

// NewHandler creates a Handler. The cache may be nil.
func NewHandler(reg *registry.AgentRegistry, search *deepsearch.Orchestrator, classifier *classification.Orchestrator, searchCache *cache.SearchCache, log *logger.Logger) *Handler {
	return &Handler{
		reg:        reg,
		search:     search,
		classifier: classifier,
		cache:      searchCache,
		log:        log,
	}
}

// listAgents returns every agent, optionally filtered by group.
func (h *Handler) listAgents(c *gin.Context) {
	group := c.Query("group")

	var agents []*registry.AgentDefinition
	if group != "" {
		agents = h.reg.AgentsByGroup(group)
	} else {
		agents = h.reg.AllAgents()
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents, "count": len(agents)})
}

// getAgent returns one agent by id.
func (h *Handler) getAgent(c *gin.Context) {
	agent, ok := h.reg.Agent(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	c.JSON(http.StatusOK, agent)
}

// registryStats returns aggregate registry counts.
func (h *Handler) registryStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.reg.RegistryStats())
}

type searchRequest struct {
	Query         string   `json:"query" binding:"required"`
	MatchCount    *int     `json:"match_count"`
	MinSimilarity *float64 `json:"min_similarity"`
}

// agentSearch runs a deep search under an agent's knowledge-base scopes and
// returns both the raw results and the prompt-ready block.
func (h *Handler) agentSearch(c *gin.Context) {
	agentID := c.Param("id")
	agent, ok := h.reg.Agent(agentID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var overrides *deepsearch.Overrides
	if req.MatchCount != nil || req.MinSimilarity != nil {
		overrides = &deepsearch.Overrides{
			MatchCount:    req.MatchCount,
			MinSimilarity: req.MinSimilarity,
		}
	}

	key := cache.Key(agentID, req.Query, agent.KBScopes, overrides)
	if h.cache != nil {
		if results, hit := h.cache.Get(c.Request.Context(), key); hit {
			c.JSON(http.StatusOK, gin.H{
				"results":   results,
				"formatted": deepsearch.FormatResultsForPrompt(results),
				"cached":    true,
			})
			return
		}
	}

	results, err := h.search.Search(c.Request.Context(), req.Query, agent.KBScopes, overrides)
	if err != nil {
		h.log.WithField("agent_id", agentID).Error("Deep search failed: " + err.Error())
		// The failure is in the retrieval backend, not this service.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), key, results); err != nil {
			h.log.Warn("Failed to cache search results: " + err.Error())
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"formatted": deepsearch.FormatResultsForPrompt(results),
		"cached":    false,
	})
}

type classifyRequest struct {
	URL           string  `json:"url" binding:"required"`
	PageTitle     string  `json:"page_title"`
	PageSnippet   string  `json:"page_snippet"`
	ForceLLM      bool    `json:"force_llm"`
	HeuristicOnly bool    `json:"heuristic_only"`
	Threshold     float64 `json:"threshold"`
}

// classifyWebSource classifies a single web source.
func (h *Handler) classifyWebSource(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.classifier.ClassifyWebSource(c.Request.Context(), classification.Input{
		URL:         req.URL,
		PageTitle:   req.PageTitle,
		PageSnippet: req.PageSnippet,
	}, &classification.Options{
		ForceLLM:      req.ForceLLM,
		HeuristicOnly: req.HeuristicOnly,
		Threshold:     req.Threshold,
	})
	c.JSON(http.StatusOK, result)
}

type classifyBatchRequest struct {
	Sources       []classification.Input `json:"sources" binding:"required"`
	ForceLLM      bool                   `json:"force_llm"`
	HeuristicOnly bool                   `json:"heuristic_only"`
	Threshold     float64                `json:"threshold"`
	Concurrency   int                    `json:"concurrency"`
}

// classifyWebSourceBatch classifies several web sources, bounded-concurrent.
func (h *Handler) classifyWebSourceBatch(c *gin.Context) {
	var req classifyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := &classification.Options{
		ForceLLM:      req.ForceLLM,
		HeuristicOnly: req.HeuristicOnly,
		Threshold:     req.Threshold,
	}
	results := h.classifier.ClassifyBatchConcurrent(c.Request.Context(), req.Sources, opts, req.Concurrency)
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// healthz reports liveness.
func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
