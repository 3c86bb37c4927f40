package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDHeader carries the per-request correlation id.
const requestIDHeader = "X-Request-ID"

// RequestID assigns a UUID to requests that arrive without one and echoes it
// back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// SetupRouter configures and returns a Gin engine.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(RequestID())

	r.GET("/healthz", h.healthz)

	apiV1 := r.Group("/api/v1")
	{
		agents := apiV1.Group("/agents")
		{
			agents.GET("", h.listAgents)
			agents.GET("/:id", h.getAgent)
			agents.POST("/:id/search", h.agentSearch)
		}

		apiV1.GET("/registry/stats", h.registryStats)

		webSources := apiV1.Group("/web-sources")
		{
			webSources.POST("/classify", h.classifyWebSource)
			webSources.POST("/classify/batch", h.classifyWebSourceBatch)
		}
	}

	return r
}
