package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/registry"
)

// DefaultTTL applies when the configuration sets no cache TTL.
const DefaultTTL = 24 * time.Hour

// keyPrefix namespaces deep-search entries in the shared Redis instance.
const keyPrefix = "atlas:deepsearch:"

// SearchCache is a Redis-backed response cache for deep-search calls. The key
// covers the query, the scope list and the overrides, so any change to an
// agent's scopes naturally misses.
type SearchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSearchCache creates a SearchCache. A non-positive ttl selects the
// default.
func NewSearchCache(rdb *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{rdb: rdb, ttl: ttl}
}

// Key derives the cache key for a deep-search call.
func Key(agentID, query string, scopes []registry.KBScope, overrides *deepsearch.Overrides) string {
	payload, _ := json.Marshal(struct {
		AgentID   string                `json:"agent_id"`
		Query     string                `json:"query"`
		Scopes    []registry.KBScope    `json:"scopes"`
		Overrides *deepsearch.Overrides `json:"overrides,omitempty"`
	}{agentID, query, scopes, overrides})

	sum := sha256.Sum256(payload)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached results for key, or (nil, false) on a miss. Redis
// failures degrade to a miss.
func (c *SearchCache) Get(ctx context.Context, key string) ([]deepsearch.Result, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var results []deepsearch.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

// Set stores results under key for the configured TTL.
func (c *SearchCache) Set(ctx context.Context, key string, results []deepsearch.Result) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal cached results: %w", err)
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}
