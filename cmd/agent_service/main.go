package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Atlas_KB/internal/api"
	"Atlas_KB/internal/cache"
	"Atlas_KB/internal/classification"
	"Atlas_KB/internal/config"
	"Atlas_KB/internal/database/milvus"
	"Atlas_KB/internal/database/redis"
	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/embedding"
	"Atlas_KB/internal/knowledge"
	"Atlas_KB/internal/llm"
	"Atlas_KB/internal/registry"
	"Atlas_KB/pkg/logger"
)

func main() {
	// 1. Load Configuration
	configPath := os.Getenv("ATLAS_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("AgentService", "")
	appLogger.Info("Starting Agent Service...")

	ctx := context.Background()

	// 3. Load the Agent Registry
	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		log.Fatalf("Failed to load agent registry: %v", err)
	}
	stats := reg.RegistryStats()
	appLogger.Info(fmt.Sprintf("Agent registry loaded: %d agents, %d tools", stats.TotalAgents, stats.TotalTools))

	// 4. Initialize Backing Stores
	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer milvusClient.Close()
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure knowledge collection: %v", err)
	}

	var searchCache *cache.SearchCache
	if cfg.Databases.Redis.Address != "" {
		rdb, err := redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redis.Close()

		ttl, err := time.ParseDuration(cfg.Databases.Redis.CacheTTL)
		if err != nil {
			ttl = 0 // default TTL
		}
		searchCache = cache.NewSearchCache(rdb, ttl)
	} else {
		appLogger.Warn("Redis address not configured, deep-search response cache disabled")
	}

	// 5. Initialize Model Clients
	embedder, err := embedding.NewEmdModel(ctx, cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	// 6. Wire the Orchestrators
	searcher := knowledge.NewSearcher(milvusClient, embedder, appLogger)
	searchOrch := deepsearch.NewOrchestrator(searcher.Search, appLogger)

	heuristic := classification.NewHeuristicClassifier()
	modelClassifier := classification.NewModelClassifier(llmClient)
	classifyOrch := classification.NewOrchestrator(heuristic, modelClassifier, cfg.Classification.ConfidenceThreshold, appLogger)

	// 7. Start HTTP Server
	handler := api.NewHandler(reg, searchOrch, classifyOrch, searchCache, appLogger)
	router := api.SetupRouter(handler)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 8. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown: " + err.Error())
	}
	appLogger.Info("Server gracefully stopped")
}
