package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
app:
  name: "Atlas_KB"
  version: "1.0.0"
  environment: "test"
logger:
  level: "debug"
server:
  address: ":9090"
llm:
  provider: "gemini"
  gemini:
    apiKey: "k"
    model: "gemini-2.0-flash"
embedding:
  provider: "openai"
  openai:
    apiKey: "k"
    model: "text-embedding-3-small"
registry:
  path: "config/agent_registry.yaml"
classification:
  confidenceThreshold: 75
  batchConcurrency: 3
databases:
  milvus:
    address: "localhost:19530"
    schema:
      collectionName: "knowledge_chunks"
      vectorField: "embedding"
      fields:
        - name: "id"
          dataType: "VarChar"
          isPrimaryKey: true
          maxLength: 64
        - name: "embedding"
          dataType: "FloatVector"
          dim: 768
      index:
        fieldName: "embedding"
        indexType: "AUTOINDEX"
        metricType: "COSINE"
  redis:
    address: "localhost:6379"
    db: 1
    cacheTTL: "12h"
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.App.Name != "Atlas_KB" || cfg.Logger.Level != "debug" {
		t.Errorf("unexpected app/logger config: %+v %+v", cfg.App, cfg.Logger)
	}
	if cfg.LLM.Provider != "gemini" || cfg.Embedding.Provider != "openai" {
		t.Errorf("unexpected provider selection: %q %q", cfg.LLM.Provider, cfg.Embedding.Provider)
	}
	if cfg.Classification.ConfidenceThreshold != 75 || cfg.Classification.BatchConcurrency != 3 {
		t.Errorf("unexpected classification config: %+v", cfg.Classification)
	}
	if cfg.Databases.Milvus.Schema.CollectionName != "knowledge_chunks" {
		t.Errorf("unexpected milvus schema: %+v", cfg.Databases.Milvus.Schema)
	}
	if len(cfg.Databases.Milvus.Schema.Fields) != 2 || cfg.Databases.Milvus.Schema.Fields[1].Dim != 768 {
		t.Errorf("unexpected milvus fields: %+v", cfg.Databases.Milvus.Schema.Fields)
	}
	if cfg.Databases.Redis.DB != 1 || cfg.Databases.Redis.CacheTTL != "12h" {
		t.Errorf("unexpected redis config: %+v", cfg.Databases.Redis)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
