package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo corresponds to the 'app' section and carries basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // e.g. "development", "production"
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // log level (e.g. "info", "debug", "warn", "error")
}

// OpenAIConfig holds credentials and model names for the OpenAI provider.
type OpenAIConfig struct {
	APIKey string `yaml:"apiKey"` // OpenAI API key
	Model  string `yaml:"model"`  // chat/completion model name
}

// GeminiConfig holds credentials and model names for the Gemini provider.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API key
	Model  string `yaml:"model"`  // model name
}

// LLMConfig selects the completion provider used by the model classifier.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // "openai" or "gemini"
	OpenAI   OpenAIConfig `yaml:"openai"`
	Gemini   GeminiConfig `yaml:"gemini"`
}

// EmbeddingConfig selects the embedding provider used by the knowledge searcher.
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // "openai" or "gemini"
	OpenAI   OpenAIConfig `yaml:"openai"`
	Gemini   GeminiConfig `yaml:"gemini"`
}

// RegistryConfig points at the agent registry definition file.
type RegistryConfig struct {
	Path string `yaml:"path"` // path to agent_registry.yaml
}

// ClassificationConfig tunes the web-source classification orchestrator.
type ClassificationConfig struct {
	ConfidenceThreshold float64 `yaml:"confidenceThreshold"` // below this the heuristic escalates to the LLM (default 80)
	BatchConcurrency    int     `yaml:"batchConcurrency"`    // parallel window size for LLM batch classification (default 5)
}

// FieldConfig describes one field of the Milvus knowledge collection.
type FieldConfig struct {
	Name         string `yaml:"name"`
	DataType     string `yaml:"dataType"` // e.g. "VarChar", "FloatVector"
	IsPrimaryKey bool   `yaml:"isPrimaryKey"`
	Dim          int    `yaml:"dim,omitempty"`       // vector dimension, vector fields only
	MaxLength    int    `yaml:"maxLength,omitempty"` // VarChar fields only
}

// IndexConfig describes the vector index of the knowledge collection.
type IndexConfig struct {
	FieldName  string                 `yaml:"fieldName"`
	IndexType  string                 `yaml:"indexType"`  // e.g. "IVF_FLAT", "HNSW", "AUTOINDEX"
	MetricType string                 `yaml:"metricType"` // e.g. "COSINE", "IP", "L2"
	Params     map[string]interface{} `yaml:"params"`
}

// SchemaConfig describes the Milvus knowledge collection schema.
type SchemaConfig struct {
	CollectionName string        `yaml:"collectionName"`
	Description    string        `yaml:"description"`
	VectorField    string        `yaml:"vectorField"`
	Fields         []FieldConfig `yaml:"fields"`
	Index          IndexConfig   `yaml:"index"`
}

// MilvusConfig holds the Milvus connection and schema configuration.
type MilvusConfig struct {
	Address string       `yaml:"address"`
	Schema  SchemaConfig `yaml:"schema"`
}

// RedisConfig holds the Redis connection configuration.
type RedisConfig struct {
	Address  string `yaml:"address"` // empty disables the deep-search response cache
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	CacheTTL string `yaml:"cacheTTL"` // e.g. "24h"
}

// DatabaseConfigs groups all backing-store configuration.
type DatabaseConfigs struct {
	Milvus MilvusConfig `yaml:"milvus"`
	Redis  RedisConfig  `yaml:"redis"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Address string `yaml:"address"` // e.g. ":8080"
}

// AppConfig is the root structure of the YAML configuration file.
type AppConfig struct {
	App            AppInfo              `yaml:"app"`
	Logger         LoggerConfig         `yaml:"logger"`
	Server         ServerConfig         `yaml:"server"`
	LLM            LLMConfig            `yaml:"llm"`
	Embedding      EmbeddingConfig      `yaml:"embedding"`
	Registry       RegistryConfig       `yaml:"registry"`
	Classification ClassificationConfig `yaml:"classification"`
	Databases      DatabaseConfigs      `yaml:"databases"`
}

// LoadConfig loads and parses the YAML configuration file at the given path.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return &cfg, nil
}
