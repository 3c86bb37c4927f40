package milvus

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"Atlas_KB/internal/config"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient wraps the Milvus SDK client together with the knowledge
// collection configuration.
type MilvusClient struct {
	Client client.Client
	Config *config.MilvusConfig
}

// GetClient initializes and returns the process-wide Milvus client. The
// connection is established once.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("unable to connect to Milvus: %w", err)
			return
		}
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close safely closes the Milvus connection.
func (c *MilvusClient) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// HealthCheck checks the health of the Milvus connection.
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// Search runs a vector similarity search over the knowledge collection,
// optionally restricted by a boolean filter expression, and returns the
// requested output fields.
func (c *MilvusClient) Search(ctx context.Context, vector []float32, topK int, expr string, outputFields []string) ([]client.SearchResult, error) {
	collName := c.Config.Schema.CollectionName

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return nil, fmt.Errorf("failed to load collection '%s': %w", collName, err)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	searchVectors := []entity.Vector{entity.FloatVector(vector)}
	metric := entity.MetricType(c.Config.Schema.Index.MetricType)

	results, err := c.Client.Search(
		ctx,
		collName,
		nil,
		expr,
		outputFields,
		searchVectors,
		c.Config.Schema.VectorField,
		metric,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("search in collection '%s' failed: %w", collName, err)
	}
	return results, nil
}

// EnsureCollection makes sure the knowledge collection exists, creating it
// with the configured schema and index when missing, then loads it.
func (c *MilvusClient) EnsureCollection(ctx context.Context) error {
	collName := c.Config.Schema.CollectionName
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		schemaFields := make([]*entity.Field, 0, len(c.Config.Schema.Fields))
		for _, fieldCfg := range c.Config.Schema.Fields {
			field := entity.NewField().WithName(fieldCfg.Name)

			if fieldCfg.IsPrimaryKey {
				field = field.WithIsPrimaryKey(true)
			}

			switch fieldCfg.DataType {
			case "Int64":
				field = field.WithDataType(entity.FieldTypeInt64)
			case "VarChar":
				field = field.WithDataType(entity.FieldTypeVarChar).WithMaxLength(int64(fieldCfg.MaxLength))
			case "FloatVector":
				field = field.WithDataType(entity.FieldTypeFloatVector).WithDim(int64(fieldCfg.Dim))
			case "Float":
				field = field.WithDataType(entity.FieldTypeFloat)
			case "Double":
				field = field.WithDataType(entity.FieldTypeDouble)
			case "Bool":
				field = field.WithDataType(entity.FieldTypeBool)
			default:
				return fmt.Errorf("unsupported data type: %s", fieldCfg.DataType)
			}

			schemaFields = append(schemaFields, field)
		}

		schema := entity.NewSchema().
			WithName(collName).
			WithDescription(c.Config.Schema.Description)
		for _, field := range schemaFields {
			schema = schema.WithField(field)
		}

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx, err := c.buildIndexFromConfig()
		if err != nil {
			return err
		}
		if err := c.Client.CreateIndex(ctx, collName, c.Config.Schema.Index.FieldName, idx, false); err != nil {
			return fmt.Errorf("failed to create index on field '%s': %w", c.Config.Schema.Index.FieldName, err)
		}
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("failed to load Milvus collection '%s': %w", collName, err)
	}
	return nil
}

// buildIndexFromConfig builds the index entity from the configured index
// section.
func (c *MilvusClient) buildIndexFromConfig() (entity.Index, error) {
	indexCfg := c.Config.Schema.Index
	metricType := entity.MetricType(indexCfg.MetricType)

	switch indexCfg.IndexType {
	case "IVF_FLAT":
		nlist, ok := indexCfg.Params["nlist"].(int)
		if !ok {
			nlist = 128
		}
		return entity.NewIndexIvfFlat(metricType, nlist)
	case "HNSW":
		M, ok := indexCfg.Params["M"].(int)
		if !ok {
			M = 8
		}
		efConstruction, ok := indexCfg.Params["efConstruction"].(int)
		if !ok {
			efConstruction = 96
		}
		return entity.NewIndexHNSW(metricType, M, efConstruction)
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("unsupported index type: %s", indexCfg.IndexType)
	}
}
