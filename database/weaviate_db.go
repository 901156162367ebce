package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"coursebot/types"
)

const BATCH_SIZE = 200

// WeaviateStore is a VectorStore backed by one Weaviate class. Two
// instances with different class names make up the dual index.
type WeaviateStore struct {
	client    *weaviate.Client
	className string
}

// WeaviateConfig configures the connection shared by both collections.
type WeaviateConfig struct {
	Host      string `mapstructure:"host"`
	APIKey    string `mapstructure:"WEAVIATE_APIKEY"`
	BaseClass string `mapstructure:"base_class"`
	UserClass string `mapstructure:"user_class"`
}

func chunkClassObject(className string) *models.Class {
	return &models.Class{
		Class: className,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "sourceType", DataType: []string{"text"}},
			{Name: "originalFilename", DataType: []string{"text"}},
			{Name: "uploadTime", DataType: []string{"text"}},
			{Name: "fileSize", DataType: []string{"int"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

// NewWeaviateClient connects to the configured Weaviate instance.
func NewWeaviateClient(config WeaviateConfig) (*weaviate.Client, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}
	return client, nil
}

// NewWeaviateStore binds one collection class, creating it if absent.
func NewWeaviateStore(client *weaviate.Client, className string) (*WeaviateStore, error) {
	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasClass := false
	for _, class := range schema.Classes {
		if class.Class == className {
			hasClass = true
			break
		}
	}
	if !hasClass {
		err = client.Schema().ClassCreator().WithClass(chunkClassObject(className)).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create class %s: %v", className, err)
		}
	}
	return &WeaviateStore{
		client:    client,
		className: className,
	}, nil
}

// Drop deletes and recreates the collection class.
func (s *WeaviateStore) Drop(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(s.className).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete class %s: %v", s.className, err)
	}
	err = s.client.Schema().ClassCreator().WithClass(chunkClassObject(s.className)).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create class %s: %v", s.className, err)
	}
	return nil
}

func chunkProperties(chunk types.Chunk) map[string]interface{} {
	return map[string]interface{}{
		"content":          chunk.Content,
		"source":           chunk.Source,
		"page":             chunk.Page,
		"sourceType":       string(chunk.SourceType),
		"originalFilename": chunk.OriginalFilename,
		"uploadTime":       chunk.UploadTime,
		"fileSize":         chunk.FileSize,
	}
}

func (s *WeaviateStore) Insert(ctx context.Context, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class:      s.className,
				Properties: chunkProperties(chunks[j]),
				Vector:     vectors[j],
			})
		}

		_, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		log.Printf("Inserted batch %d-%d of %d chunks into %s", i, end, total, s.className)
	}
	return nil
}

func (s *WeaviateStore) Search(ctx context.Context, vector []float32, limit int) ([]types.Chunk, []float32, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "page"},
		{Name: "sourceType"},
		{Name: "originalFilename"},
		{Name: "uploadTime"},
		{Name: "fileSize"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, nil, err
	}
	if result.Errors != nil {
		return nil, nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var chunks []types.Chunk
	var scores []float32
	if data, ok := result.Data["Get"].(map[string]interface{})[s.className].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			chunk := types.Chunk{
				Content:          parseString(obj["content"]),
				Source:           parseString(obj["source"]),
				Page:             parseInt(obj["page"]),
				SourceType:       types.SourceType(parseString(obj["sourceType"])),
				OriginalFilename: parseString(obj["originalFilename"]),
				UploadTime:       parseString(obj["uploadTime"]),
				FileSize:         int64(parseInt(obj["fileSize"])),
			}
			chunks = append(chunks, chunk)

			score := float32(0)
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if distance, ok := additional["distance"].(float64); ok {
					// Cosine distance in [0,2]; similarity mirrors the local backend.
					score = float32(1 - distance)
				}
			}
			scores = append(scores, score)
		}
	}
	return chunks, scores, nil
}

func (s *WeaviateStore) DeleteByFilename(ctx context.Context, originalFilename string) (int, error) {
	where := filters.Where().
		WithPath([]string{"originalFilename"}).
		WithOperator(filters.Equal).
		WithValueText(originalFilename)

	resp, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(s.className).
		WithWhere(where).
		WithOutput("minimal").
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks for %s: %v", originalFilename, err)
	}
	if resp == nil || resp.Results == nil {
		return 0, nil
	}
	return int(resp.Results.Successful), nil
}

func (s *WeaviateStore) Count(ctx context.Context) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(s.className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if result.Errors != nil {
		return 0, fmt.Errorf("count failed: %v", result.Errors[0].Message)
	}

	agg, ok := result.Data["Aggregate"].(map[string]interface{})[s.className].([]interface{})
	if !ok || len(agg) == 0 {
		return 0, nil
	}
	meta, ok := agg[0].(map[string]interface{})["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, nil
	}
	return int(count), nil
}

// Exists reports whether the collection already holds chunks: the class is
// created eagerly on connect, so presence of data is the persistence signal.
func (s *WeaviateStore) Exists(ctx context.Context) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Helper functions
func parseString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func parseInt(v interface{}) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}
