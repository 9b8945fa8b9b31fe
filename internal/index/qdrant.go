package index

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantIndex implements Index against a Qdrant collection. Scores are cosine
// similarities as reported by Qdrant (higher means more similar); Qdrant
// already returns hits best-first. The collection is durable server-side, so
// Save has nothing to persist locally.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrant connects to Qdrant and ensures the collection exists with the
// given vector size. When recreate is true an existing collection is dropped
// first, giving a fresh index for a new ingestion build.
// urlStr should be in the format "http://host:port"; the gRPC port is derived
// from the HTTP port.
func NewQdrant(ctx context.Context, urlStr, collection string, vectorSize int, recreate bool) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	idx := &QdrantIndex{client: client, collection: collection}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists && recreate {
		if err := client.DeleteCollection(ctx, collection); err != nil {
			return nil, fmt.Errorf("failed to drop collection: %w", err)
		}
		exists = false
	}
	if !exists {
		err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create collection: %w", err)
		}
	}

	return idx, nil
}

// Insert adds items as points with generated IDs; the content travels in the
// payload so Search can return it.
func (q *QdrantIndex) Insert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(items))
	for _, item := range items {
		payload := make(map[string]any, len(item.Meta)+1)
		for k, v := range item.Meta {
			payload[k] = v
		}
		payload["content"] = item.Content

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.New().String()),
			Vectors: qdrant.NewVectors(item.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// Search returns up to k hits ordered by descending cosine similarity.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]Hit, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		meta := convertPayloadToMap(point.Payload)
		content, _ := meta["content"].(string)
		delete(meta, "content")

		hits = append(hits, Hit{
			Content: content,
			Meta:    meta,
			Score:   point.Score,
		})
	}
	return hits, nil
}

// Count returns the number of points in the collection.
func (q *QdrantIndex) Count(ctx context.Context) (int, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}
	if info.PointsCount == nil {
		return 0, nil
	}
	return int(*info.PointsCount), nil
}

// Save is a no-op: the collection is persisted server-side by Qdrant.
func (q *QdrantIndex) Save(path string) error {
	return nil
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to a Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
