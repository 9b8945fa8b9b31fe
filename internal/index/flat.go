package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FlatFilename is the fixed name of the serialized flat index inside its
// store directory.
const FlatFilename = "index.json"

// Flat is an in-process exact-search vector index. Scores are Euclidean
// distances, so lower means more similar and results are ordered ascending.
type Flat struct {
	mu        sync.RWMutex
	dimension int
	items     []flatItem
}

type flatItem struct {
	Content string         `json:"content"`
	Vector  []float32      `json:"vector"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// flatFile is the on-disk layout of a flat index.
type flatFile struct {
	Dimension int        `json:"dimension"`
	Items     []flatItem `json:"items"`
}

// NewFlat creates an empty flat index for vectors of the given dimension.
func NewFlat(dimension int) *Flat {
	return &Flat{dimension: dimension}
}

// OpenFlat loads a flat index previously written by Save. A missing or
// corrupt index file is a hard failure.
func OpenFlat(path string) (*Flat, error) {
	data, err := os.ReadFile(filepath.Join(path, FlatFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var file flatFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode index file: %w", err)
	}
	if file.Dimension <= 0 {
		return nil, fmt.Errorf("index file has invalid dimension %d", file.Dimension)
	}
	for i, item := range file.Items {
		if len(item.Vector) != file.Dimension {
			return nil, fmt.Errorf("item %d has vector size %d, expected %d", i, len(item.Vector), file.Dimension)
		}
	}

	return &Flat{dimension: file.Dimension, items: file.Items}, nil
}

// Insert adds items to the index in order.
func (f *Flat) Insert(ctx context.Context, items []Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, item := range items {
		if len(item.Vector) != f.dimension {
			return fmt.Errorf("item %d has vector size %d, expected %d", i, len(item.Vector), f.dimension)
		}
	}
	for _, item := range items {
		f.items = append(f.items, flatItem{
			Content: item.Content,
			Vector:  item.Vector,
			Meta:    item.Meta,
		})
	}
	return nil
}

// Search returns up to k hits ordered by ascending Euclidean distance.
func (f *Flat) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(query) != f.dimension {
		return nil, fmt.Errorf("query has vector size %d, expected %d", len(query), f.dimension)
	}

	type scored struct {
		idx  int
		dist float32
	}
	scores := make([]scored, len(f.items))
	for i, item := range f.items {
		scores[i] = scored{idx: i, dist: euclidean(query, item.Vector)}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].dist < scores[b].dist
	})

	if k > len(scores) {
		k = len(scores)
	}
	hits := make([]Hit, 0, k)
	for _, s := range scores[:k] {
		item := f.items[s.idx]
		hits = append(hits, Hit{
			Content: item.Content,
			Meta:    item.Meta,
			Score:   s.dist,
		})
	}
	return hits, nil
}

// Count returns the number of indexed items.
func (f *Flat) Count(ctx context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items), nil
}

// Save writes the index as JSON under the given directory, creating it if
// needed.
func (f *Flat) Save(path string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.Marshal(flatFile{Dimension: f.dimension, Items: f.items})
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, FlatFilename), data, 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

func euclidean(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
