// Package index defines the vector index capability used for similarity
// search, with an in-process exact-search backend and a Qdrant-backed one.
package index

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks ragchat/internal/index Index

import "context"

// Item is one entry to insert: the indexed text, its embedding, and arbitrary
// metadata returned verbatim on retrieval.
type Item struct {
	Content string
	Vector  []float32
	Meta    map[string]any
}

// Hit is one search result. Score follows the backend's native metric: hits
// are always ordered most-similar first, but callers must not assume a fixed
// numeric range or direction.
type Hit struct {
	Content string
	Meta    map[string]any
	Score   float32
}

// Index is the vector index capability.
type Index interface {
	// Insert adds items to the index in order.
	Insert(ctx context.Context, items []Item) error

	// Search returns up to k hits ordered most-similar first.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)

	// Count returns the number of indexed items. This count is authoritative
	// for corpus statistics.
	Count(ctx context.Context) (int, error)

	// Save persists the index under the given directory.
	Save(path string) error
}
