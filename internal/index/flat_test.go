package index

import (
	"context"
	"testing"
)

func TestFlat_InsertAndSearch(t *testing.T) {
	ctx := context.Background()
	f := NewFlat(3)

	items := []Item{
		{Content: "far", Vector: []float32{10, 0, 0}, Meta: map[string]any{"chunk_index": 0}},
		{Content: "near", Vector: []float32{1, 0, 0}, Meta: map[string]any{"chunk_index": 1}},
		{Content: "middle", Vector: []float32{5, 0, 0}, Meta: map[string]any{"chunk_index": 2}},
	}
	if err := f.Insert(ctx, items); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	hits, err := f.Search(ctx, []float32{0, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}

	// Ascending distance: near, middle, far.
	want := []string{"near", "middle", "far"}
	for i, hit := range hits {
		if hit.Content != want[i] {
			t.Errorf("hit %d = %q, want %q", i, hit.Content, want[i])
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score < hits[i-1].Score {
			t.Errorf("scores not ascending: %v then %v", hits[i-1].Score, hits[i].Score)
		}
	}
}

func TestFlat_SearchLimitsK(t *testing.T) {
	ctx := context.Background()
	f := NewFlat(2)
	_ = f.Insert(ctx, []Item{
		{Content: "a", Vector: []float32{0, 1}},
		{Content: "b", Vector: []float32{1, 0}},
	})

	hits, err := f.Search(ctx, []float32{0, 1}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits when k exceeds item count, got %d", len(hits))
	}

	hits, err = f.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "a" {
		t.Errorf("expected single nearest hit %q, got %+v", "a", hits)
	}
}

func TestFlat_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	f := NewFlat(3)

	if err := f.Insert(ctx, []Item{{Content: "bad", Vector: []float32{1, 2}}}); err == nil {
		t.Error("expected error inserting vector of wrong dimension")
	}
	if _, err := f.Search(ctx, []float32{1, 2}, 1); err == nil {
		t.Error("expected error searching with query of wrong dimension")
	}
}

func TestFlat_Count(t *testing.T) {
	ctx := context.Background()
	f := NewFlat(2)

	count, err := f.Count(ctx)
	if err != nil || count != 0 {
		t.Errorf("Count = %d, %v; want 0, nil", count, err)
	}

	_ = f.Insert(ctx, []Item{
		{Content: "a", Vector: []float32{0, 1}},
		{Content: "b", Vector: []float32{1, 0}},
	})
	count, _ = f.Count(ctx)
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestFlat_SaveAndOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f := NewFlat(2)
	_ = f.Insert(ctx, []Item{
		{Content: "alpha", Vector: []float32{0.5, 0.5}, Meta: map[string]any{"source": "/docs/a.txt", "chunk_index": 0}},
		{Content: "beta", Vector: []float32{0.9, 0.1}, Meta: map[string]any{"source": "/docs/b.txt", "chunk_index": 1}},
	})

	if err := f.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := OpenFlat(dir)
	if err != nil {
		t.Fatalf("OpenFlat failed: %v", err)
	}

	count, _ := loaded.Count(ctx)
	if count != 2 {
		t.Errorf("loaded Count = %d, want 2", count)
	}

	hits, err := loaded.Search(ctx, []float32{0.5, 0.5}, 1)
	if err != nil {
		t.Fatalf("Search on loaded index failed: %v", err)
	}
	if hits[0].Content != "alpha" {
		t.Errorf("nearest hit = %q, want %q", hits[0].Content, "alpha")
	}
	if src, ok := hits[0].Meta["source"].(string); !ok || src != "/docs/a.txt" {
		t.Errorf("metadata not preserved across round trip: %+v", hits[0].Meta)
	}
}

func TestOpenFlat_MissingIsHardFailure(t *testing.T) {
	if _, err := OpenFlat(t.TempDir()); err == nil {
		t.Error("expected error opening a directory without an index file")
	}
}

func TestFlat_SearchInvalidK(t *testing.T) {
	f := NewFlat(2)
	if _, err := f.Search(context.Background(), []float32{0, 1}, 0); err == nil {
		t.Error("expected error for k = 0")
	}
}
