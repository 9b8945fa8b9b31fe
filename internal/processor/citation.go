package processor

import (
	"fmt"
	"path/filepath"

	"ragchat/internal/extract"
)

// CitationResult is one retrieved chunk decorated with a human-readable
// citation. The citation is always recomputed from the chunk's provenance
// fields, never stored.
type CitationResult struct {
	Content       string  `json:"content"`
	Score         float32 `json:"score"`
	Source        string  `json:"source"`
	Type          string  `json:"type"`
	ChunkID       string  `json:"chunk_id"`
	ChunkIndex    int     `json:"chunk_index"`
	Page          int     `json:"page,omitempty"`
	WordCount     int     `json:"word_count"`
	SentenceCount int     `json:"sentence_count"`
	Citation      string  `json:"citation"`
}

// CitationLabel formats the provenance string for a retrieved chunk. The
// mapping is total over document types: anything unrecognized falls back to
// the bare filename.
func CitationLabel(docType, source string, page, chunkIndex int) string {
	name := filepath.Base(source)
	switch {
	case docType == string(extract.TypePDF) && page > 0:
		return fmt.Sprintf("%s, Page %d", name, page)
	case docType == string(extract.TypeText):
		return fmt.Sprintf("%s, Chunk %d", name, chunkIndex+1)
	case docType == string(extract.TypeImage):
		return fmt.Sprintf("%s (OCR)", name)
	default:
		return name
	}
}

// Index metadata comes back through JSON or gRPC payload conversion, so
// numeric values may arrive as int, int64, or float64.
func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
