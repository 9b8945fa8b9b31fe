package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SidecarFilename is the fixed name of the corpus metadata file written next
// to the serialized index.
const SidecarFilename = "corpus_metadata.json"

// ProcessedFile is a per-record summary kept for statistics after the raw
// records themselves are gone.
type ProcessedFile struct {
	Source      string `json:"source"`
	Type        string `json:"type"`
	WordCount   int    `json:"word_count"`
	ProcessedAt string `json:"processed_at"`
}

// Sidecar is the corpus-level metadata persisted alongside the index.
type Sidecar struct {
	NumDocuments   int             `json:"num_documents"`
	NumChunks      int             `json:"num_chunks"`
	EmbeddingModel string          `json:"embedding_model"`
	ProcessedFiles []ProcessedFile `json:"processed_files"`
	CreatedAt      string          `json:"created_at"`
	ChunkSize      int             `json:"chunk_size"`
	ChunkOverlap   int             `json:"chunk_overlap"`
}

func writeSidecar(path string, sc Sidecar) error {
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, SidecarFilename), data, 0644); err != nil {
		return fmt.Errorf("failed to write corpus metadata: %w", err)
	}
	return nil
}

// readSidecar loads the metadata file if present. A missing sidecar is not an
// error; the second return reports whether one was found.
func readSidecar(path string) (Sidecar, bool, error) {
	data, err := os.ReadFile(filepath.Join(path, SidecarFilename))
	if os.IsNotExist(err) {
		return Sidecar{}, false, nil
	}
	if err != nil {
		return Sidecar{}, false, fmt.Errorf("failed to read corpus metadata: %w", err)
	}

	var sc Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return Sidecar{}, false, fmt.Errorf("failed to decode corpus metadata: %w", err)
	}
	return sc, true, nil
}

func timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
