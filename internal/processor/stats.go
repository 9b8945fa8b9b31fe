package processor

import "time"

// Stats summarizes the active corpus for display. TotalChunks comes from the
// index's own count, which is authoritative; the other fields are folded from
// per-record summaries.
type Stats struct {
	TotalFiles     int            `json:"total_files"`
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	FileTypes      []string       `json:"file_types"`
	TypeCounts     map[string]int `json:"type_counts"`
	ProcessedAt    string         `json:"processed_at"`
}

// foldStats derives corpus statistics in one pass over the per-record
// summaries. Each unique source file counts once toward its type.
func foldStats(files []ProcessedFile, chunkCount int, at time.Time) Stats {
	seen := make(map[string]struct{})
	typeCounts := make(map[string]int)
	var fileTypes []string

	for _, f := range files {
		if _, ok := seen[f.Source]; ok {
			continue
		}
		seen[f.Source] = struct{}{}
		if typeCounts[f.Type] == 0 {
			fileTypes = append(fileTypes, f.Type)
		}
		typeCounts[f.Type]++
	}

	return Stats{
		TotalFiles:     len(seen),
		TotalDocuments: len(files),
		TotalChunks:    chunkCount,
		FileTypes:      fileTypes,
		TypeCounts:     typeCounts,
		ProcessedAt:    timestamp(at),
	}
}
