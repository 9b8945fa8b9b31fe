// Package chunker splits extracted records into overlapping chunks sized for
// embedding, and assigns each a deterministic content-addressed identifier.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"ragchat/internal/extract"
	"ragchat/internal/sentence"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 800
	// DefaultChunkOverlap is how many trailing characters of one chunk
	// reappear at the start of the next.
	DefaultChunkOverlap = 100

	// hashPrefixLen is the number of hex characters kept from each SHA-256
	// digest in a chunk ID. Truncated prefixes only need to be unique within
	// one corpus; at 8 hex characters the birthday bound puts collisions
	// around tens of thousands of chunks, which is accepted as a known
	// limitation.
	hashPrefixLen = 8
)

// separators are tried in priority order when splitting; oversized pieces are
// re-split at the next separator down, ending with a hard character split.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}

// Chunk is the unit of text actually indexed and retrieved. Provenance fields
// trace back to exactly one parent record.
type Chunk struct {
	Content       string
	ID            string
	Index         int
	TotalChunks   int
	Source        string
	Type          extract.DocType
	Page          int
	SentenceCount int
	WordCount     int
	CreatedAt     time.Time
}

// Splitter chunks records using recursive character splitting.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a Splitter. Non-positive size or negative overlap fall
// back to the defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// ChunkSize returns the configured target chunk length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap length.
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

// Split chunks one record and enriches each chunk with provenance and
// statistics. An empty record produces zero chunks; the last chunk of a
// record may be shorter than the target size.
func (s *Splitter) Split(rec extract.Record) []Chunk {
	pieces := s.splitText(rec.Text, separators)

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Enrich(piece, i, len(pieces), rec))
	}
	return chunks
}

// Enrich builds the fully populated chunk for one piece of content. It is a
// pure function of its inputs apart from the creation timestamp.
func Enrich(content string, index, total int, rec extract.Record) Chunk {
	return Chunk{
		Content:       content,
		ID:            ChunkID(content, rec.Source, index),
		Index:         index,
		TotalChunks:   total,
		Source:        rec.Source,
		Type:          rec.Type,
		Page:          rec.Page,
		SentenceCount: sentence.Count(content),
		WordCount:     len(strings.Fields(content)),
		CreatedAt:     time.Now().UTC(),
	}
}

// ChunkID derives the content-addressed identifier for a chunk:
// sha256(content) and sha256(source) prefixes joined with the chunk index.
// Re-processing identical input reproduces identical IDs.
func ChunkID(content, source string, index int) string {
	contentHash := sha256.Sum256([]byte(content))
	sourceHash := sha256.Sum256([]byte(source))
	return fmt.Sprintf("%s_%d_%s",
		hex.EncodeToString(contentHash[:])[:hashPrefixLen],
		index,
		hex.EncodeToString(sourceHash[:])[:hashPrefixLen],
	)
}

// splitText recursively splits text at the highest-priority separator present,
// then merges adjacent pieces back up to just under the chunk size with the
// configured overlap.
func (s *Splitter) splitText(text string, seps []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, seps)

	var pieces []string
	if sep == "" {
		pieces = splitEvery(text, s.chunkSize)
	} else {
		// Keep the separator attached to the preceding piece so merged
		// chunks reconstruct the original text exactly.
		pieces = strings.SplitAfter(text, sep)
	}

	// Re-split pieces that are still oversized at a lower-priority separator.
	var flat []string
	for _, piece := range pieces {
		if len(piece) <= s.chunkSize {
			if piece != "" {
				flat = append(flat, piece)
			}
			continue
		}
		flat = append(flat, s.splitText(piece, rest)...)
	}

	return s.merge(flat)
}

// pickSeparator returns the first separator that occurs in text, plus the
// remaining lower-priority separators.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, seps[i+1:]
		}
	}
	return "", nil
}

// splitEvery hard-splits text into size-length pieces.
func splitEvery(text string, size int) []string {
	var pieces []string
	for len(text) > size {
		pieces = append(pieces, text[:size])
		text = text[size:]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

// merge greedily joins adjacent pieces into chunks of at most chunkSize
// characters. When a chunk closes, trailing pieces totalling at most
// chunkOverlap characters are carried into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.Join(current, "")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}

		// Carry the overlap tail into the next chunk.
		var tail []string
		tailLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if tailLen+len(current[i]) > s.chunkOverlap {
				break
			}
			tailLen += len(current[i])
			tail = append([]string{current[i]}, tail...)
		}
		current = tail
		total = tailLen
	}

	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && len(current) > 0 {
			flush()
			// Shrink the carried tail if the incoming piece still does not fit.
			for len(current) > 0 && total+len(piece) > s.chunkSize {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += len(piece)
	}
	if len(current) > 0 {
		chunk := strings.Join(current, "")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
