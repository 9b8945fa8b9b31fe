// Package processor owns the single active corpus: it runs the ingestion
// pipeline (extract, chunk, embed, index), serves citation-decorated
// similarity search, and persists the corpus to disk. Ingestion builds a new
// corpus off to the side and swaps it in atomically, so a failed run never
// leaves a half-built index active.
package processor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"ragchat/internal/chunker"
	"ragchat/internal/contextutil"
	"ragchat/internal/extract"
	"ragchat/internal/index"
	"ragchat/internal/llm"
)

// Backend constructs index instances. New builds a fresh index for ingestion;
// Open reconstructs one from a store directory.
type Backend struct {
	New  func(ctx context.Context) (index.Index, error)
	Open func(ctx context.Context, path string) (index.Index, error)
}

// corpus pairs an index with the per-record summaries that statistics and
// the persistence sidecar are folded from.
type corpus struct {
	idx     index.Index
	files   []ProcessedFile
	builtAt time.Time
}

// Processor is the session object for document ingestion and retrieval.
// At most one corpus is active at a time; all access goes through the lock.
type Processor struct {
	mu     sync.RWMutex
	corpus *corpus

	embedder       llm.Embedder
	extractor      *extract.Extractor
	splitter       *chunker.Splitter
	backend        Backend
	embeddingModel string
}

func New(embedder llm.Embedder, extractor *extract.Extractor, splitter *chunker.Splitter, backend Backend, embeddingModel string) *Processor {
	return &Processor{
		embedder:       embedder,
		extractor:      extractor,
		splitter:       splitter,
		backend:        backend,
		embeddingModel: embeddingModel,
	}
}

// ProcessFiles ingests the given files into a new corpus, replacing any
// active one. Returns ErrEmptyInput when nothing usable was extracted.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) (Stats, error) {
	records := p.extractor.ExtractFiles(ctx, paths)
	return p.ingest(ctx, records)
}

// ProcessDirectory ingests every supported file under dir, recursively.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (Stats, error) {
	records, err := p.extractor.ExtractDir(ctx, dir)
	if err != nil {
		return Stats{}, err
	}
	return p.ingest(ctx, records)
}

func (p *Processor) ingest(ctx context.Context, records []extract.Record) (Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(records) == 0 {
		return Stats{}, ErrEmptyInput
	}

	// Chunks are indexed in record order, chunk index order within each.
	var chunks []chunker.Chunk
	for _, rec := range records {
		chunks = append(chunks, p.splitter.Split(rec)...)
	}
	if len(chunks) == 0 {
		return Stats{}, ErrEmptyInput
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to embed chunks: %w", err)
	}

	idx, err := p.backend.New(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create index: %w", err)
	}

	items := make([]index.Item, len(chunks))
	for i, c := range chunks {
		items[i] = index.Item{
			Content: c.Content,
			Vector:  vectors[i],
			Meta:    chunkMeta(c),
		}
	}
	if err := idx.Insert(ctx, items); err != nil {
		return Stats{}, fmt.Errorf("failed to index chunks: %w", err)
	}

	count, err := idx.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count indexed chunks: %w", err)
	}

	now := time.Now()
	files := make([]ProcessedFile, len(records))
	for i, rec := range records {
		files[i] = ProcessedFile{
			Source:      rec.Source,
			Type:        string(rec.Type),
			WordCount:   rec.WordCount,
			ProcessedAt: timestamp(rec.ExtractedAt),
		}
	}

	p.mu.Lock()
	p.corpus = &corpus{idx: idx, files: files, builtAt: now}
	p.mu.Unlock()

	stats := foldStats(files, count, now)
	logger.InfoContext(ctx, "corpus built",
		"files", stats.TotalFiles, "documents", stats.TotalDocuments, "chunks", stats.TotalChunks)
	return stats, nil
}

func chunkMeta(c chunker.Chunk) map[string]any {
	meta := map[string]any{
		"source":         c.Source,
		"type":           string(c.Type),
		"chunk_id":       c.ID,
		"chunk_index":    c.Index,
		"total_chunks":   c.TotalChunks,
		"word_count":     c.WordCount,
		"sentence_count": c.SentenceCount,
	}
	if c.Page > 0 {
		meta["page"] = c.Page
	}
	return meta
}

// SearchWithCitations embeds the query and returns up to k results, each
// decorated with a citation label. With no active corpus it returns an empty
// list rather than an error; callers can check Ready first.
func (p *Processor) SearchWithCitations(ctx context.Context, query string, k int) ([]CitationResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	p.mu.RLock()
	c := p.corpus
	p.mu.RUnlock()
	if c == nil {
		logger.WarnContext(ctx, "search requested with no active corpus")
		return []CitationResult{}, nil
	}

	vectors, err := p.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := c.idx.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]CitationResult, len(hits))
	for i, hit := range hits {
		docType := metaString(hit.Meta, "type")
		source := metaString(hit.Meta, "source")
		page := metaInt(hit.Meta, "page")
		chunkIndex := metaInt(hit.Meta, "chunk_index")
		results[i] = CitationResult{
			Content:       hit.Content,
			Score:         hit.Score,
			Source:        source,
			Type:          docType,
			ChunkID:       metaString(hit.Meta, "chunk_id"),
			ChunkIndex:    chunkIndex,
			Page:          page,
			WordCount:     metaInt(hit.Meta, "word_count"),
			SentenceCount: metaInt(hit.Meta, "sentence_count"),
			Citation:      CitationLabel(docType, source, page, chunkIndex),
		}
	}

	logger.InfoContext(ctx, "search completed", "query", query, "results", len(results))
	return results, nil
}

// Save persists the active corpus: the index under path plus the metadata
// sidecar. Fails with ErrNoActiveIndex when nothing has been indexed.
func (p *Processor) Save(ctx context.Context, path string) error {
	p.mu.RLock()
	c := p.corpus
	p.mu.RUnlock()
	if c == nil {
		return ErrNoActiveIndex
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := c.idx.Save(path); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	count, err := c.idx.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count indexed chunks: %w", err)
	}
	sc := Sidecar{
		NumDocuments:   len(c.files),
		NumChunks:      count,
		EmbeddingModel: p.embeddingModel,
		ProcessedFiles: c.files,
		CreatedAt:      time.Now().Format(time.RFC3339),
		ChunkSize:      p.splitter.ChunkSize(),
		ChunkOverlap:   p.splitter.ChunkOverlap(),
	}
	if err := writeSidecar(path, sc); err != nil {
		return err
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "corpus saved", "path", path, "chunks", count)
	return nil
}

// Load reconstructs a corpus from a store directory and makes it active.
// A missing or corrupt index is a hard failure; a missing sidecar only costs
// the statistics.
func (p *Processor) Load(ctx context.Context, path string) error {
	logger := contextutil.LoggerFromContext(ctx)

	idx, err := p.backend.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	var files []ProcessedFile
	sc, found, err := readSidecar(path)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "ignoring unreadable corpus metadata", "path", path, "error", err)
	case found:
		files = sc.ProcessedFiles
	}

	p.mu.Lock()
	p.corpus = &corpus{idx: idx, files: files, builtAt: time.Now()}
	p.mu.Unlock()

	logger.InfoContext(ctx, "corpus loaded", "path", path, "documents", len(files))
	return nil
}

// Ready reports whether a corpus is active.
func (p *Processor) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.corpus != nil
}

// Reset discards the active corpus, if any.
func (p *Processor) Reset() {
	p.mu.Lock()
	p.corpus = nil
	p.mu.Unlock()
}

// Stats folds corpus statistics from the active corpus. Fails with
// ErrNoActiveIndex when there is none.
func (p *Processor) Stats(ctx context.Context) (Stats, error) {
	p.mu.RLock()
	c := p.corpus
	p.mu.RUnlock()
	if c == nil {
		return Stats{}, ErrNoActiveIndex
	}

	count, err := c.idx.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count indexed chunks: %w", err)
	}
	return foldStats(c.files, count, c.builtAt), nil
}
