package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/extract"
	"ragchat/internal/http"
	"ragchat/internal/index"
	"ragchat/internal/llm"
	"ragchat/internal/processor"
	"ragchat/internal/service"
	"ragchat/internal/storage"
	"ragchat/internal/themes"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	historyRepo := storage.NewHistoryRepo(db)

	// Text generation is optional: without an API key, OCR, theme analysis
	// and answer generation all degrade to their fallbacks.
	var generator llm.TextGenerator
	if cfg.GroqAPIKey != "" {
		generator = llm.NewClient(cfg.LLMBaseURL, cfg.GroqAPIKey, cfg.LLMModelName, cfg.VisionModelName)
		slog.Info("LLM client configured", "model", cfg.LLMModelName, "vision_model", cfg.VisionModelName)
	} else {
		slog.Warn("GROQ_API_KEY not set; OCR, theme analysis and answer generation are disabled")
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.GroqAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDim)

	backend := newBackend(cfg)
	slog.Info("Vector backend selected", "backend", cfg.VectorBackend)

	extractor := extract.New(generator)
	splitter := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	proc := processor.New(embedder, extractor, splitter, backend, cfg.EmbeddingModelName)

	analyzer := themes.NewAnalyzer(generator, cfg.ThemeContentLimit)
	chatService := service.NewChatService(proc, analyzer, generator, historyRepo, cfg.SearchK)

	deps := &http.Deps{
		ChatService: chatService,
		Processor:   proc,
		StorePath:   cfg.StorePath,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// newBackend maps the configured vector backend to index constructors.
// The flat backend persists locally; Qdrant is durable server-side, so a
// fresh ingestion recreates the collection and opening reuses it.
func newBackend(cfg *config.Config) processor.Backend {
	if cfg.VectorBackend == "qdrant" {
		return processor.Backend{
			New: func(ctx context.Context) (index.Index, error) {
				return index.NewQdrant(ctx, cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDim, true)
			},
			Open: func(ctx context.Context, _ string) (index.Index, error) {
				return index.NewQdrant(ctx, cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDim, false)
			},
		}
	}
	return processor.Backend{
		New: func(_ context.Context) (index.Index, error) {
			return index.NewFlat(cfg.EmbeddingDim), nil
		},
		Open: func(_ context.Context, path string) (index.Index, error) {
			return index.OpenFlat(path)
		},
	}
}
