package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	GroqAPIKey         string
	LLMBaseURL         string
	LLMModelName       string
	VisionModelName    string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingDim       int
	ChunkSize          int
	ChunkOverlap       int
	SearchK            int
	ThemeContentLimit  int
	VectorBackend      string
	QdrantURL          string
	QdrantCollection   string
	StorePath          string
	DBPath             string
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it is loaded
// automatically; environment variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up from the working directory looking for a .env at the project root.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.groq.com/openai"),
		LLMModelName:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		VisionModelName:    getEnv("VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", "flat")),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		StorePath:          getEnv("STORE_PATH", "./vector_store"),
		DBPath:             getEnv("DB_PATH", "./data/ragchat.db"),
		APIPort:            getEnv("API_PORT", "7860"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	var err error
	// EMBEDDING_DIM must match the output vector size of the embeddings model
	// (384 for all-MiniLM-L6-v2). If it changes, saved indexes and Qdrant
	// collections must be rebuilt.
	if cfg.EmbeddingDim, err = getEnvInt("EMBEDDING_DIM", 384); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 800); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 100); err != nil {
		return nil, err
	}
	if cfg.SearchK, err = getEnvInt("SEARCH_K", 5); err != nil {
		return nil, err
	}
	if cfg.ThemeContentLimit, err = getEnvInt("THEME_CONTENT_LIMIT", 10000); err != nil {
		return nil, err
	}

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be greater than 0")
	}
	if cfg.VectorBackend != "flat" && cfg.VectorBackend != "qdrant" {
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"flat\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Create the data directory up front so the SQLite open doesn't fail later.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}
