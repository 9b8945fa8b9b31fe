package handlers

import (
	"context"
	"errors"
	"net/http"

	"ragchat/internal/contextutil"
	"ragchat/internal/processor"
)

// CorpusStore is what the persistence endpoints need from the processor.
type CorpusStore interface {
	Save(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
	Stats(ctx context.Context) (processor.Stats, error)
}

// SaveStoreHandler persists the active corpus to the configured store path.
type SaveStoreHandler struct {
	store     CorpusStore
	storePath string
}

// NewSaveStoreHandler creates a new SaveStoreHandler.
func NewSaveStoreHandler(store CorpusStore, storePath string) *SaveStoreHandler {
	return &SaveStoreHandler{store: store, storePath: storePath}
}

func (h *SaveStoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.store.Save(ctx, h.storePath); err != nil {
		if errors.Is(err, processor.ErrNoActiveIndex) {
			writeError(w, http.StatusBadRequest, "No vector store to save. Process documents first.")
			return
		}
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to save vector store", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save vector store")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "Vector store saved successfully",
	})
}

// LoadStoreHandler reloads a previously saved corpus from the store path.
type LoadStoreHandler struct {
	store     CorpusStore
	storePath string
}

// NewLoadStoreHandler creates a new LoadStoreHandler.
func NewLoadStoreHandler(store CorpusStore, storePath string) *LoadStoreHandler {
	return &LoadStoreHandler{store: store, storePath: storePath}
}

func (h *LoadStoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if err := h.store.Load(ctx, h.storePath); err != nil {
		logger.WarnContext(ctx, "failed to load vector store", "path", h.storePath, "error", err)
		writeError(w, http.StatusBadRequest, "Failed to load vector store. Check if it exists.")
		return
	}

	var stats any = struct{}{}
	if s, err := h.store.Stats(ctx); err == nil {
		stats = s
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "Vector store loaded successfully",
		Stats:   stats,
	})
}
