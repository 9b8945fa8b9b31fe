package handlers

import (
	"context"
	"errors"
	"net/http"

	"ragchat/internal/contextutil"
	"ragchat/internal/processor"
	"ragchat/internal/service"
	"ragchat/internal/storage"
)

const historyLimit = 50

// StatusProvider is what the stats endpoint needs from the processor.
type StatusProvider interface {
	Stats(ctx context.Context) (processor.Stats, error)
	Ready() bool
}

// StatsHandler reports corpus statistics and whether a corpus is active.
type StatsHandler struct {
	provider StatusProvider
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(provider StatusProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// StatsResponse is the payload for the stats endpoint.
type StatsResponse struct {
	Stats             any  `json:"stats"`
	VectorStoreLoaded bool `json:"vector_store_loaded"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var stats any = struct{}{}
	s, err := h.provider.Stats(ctx)
	switch {
	case err == nil:
		stats = s
	case errors.Is(err, processor.ErrNoActiveIndex):
		// No corpus yet; report empty stats.
	default:
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to compute stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:             stats,
		VectorStoreLoaded: h.provider.Ready(),
	})
}

// HistoryHandler returns the recorded chat history.
type HistoryHandler struct {
	chatService service.ChatService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(chatService service.ChatService) *HistoryHandler {
	return &HistoryHandler{chatService: chatService}
}

// HistoryResponse is the payload for the chat history endpoint.
type HistoryResponse struct {
	History []storage.ChatEntry `json:"history"`
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.chatService.History(ctx, historyLimit)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list chat history", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}
	if entries == nil {
		entries = []storage.ChatEntry{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{History: entries})
}

// ClearChatHandler clears the chat history and discards the active corpus.
type ClearChatHandler struct {
	chatService service.ChatService
}

// NewClearChatHandler creates a new ClearChatHandler.
func NewClearChatHandler(chatService service.ChatService) *ClearChatHandler {
	return &ClearChatHandler{chatService: chatService}
}

func (h *ClearChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.chatService.ClearSession(ctx); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to clear session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear session")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "Chat history and session data cleared",
	})
}
