package handlers

import (
	"net/http"
	"time"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	provider StatusProvider
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(provider StatusProvider) *HealthHandler {
	return &HealthHandler{provider: provider}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	VectorStoreLoaded bool   `json:"vector_store_loaded"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:            "healthy",
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		VectorStoreLoaded: h.provider.Ready(),
	})
}
