// Package http assembles the API router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ragchat/internal/handlers"
	"ragchat/internal/processor"
	"ragchat/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Processor   *processor.Processor
	StorePath   string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	uploadHandler := handlers.NewUploadHandler(deps.Processor)
	directoryHandler := handlers.NewDirectoryHandler(deps.Processor)
	saveHandler := handlers.NewSaveStoreHandler(deps.Processor, deps.StorePath)
	loadHandler := handlers.NewLoadStoreHandler(deps.Processor, deps.StorePath)
	statsHandler := handlers.NewStatsHandler(deps.Processor)
	historyHandler := handlers.NewHistoryHandler(deps.ChatService)
	clearHandler := handlers.NewClearChatHandler(deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.Processor)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/upload-files", uploadHandler)
		r.Method(http.MethodPost, "/process-directory", directoryHandler)
		r.Method(http.MethodDelete, "/clear-chat", clearHandler)
	})

	r.Method(http.MethodPost, "/save-vector-store", saveHandler)
	r.Method(http.MethodPost, "/load-vector-store", loadHandler)
	r.Method(http.MethodGet, "/stats", statsHandler)
	r.Method(http.MethodGet, "/chat-history", historyHandler)
	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}
