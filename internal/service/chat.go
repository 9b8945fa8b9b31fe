package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService ragchat/internal/service ChatService

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ragchat/internal/contextutil"
	"ragchat/internal/llm"
	"ragchat/internal/processor"
	"ragchat/internal/storage"
	"ragchat/internal/themes"
)

const noResultsMessage = "I couldn't find any relevant information in the documents for your query."

const answerPromptTemplate = `Based on the following document excerpts, provide a comprehensive answer to the user's query: %q

Document excerpts:
%s

Please provide:
1. A direct answer to the user's question
2. Key points from the documents
3. Any relevant details or context
4. Connections between different sources if applicable

Make sure to reference the information from the documents and provide a helpful, accurate response.`

// Retriever is what the chat flow needs from the document processor.
// This interface is defined from the service layer's perspective (consumer-first).
type Retriever interface {
	SearchWithCitations(ctx context.Context, query string, k int) ([]processor.CitationResult, error)
	Ready() bool
	Reset()
}

// ThemeAnalyzer aggregates retrieved excerpts into a theme report.
type ThemeAnalyzer interface {
	Analyze(ctx context.Context, query string, results []processor.CitationResult) themes.Report
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the answer with its supporting citations and themes.
type ChatResponse struct {
	Response  string                     `json:"response"`
	Citations []processor.CitationResult `json:"citations"`
	Themes    themes.Report              `json:"themes"`
	Timestamp string                     `json:"timestamp"`
}

// ChatService provides citation-backed chat over the processed documents.
type ChatService interface {
	// ProcessChat answers a query from the active corpus.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// History returns up to limit recorded exchanges, oldest first.
	History(ctx context.Context, limit int) ([]storage.ChatEntry, error)
	// ClearSession deletes the chat history and discards the active corpus.
	ClearSession(ctx context.Context) error
}

// chatService implements ChatService.
type chatService struct {
	retriever Retriever
	analyzer  ThemeAnalyzer
	generator llm.TextGenerator // nil falls back to a deterministic digest
	history   storage.HistoryStore
	searchK   int
}

// NewChatService creates a new ChatService.
func NewChatService(retriever Retriever, analyzer ThemeAnalyzer, generator llm.TextGenerator, history storage.HistoryStore, searchK int) ChatService {
	return &chatService{
		retriever: retriever,
		analyzer:  analyzer,
		generator: generator,
		history:   history,
		searchK:   searchK,
	}
}

// ProcessChat answers a query from the active corpus.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return ChatResponse{}, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}
	if !s.retriever.Ready() {
		return ChatResponse{}, ErrNoDocuments
	}

	results, err := s.retriever.SearchWithCitations(ctx, req.Message, s.searchK)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		return ChatResponse{}, WrapError(err, "failed to search documents")
	}

	resp := ChatResponse{
		Citations: results,
		Themes:    themes.Report{Themes: []themes.Theme{}},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if len(results) == 0 {
		resp.Response = noResultsMessage
		resp.Citations = []processor.CitationResult{}
	} else {
		resp.Themes = s.analyzer.Analyze(ctx, req.Message, results)
		resp.Response = s.generateAnswer(ctx, req.Message, results)
	}

	if _, err := s.history.Insert(ctx, req.Message, resp.Response); err != nil {
		// History is best effort; the answer still stands.
		logger.WarnContext(ctx, "failed to record chat history", "error", err)
	}

	logger.InfoContext(ctx, "chat request processed", "results", len(results))
	return resp, nil
}

// generateAnswer produces the response text. Without a text-generation
// capability it digests the top results; a generation failure degrades to a
// pointer at the citations.
func (s *chatService) generateAnswer(ctx context.Context, query string, results []processor.CitationResult) string {
	if s.generator == nil {
		return digestAnswer(query, results)
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Document %d (%s):\n%s", i+1, r.Citation, r.Content)
	}
	prompt := fmt.Sprintf(answerPromptTemplate, query, strings.Join(blocks, "\n\n"))

	answer, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "answer generation failed", "error", err)
		return fmt.Sprintf("Based on your query '%s', I found relevant information in %d document sections. Please see the citations below for detailed information.", query, len(results))
	}
	return answer
}

func digestAnswer(query string, results []processor.CitationResult) string {
	parts := []string{
		fmt.Sprintf("Based on your query '%s', I found %d relevant document sections.", query, len(results)),
		"\n**Key Information:**",
	}
	for i, r := range results {
		if i == 3 {
			break
		}
		preview := r.Content
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		parts = append(parts, fmt.Sprintf("\n%d. From %s: %s", i+1, r.Citation, preview))
	}
	return strings.Join(parts, "\n")
}

// History returns up to limit recorded exchanges, oldest first.
func (s *chatService) History(ctx context.Context, limit int) ([]storage.ChatEntry, error) {
	entries, err := s.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, WrapError(err, "failed to list chat history")
	}
	return entries, nil
}

// ClearSession deletes the chat history and discards the active corpus.
func (s *chatService) ClearSession(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return WrapError(err, "failed to clear chat history")
	}
	s.retriever.Reset()
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "session cleared")
	return nil
}
