package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_history_store.go -package=mocks ragchat/internal/storage HistoryStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryStore defines the interface for chat history operations.
type HistoryStore interface {
	// Insert records one user/assistant exchange.
	Insert(ctx context.Context, userMessage, assistantResponse string) (*ChatEntry, error)
	// ListRecent returns up to limit entries, oldest first.
	ListRecent(ctx context.Context, limit int) ([]ChatEntry, error)
	// Clear deletes all recorded history.
	Clear(ctx context.Context) error
}

// HistoryRepo provides methods for chat history operations.
// It implements the HistoryStore interface.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Insert records one user/assistant exchange with a generated UUID.
func (r *HistoryRepo) Insert(ctx context.Context, userMessage, assistantResponse string) (*ChatEntry, error) {
	entry := &ChatEntry{
		ID:                uuid.New().String(),
		UserMessage:       userMessage,
		AssistantResponse: assistantResponse,
		CreatedAt:         time.Now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_history (id, user_message, assistant_response, created_at)
		 VALUES (?, ?, ?, ?)`,
		entry.ID, entry.UserMessage, entry.AssistantResponse, entry.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat entry: %w", err)
	}

	return entry, nil
}

// ListRecent returns up to limit entries, oldest first.
func (r *HistoryRepo) ListRecent(ctx context.Context, limit int) ([]ChatEntry, error) {
	// rowid reflects insertion order; created_at only has second resolution.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_message, assistant_response, created_at FROM (
			SELECT rowid AS seq, id, user_message, assistant_response, created_at
			FROM chat_history ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []ChatEntry
	for rows.Next() {
		var entry ChatEntry
		var createdAtStr string
		if err := rows.Scan(&entry.ID, &entry.UserMessage, &entry.AssistantResponse, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan chat entry: %w", err)
		}

		entry.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
		if err != nil {
			// SQLite might use a different format
			entry.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}

	return entries, nil
}

// Clear deletes all recorded history.
func (r *HistoryRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chat_history"); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}
