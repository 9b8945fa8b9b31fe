package storage

import "time"

// ChatEntry is one recorded user/assistant exchange.
type ChatEntry struct {
	ID                string    `json:"id"` // UUID
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	CreatedAt         time.Time `json:"timestamp"`
}
