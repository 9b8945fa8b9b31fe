package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"ragchat/internal/processor"
	"ragchat/internal/service"
	"ragchat/internal/service/mocks"
)

func TestChatHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*mocks.MockChatService)
		wantStatus int
		wantInBody string
	}{
		{
			name: "successful request",
			body: `{"message": "what is chunk overlap?"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), service.ChatRequest{Message: "what is chunk overlap?"}).
					Return(service.ChatResponse{
						Response:  "Overlap carries context across chunk boundaries.",
						Citations: []processor.CitationResult{{Citation: "guide.txt, Chunk 2"}},
						Timestamp: "2026-08-30T10:00:00Z",
					}, nil)
			},
			wantStatus: http.StatusOK,
			wantInBody: "guide.txt, Chunk 2",
		},
		{
			name:       "invalid body",
			body:       "{not json",
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantInBody: "Invalid request body",
		},
		{
			name: "validation error",
			body: `{"message": ""}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, &service.ValidationError{Field: "message", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
			wantInBody: "Validation error",
		},
		{
			name: "no documents",
			body: `{"message": "hi"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, service.ErrNoDocuments)
			},
			wantStatus: http.StatusBadRequest,
			wantInBody: "No vector store loaded",
		},
		{
			name: "external service failure",
			body: `{"message": "hi"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, service.WrapError(service.ErrExternalService, "embedding call failed"))
			},
			wantStatus: http.StatusBadGateway,
			wantInBody: "External service error",
		},
		{
			name: "unexpected failure",
			body: `{"message": "hi"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantInBody: "Failed to process chat request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			NewChatHandler(mockService).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantInBody) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestChatHandler_ResponseShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockChatService(ctrl)
	mockService.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).Return(service.ChatResponse{
		Response:  "answer",
		Citations: []processor.CitationResult{},
		Timestamp: "2026-08-30T10:00:00Z",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message": "q"}`))
	w := httptest.NewRecorder()
	NewChatHandler(mockService).ServeHTTP(w, req)

	var payload map[string]any
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	for _, key := range []string{"response", "citations", "themes", "timestamp"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("response missing %q key", key)
		}
	}
}
