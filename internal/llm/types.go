package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks ragchat/internal/llm Embedder,TextGenerator

import "context"

// Embedder converts texts into numeric vector representations.
// Implementations must be deterministic for identical input and model version.
type Embedder interface {
	// EmbedTexts generates one embedding per input text.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TextGenerator is a text-generation capability used for OCR, theme analysis
// and answer generation. It may be absent (nil), in which case every dependent
// feature must degrade gracefully.
type TextGenerator interface {
	// Complete sends a single-turn prompt and returns the model's reply.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteVision sends a prompt together with an image and returns the
	// model's reply. mimeType identifies the image format (e.g. "image/png").
	CompleteVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
