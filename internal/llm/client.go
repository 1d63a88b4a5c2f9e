package llm

import (
	"context"
	"fmt"
)

// Client generates a completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a fixed-length vector. Upsert-side and query-side
// embeddings must come from the same embedder so the index metric stays
// meaningful.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProviderError wraps a failure from a hosted model provider.
type ProviderError struct {
	Provider string
	Op       string // "generate" or "embed"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
