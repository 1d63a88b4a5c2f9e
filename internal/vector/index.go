package vector

import "context"

// Entry is one chunk as stored in the index.
type Entry struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Match is one similarity-query hit. Score is cosine similarity; higher means
// more similar. The metric must stay consistent between upsert and query, so
// both backends are pinned to cosine.
type Match struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// Index is the storage contract for embedded chunks. Implementations are
// remote services; every method takes a context so callers can bound the call.
type Index interface {
	// EnsureReady creates the backing schema/index if it does not exist.
	// It is idempotent and never destroys existing entries.
	EnsureReady(ctx context.Context) error

	// Upsert inserts or replaces one entry keyed by its ID.
	Upsert(ctx context.Context, entry Entry) error

	// Query returns the topK entries nearest to the given vector, best first.
	// An empty index yields an empty result, not an error.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// DeleteAll removes every entry. Used for test isolation and explicit resets.
	DeleteAll(ctx context.Context) error

	Close(ctx context.Context) error
}

// SanitizeMetadata keeps only the value shapes the index contract allows:
// strings, booleans, integers, floats and string slices. Anything else is
// dropped. Nested structures do not survive into the index.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	sanitized := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case string:
			sanitized[k] = val
		case bool:
			sanitized[k] = val
		case int:
			sanitized[k] = val
		case int32:
			sanitized[k] = int(val)
		case int64:
			sanitized[k] = int(val)
		case float32:
			sanitized[k] = float64(val)
		case float64:
			sanitized[k] = val
		case []string:
			sanitized[k] = val
		}
	}
	return sanitized
}
