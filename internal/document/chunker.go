package document

import (
	"fmt"

	"github.com/google/uuid"
)

// Default chunking parameters, chosen to keep chunks inside typical embedding
// model input limits.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk is one overlapping window of a document's content. Each chunk carries
// its parent's metadata plus its own position, and an ID unique across the
// process lifetime so concurrent upserts can never silently overwrite each
// other.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// Split cuts the document content into windows of at most size runes with the
// given overlap between consecutive windows. A non-empty document shorter than
// size yields exactly one chunk; empty content yields none.
func Split(doc Document, size, overlap int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}

	runes := []rune(doc.Content)
	docID := uuid.New().String()

	var chunks []Chunk
	step := size - overlap
	for start, i := 0, 0; start < len(runes); start, i = start+step, i+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		metadata := make(map[string]any, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["chunkIndex"] = i

		chunks = append(chunks, Chunk{
			ID:       fmt.Sprintf("%s-%d", docID, i),
			Content:  string(runes[start:end]),
			Metadata: metadata,
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}
