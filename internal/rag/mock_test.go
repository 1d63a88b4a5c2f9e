package rag

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/agenthands/silosight/internal/vector"
)

// wordEmbedder is a deterministic bag-of-words embedder: similar texts get
// similar vectors, which is enough to exercise ranking without a hosted model.
type wordEmbedder struct {
	dims int
}

func (e *wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := e.dims
	if dims == 0 {
		dims = 32
	}

	vec := make([]float32, dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%uint32(dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedding service unavailable")
}

// recoveringEmbedder fails its first call and works afterwards, for exercising
// initialization retries.
type recoveringEmbedder struct {
	mu    sync.Mutex
	calls int
	inner wordEmbedder
}

func (e *recoveringEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	calls := e.calls
	e.mu.Unlock()
	if calls == 1 {
		return nil, fmt.Errorf("embedding service temporarily unavailable")
	}
	return e.inner.Embed(ctx, text)
}

// memoryIndex is an in-memory vector.Index using cosine similarity.
type memoryIndex struct {
	mu      sync.Mutex
	entries map[string]vector.Entry
	ready   bool
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{entries: map[string]vector.Entry{}}
}

func (m *memoryIndex) EnsureReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = true
	return nil
}

func (m *memoryIndex) Upsert(ctx context.Context, entry vector.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.Metadata = vector.SanitizeMetadata(entry.Metadata)
	m.entries[entry.ID] = entry
	return nil
}

func (m *memoryIndex) Query(ctx context.Context, vec []float32, topK int) ([]vector.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []vector.Match
	for _, e := range m.entries {
		matches = append(matches, vector.Match{
			ID:       e.ID,
			Content:  e.Content,
			Score:    cosine(vec, e.Vector),
			Metadata: e.Metadata,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *memoryIndex) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]vector.Entry{}
	return nil
}

func (m *memoryIndex) Close(ctx context.Context) error { return nil }

func (m *memoryIndex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type failingIndex struct{}

func (failingIndex) EnsureReady(ctx context.Context) error { return nil }

func (failingIndex) Upsert(ctx context.Context, entry vector.Entry) error {
	return fmt.Errorf("index unreachable")
}

func (failingIndex) Query(ctx context.Context, vec []float32, topK int) ([]vector.Match, error) {
	return nil, fmt.Errorf("index unreachable")
}

func (failingIndex) DeleteAll(ctx context.Context) error { return fmt.Errorf("index unreachable") }

func (failingIndex) Close(ctx context.Context) error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
