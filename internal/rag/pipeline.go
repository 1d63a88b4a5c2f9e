package rag

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/silosight/internal/document"
	"github.com/agenthands/silosight/internal/llm"
	"github.com/agenthands/silosight/internal/silo"
	"github.com/agenthands/silosight/internal/vector"
)

// Options tune chunking, fan-out and per-call deadlines.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	IndexFanout  int
	CallTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = document.DefaultChunkSize
	}
	if o.ChunkOverlap <= 0 {
		o.ChunkOverlap = document.DefaultChunkOverlap
	}
	if o.IndexFanout <= 0 {
		o.IndexFanout = 4
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 30 * time.Second
	}
	return o
}

// Retrieved is one similarity hit returned to callers, best first.
type Retrieved struct {
	Content  string
	Score    float64
	Metadata map[string]any
}

// Pipeline keeps the vector index fresh with formatted silo records and
// answers "what historical context is relevant" queries. It is safe for
// concurrent use; concurrent IndexRecords calls may interleave upserts, which
// is fine because chunk IDs never alias across requests.
type Pipeline struct {
	embedder llm.Embedder
	index    vector.Index
	opts     Options

	mu          sync.Mutex
	initialized bool
}

func NewPipeline(embedder llm.Embedder, index vector.Index, opts Options) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		index:    index,
		opts:     opts.withDefaults(),
	}
}

// Initialize verifies the embedding capability and ensures the index schema
// exists. It is idempotent and never destroys existing entries; use Reset for
// that. A failed attempt can be retried.
func (p *Pipeline) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}

	if p.embedder == nil {
		return &InitializationError{Err: fmt.Errorf("no embedding capability configured")}
	}

	// A single readiness embedding catches an unreachable or misconfigured
	// service here rather than mid-indexing.
	embedCtx, cancelEmbed := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancelEmbed()
	if _, err := p.embedder.Embed(embedCtx, "silo operations readiness check"); err != nil {
		return &InitializationError{Err: fmt.Errorf("embedding capability unavailable: %w", err)}
	}

	readyCtx, cancelReady := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancelReady()
	if err := p.index.EnsureReady(readyCtx); err != nil {
		return &InitializationError{Err: err}
	}

	p.initialized = true
	return nil
}

// IndexRecords formats each record, splits it into chunks, embeds every chunk
// and upserts it. Upserts for different chunks run concurrently with a bounded
// fan-out; the call returns only after every upsert is acknowledged, so a
// following Query sees all of them.
func (p *Pipeline) IndexRecords(ctx context.Context, records []silo.Record) error {
	if err := p.Initialize(ctx); err != nil {
		return err
	}

	var chunks []document.Chunk
	for _, rec := range records {
		doc := document.Format(rec)
		chunks = append(chunks, document.Split(doc, p.opts.ChunkSize, p.opts.ChunkOverlap)...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.IndexFanout)

	for _, chunk := range chunks {
		g.Go(func() error {
			vec, err := p.embed(gctx, chunk.Content)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", chunk.ID, err)
			}

			callCtx, cancel := context.WithTimeout(gctx, p.opts.CallTimeout)
			defer cancel()
			if err := p.index.Upsert(callCtx, vector.Entry{
				ID:       chunk.ID,
				Content:  chunk.Content,
				Vector:   vec,
				Metadata: chunk.Metadata,
			}); err != nil {
				return fmt.Errorf("chunk %s: %w", chunk.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &RetrievalError{Op: "upsert", Err: err}
	}

	log.Printf("Indexed %d records as %d chunks", len(records), len(chunks))
	return nil
}

// Query embeds the text and returns the k nearest chunks, best first. An
// empty index yields (nil, nil); failures always surface as *RetrievalError.
func (p *Pipeline) Query(ctx context.Context, text string, k int) ([]Retrieved, error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}

	vec, err := p.embed(ctx, text)
	if err != nil {
		return nil, &RetrievalError{Op: "query embedding", Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancel()
	matches, err := p.index.Query(callCtx, vec, k)
	if err != nil {
		return nil, &RetrievalError{Op: "query", Err: err}
	}

	results := make([]Retrieved, 0, len(matches))
	for _, m := range matches {
		results = append(results, Retrieved{
			Content:  m.Content,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return results, nil
}

// Reset deletes every entry in the index.
func (p *Pipeline) Reset(ctx context.Context) error {
	if err := p.Initialize(ctx); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancel()
	if err := p.index.DeleteAll(callCtx); err != nil {
		return &RetrievalError{Op: "reset", Err: err}
	}
	return nil
}

func (p *Pipeline) embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancel()

	vec, err := p.embedder.Embed(callCtx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return vec, nil
}
