package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/agenthands/silosight/internal/insight"
	"github.com/agenthands/silosight/internal/llm"
	"github.com/agenthands/silosight/internal/rag"
	"github.com/agenthands/silosight/internal/silo"
)

// DefaultTopK is how many historical chunks feed the analysis prompt.
const DefaultTopK = 4

// Analyzer sequences one analysis request: validate -> index -> retrieve ->
// prompt -> generate -> parse. It is built once at startup and injected into
// request handlers; there is no package-level state.
type Analyzer struct {
	pipeline    *rag.Pipeline
	llm         llm.Client
	intent      string
	topK        int
	callTimeout time.Duration
}

func NewAnalyzer(pipeline *rag.Pipeline, client llm.Client, intent string, topK int, callTimeout time.Duration) *Analyzer {
	if intent == "" {
		intent = "Analyze current silo operations and identify any patterns or anomalies"
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if callTimeout <= 0 {
		callTimeout = 60 * time.Second
	}
	return &Analyzer{
		pipeline:    pipeline,
		llm:         client,
		intent:      intent,
		topK:        topK,
		callTimeout: callTimeout,
	}
}

// Analyze runs the full pipeline for one batch of records. Validation errors
// reject the batch before any indexing happens; retrieval, generation and
// parse failures abort the request and are never retried.
func (a *Analyzer) Analyze(ctx context.Context, records []silo.Record) (insight.Insight, error) {
	if err := silo.ValidateAll(records); err != nil {
		return insight.Insight{}, err
	}

	if err := a.pipeline.Initialize(ctx); err != nil {
		return insight.Insight{}, err
	}

	if err := a.pipeline.IndexRecords(ctx, records); err != nil {
		return insight.Insight{}, err
	}

	retrieved, err := a.pipeline.Query(ctx, a.intent, a.topK)
	if err != nil {
		return insight.Insight{}, err
	}
	log.Printf("Retrieved %d historical context chunks", len(retrieved))

	currentData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return insight.Insight{}, fmt.Errorf("failed to serialize records: %w", err)
	}

	prompt := insight.BuildPrompt(assembleContext(retrieved), string(currentData))

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()
	response, err := a.llm.Generate(callCtx, prompt)
	if err != nil {
		return insight.Insight{}, err
	}

	result, err := insight.Parse(response)
	if err != nil {
		return insight.Insight{}, err
	}

	insight.SortAnomalies(result.Anomalies)
	return result, nil
}

// assembleContext numbers the retrieved chunks from 1 so the model can refer
// back to them.
func assembleContext(retrieved []rag.Retrieved) string {
	if len(retrieved) == 0 {
		return "No relevant historical context found."
	}

	var b strings.Builder
	for i, r := range retrieved {
		fmt.Fprintf(&b, "Context %d:\n%s\n\n", i+1, r.Content)
	}
	return strings.TrimSpace(b.String())
}
