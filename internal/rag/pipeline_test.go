package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/silosight/internal/document"
	"github.com/agenthands/silosight/internal/silo"
)

func testRecord(siloID, notes string) silo.Record {
	return silo.Record{
		Date:                    "2024-03-15",
		SiloID:                  siloID,
		CurrentVolumePercentage: 85,
		DailyVolumeChange:       120,
		MaterialType:            silo.MaterialFineSand,
		TransferOperations: []silo.TransferOperation{
			{Type: silo.TransferInflow, Volume: 150, DurationHours: 2.25, Timestamp: "2024-03-15T08:30:00Z"},
		},
		SensorStatus: []silo.SensorStatus{
			{SensorID: "LVL-001", Status: silo.SensorOperational},
		},
		Notes: notes,
	}
}

func newTestPipeline(index *memoryIndex) *Pipeline {
	return NewPipeline(&wordEmbedder{dims: 64}, index, Options{})
}

func TestInitializeIsIdempotentAndNonDestructive(t *testing.T) {
	ctx := context.Background()
	index := newMemoryIndex()
	p := newTestPipeline(index)

	require.NoError(t, p.Initialize(ctx))
	require.NoError(t, p.IndexRecords(ctx, []silo.Record{testRecord("SILO-001", "")}))
	before := index.size()
	require.Greater(t, before, 0)

	// Re-initializing must not discard prior history.
	require.NoError(t, p.Initialize(ctx))
	assert.Equal(t, before, index.size())
}

func TestInitializeWithoutEmbedderFails(t *testing.T) {
	p := NewPipeline(nil, newMemoryIndex(), Options{})

	err := p.Initialize(context.Background())
	var initErr *InitializationError
	assert.ErrorAs(t, err, &initErr)
}

func TestIndexThenQueryReturnsMatchingRecord(t *testing.T) {
	ctx := context.Background()
	index := newMemoryIndex()
	p := newTestPipeline(index)

	rec := testRecord("SILO-001", "pressure alarm triggered during morning filling operation")
	other := testRecord("SILO-002", "routine quality inspection passed all checks")
	require.NoError(t, p.IndexRecords(ctx, []silo.Record{rec, other}))

	query := document.Format(rec).Content
	results, err := p.Query(ctx, query, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// The top hit is (a chunk of) the formatted record itself.
	assert.Contains(t, document.Format(rec).Content, results[0].Content)
	assert.Equal(t, "SILO-001", results[0].Metadata["siloId"])

	// The same document scores lower against an unrelated query.
	unrelated, err := p.Query(ctx, "completely different topic about weather forecasts", 1)
	require.NoError(t, err)
	require.Len(t, unrelated, 1)
	assert.Greater(t, results[0].Score, unrelated[0].Score)
}

func TestQueryResultsAreOrderedByScore(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(newMemoryIndex())

	records := []silo.Record{
		testRecord("SILO-001", "sensor calibration completed"),
		testRecord("SILO-002", "emergency emptying due to contamination"),
		testRecord("SILO-003", "normal filling operation"),
	}
	require.NoError(t, p.IndexRecords(ctx, records))

	results, err := p.Query(ctx, "sensor calibration", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestResetThenQueryReturnsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	index := newMemoryIndex()
	p := newTestPipeline(index)

	require.NoError(t, p.IndexRecords(ctx, []silo.Record{testRecord("SILO-001", "")}))
	require.NoError(t, p.Reset(ctx))

	results, err := p.Query(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUnreachableIndexSurfacesRetrievalError(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(&wordEmbedder{dims: 64}, failingIndex{}, Options{})

	err := p.IndexRecords(ctx, []silo.Record{testRecord("SILO-001", "")})
	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, "upsert", retrievalErr.Op)

	_, err = p.Query(ctx, "anything", 3)
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, "query", retrievalErr.Op)
}

func TestUnavailableEmbedderFailsInitialization(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(failingEmbedder{}, newMemoryIndex(), Options{})

	err := p.Initialize(ctx)
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)

	// The missing capability keeps the same error class through every entry point.
	err = p.IndexRecords(ctx, []silo.Record{testRecord("SILO-001", "")})
	require.ErrorAs(t, err, &initErr)

	_, err = p.Query(ctx, "anything", 3)
	assert.ErrorAs(t, err, &initErr)
}

func TestInitializeCanBeRetriedAfterEmbedderRecovers(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(&recoveringEmbedder{inner: wordEmbedder{dims: 64}}, newMemoryIndex(), Options{})

	err := p.Initialize(ctx)
	var initErr *InitializationError
	require.ErrorAs(t, err, &initErr)

	require.NoError(t, p.Initialize(ctx))
	require.NoError(t, p.IndexRecords(ctx, []silo.Record{testRecord("SILO-001", "")}))
}

func TestIndexRecordsUpsertsEveryChunk(t *testing.T) {
	ctx := context.Background()
	index := newMemoryIndex()
	// Force multiple chunks per record with a tiny window.
	p := NewPipeline(&wordEmbedder{dims: 64}, index, Options{ChunkSize: 80, ChunkOverlap: 20, IndexFanout: 3})

	require.NoError(t, p.IndexRecords(ctx, []silo.Record{testRecord("SILO-001", "")}))
	assert.Greater(t, index.size(), 1)
}
