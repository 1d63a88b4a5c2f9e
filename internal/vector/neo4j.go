package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const chunkLabel = "SiloChunk"

// Neo4jIndex stores chunk embeddings as nodes in Neo4j using its native
// vector index (cosine similarity). Metadata is kept as a JSON string
// property because Neo4j node properties cannot hold nested maps.
type Neo4jIndex struct {
	driver     neo4j.DriverWithContext
	indexName  string
	dimensions int
}

func NewNeo4jIndex(ctx context.Context, uri, username, password, indexName string, dimensions int) (*Neo4jIndex, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	log.Printf("Connected to Neo4j vector index (%s)", indexName)
	return &Neo4jIndex{driver: driver, indexName: indexName, dimensions: dimensions}, nil
}

func (n *Neo4jIndex) run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, n.driver, cypher, params, neo4j.EagerResultTransformer)
}

func (n *Neo4jIndex) EnsureReady(ctx context.Context) error {
	// Index options do not accept query parameters.
	cypher := fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (c:%s) ON (c.embedding)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: %d,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}`, n.indexName, chunkLabel, n.dimensions)

	if _, err := n.run(ctx, cypher, nil); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}
	return nil
}

func (n *Neo4jIndex) Upsert(ctx context.Context, entry Entry) error {
	metadataJSON, err := json.Marshal(SanitizeMetadata(entry.Metadata))
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for entry %q: %w", entry.ID, err)
	}

	cypher := fmt.Sprintf(`MERGE (c:%s {id: $id})
		SET c.content = $content, c.metadata = $metadata
		WITH c
		CALL db.create.setNodeVectorProperty(c, 'embedding', $embedding)`, chunkLabel)

	params := map[string]any{
		"id":        entry.ID,
		"content":   entry.Content,
		"metadata":  string(metadataJSON),
		"embedding": toFloat64(entry.Vector),
	}

	if _, err := n.run(ctx, cypher, params); err != nil {
		return fmt.Errorf("failed to upsert entry %q: %w", entry.ID, err)
	}
	return nil
}

func (n *Neo4jIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	cypher := `CALL db.index.vector.queryNodes($index, $k, $embedding)
		YIELD node, score
		RETURN node.id AS id, node.content AS content, node.metadata AS metadata, score`

	params := map[string]any{
		"index":     n.indexName,
		"k":         topK,
		"embedding": toFloat64(vec),
	}

	result, err := n.run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	var matches []Match
	for _, record := range result.Records {
		m := Match{Metadata: map[string]any{}}

		if v, ok := record.Get("id"); ok {
			m.ID, _ = v.(string)
		}
		if v, ok := record.Get("content"); ok {
			m.Content, _ = v.(string)
		}
		if v, ok := record.Get("score"); ok {
			m.Score, _ = v.(float64)
		}
		if v, ok := record.Get("metadata"); ok {
			if s, ok := v.(string); ok && s != "" {
				if err := json.Unmarshal([]byte(s), &m.Metadata); err != nil {
					log.Printf("Failed to parse metadata for entry %s: %v", m.ID, err)
				}
			}
		}

		matches = append(matches, m)
	}

	return matches, nil
}

func (n *Neo4jIndex) DeleteAll(ctx context.Context) error {
	cypher := fmt.Sprintf("MATCH (c:%s) DETACH DELETE c", chunkLabel)
	if _, err := n.run(ctx, cypher, nil); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

func (n *Neo4jIndex) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}

func toFloat64(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
