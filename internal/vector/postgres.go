package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// PostgresIndex stores chunk embeddings in PostgreSQL with the pgvector
// extension. Similarity is cosine: score = 1 - (embedding <=> query).
type PostgresIndex struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
}

// NewPostgresIndex connects to the database at dsn. The table is not created
// until EnsureReady runs.
func NewPostgresIndex(ctx context.Context, dsn, table string, dimensions int) (*PostgresIndex, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	log.Printf("Connected to Postgres vector index (table %s)", table)
	return &PostgresIndex{pool: pool, table: table, dimensions: dimensions}, nil
}

func (p *PostgresIndex) EnsureReady(ctx context.Context) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, p.table, p.dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s
			USING hnsw (embedding vector_cosine_ops)`, p.table, p.table),
	}

	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare vector table: %w", err)
		}
	}
	return nil
}

func (p *PostgresIndex) Upsert(ctx context.Context, entry Entry) error {
	metadataJSON, err := json.Marshal(SanitizeMetadata(entry.Metadata))
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for entry %q: %w", entry.ID, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, content, embedding, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding,
		    metadata = EXCLUDED.metadata`, p.table)

	_, err = p.pool.Exec(ctx, query, entry.ID, entry.Content, pgvector.NewVector(entry.Vector), metadataJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert entry %q: %w", entry.ID, err)
	}
	return nil
}

func (p *PostgresIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	query := fmt.Sprintf(`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, p.table)

	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var metadataJSON []byte
		if err := rows.Scan(&m.ID, &m.Content, &metadataJSON, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
			log.Printf("Failed to parse metadata for entry %s: %v", m.ID, err)
			m.Metadata = map[string]any{}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	return matches, nil
}

func (p *PostgresIndex) DeleteAll(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", p.table)); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

func (p *PostgresIndex) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}
