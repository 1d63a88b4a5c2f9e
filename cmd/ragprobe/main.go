// Command ragprobe exercises the retrieval pipeline end to end against live
// services: it indexes sample records, runs a set of similarity queries,
// prints the scored hits and cleans the index up afterwards.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/silosight/internal/config"
	"github.com/agenthands/silosight/internal/llm"
	"github.com/agenthands/silosight/internal/rag"
	"github.com/agenthands/silosight/internal/silo"
	"github.com/agenthands/silosight/internal/vector"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}

	ctx := context.Background()

	var index vector.Index
	switch cfg.Index.Backend {
	case "neo4j":
		index, err = vector.NewNeo4jIndex(ctx, cfg.Index.Neo4jURI, cfg.Index.Neo4jUser, cfg.Index.Neo4jPassword, cfg.Index.Table, cfg.Index.Dimensions)
	default:
		index, err = vector.NewPostgresIndex(ctx, cfg.Index.PostgresDSN, cfg.Index.Table, cfg.Index.Dimensions)
	}
	if err != nil {
		log.Fatalf("Failed to connect vector index: %v", err)
	}
	defer index.Close(ctx)

	_, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	pipeline := rag.NewPipeline(embedder, index, rag.Options{
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
		IndexFanout:  cfg.Concurrency.IndexFanout,
		CallTimeout:  cfg.CallTimeout(),
	})

	log.Println("Initializing retrieval pipeline...")
	if err := pipeline.Initialize(ctx); err != nil {
		log.Fatalf("Initialization failed: %v", err)
	}

	records, err := silo.LoadSample(cfg.Server.SampleData)
	if err != nil {
		log.Fatalf("Failed to load sample data: %v", err)
	}

	log.Printf("Indexing %d sample records...", len(records))
	if err := pipeline.IndexRecords(ctx, records); err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}

	queries := []string{
		"What happened with silo volume levels?",
		"Tell me about sensor malfunctions",
		"Were there any unusual transfer operations?",
		"What were the temperature readings during silo operations?",
		"Which silos need maintenance attention?",
	}

	for _, query := range queries {
		log.Printf("Query: %q", query)
		results, err := pipeline.Query(ctx, query, 2)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		if len(results) == 0 {
			log.Println("  no results")
			continue
		}
		for i, r := range results {
			log.Printf("  %d. score=%.4f silo=%v date=%v", i+1, r.Score, r.Metadata["siloId"], r.Metadata["date"])
		}
	}

	log.Println("Cleaning up...")
	if err := pipeline.Reset(ctx); err != nil {
		log.Fatalf("Reset failed: %v", err)
	}
	log.Println("Done")
}
