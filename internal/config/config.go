package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type IndexConfig struct {
	// Backend selects the vector index implementation: "postgres" or "neo4j".
	Backend       string `toml:"backend"`
	PostgresDSN   string `toml:"postgres_dsn"`
	Neo4jURI      string `toml:"neo4j_uri"`
	Neo4jUser     string `toml:"neo4j_user"`
	Neo4jPassword string `toml:"neo4j_password"`
	Table         string `toml:"table"`
	Dimensions    int    `toml:"dimensions"`
}

type RetrievalConfig struct {
	TopK           int `toml:"top_k"`
	ChunkSize      int `toml:"chunk_size"`
	ChunkOverlap   int `toml:"chunk_overlap"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type ConcurrencyConfig struct {
	IndexFanout int `toml:"index_fanout"`
}

type ServerConfig struct {
	Port       string `toml:"port"`
	ReportsDir string `toml:"reports_dir"`
	SampleData string `toml:"sample_data"`
}

type AnalysisConfig struct {
	Intent string `toml:"intent"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Index       IndexConfig       `toml:"index"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Server      ServerConfig      `toml:"server"`
	Analysis    AnalysisConfig    `toml:"analysis"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a usable config when no file is present; env vars still apply.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("INDEX_BACKEND"); v != "" {
		c.Index.Backend = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Index.PostgresDSN = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Index.Neo4jURI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Index.Neo4jUser = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Index.Neo4jPassword = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.Index.Backend == "" {
		c.Index.Backend = "postgres"
	}
	if c.Index.Table == "" {
		c.Index.Table = "silo_chunks"
	}
	if c.Index.Dimensions <= 0 {
		c.Index.Dimensions = 384
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 4
	}
	if c.Retrieval.ChunkSize <= 0 {
		c.Retrieval.ChunkSize = 1000
	}
	if c.Retrieval.ChunkOverlap <= 0 {
		c.Retrieval.ChunkOverlap = 200
	}
	if c.Retrieval.TimeoutSeconds <= 0 {
		c.Retrieval.TimeoutSeconds = 30
	}
	if c.Concurrency.IndexFanout <= 0 {
		c.Concurrency.IndexFanout = 4
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReportsDir == "" {
		c.Server.ReportsDir = "public/reports"
	}
	if c.Server.SampleData == "" {
		c.Server.SampleData = "data/sample-daily-data.json"
	}
	if c.Analysis.Intent == "" {
		c.Analysis.Intent = "Analyze current silo operations and identify any patterns or anomalies"
	}
}

// CallTimeout is the per-external-call deadline for embedding, index and LLM
// requests.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Retrieval.TimeoutSeconds) * time.Second
}
