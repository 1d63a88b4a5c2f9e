package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[llm]
provider = "openai"
model = "gpt-4o-mini"

[index]
backend = "neo4j"
neo4j_uri = "bolt://db:7687"
dimensions = 1536

[retrieval]
top_k = 8
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "neo4j", cfg.Index.Backend)
	assert.Equal(t, 1536, cfg.Index.Dimensions)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Index.Backend)
	assert.Equal(t, "silo_chunks", cfg.Index.Table)
	assert.Equal(t, 384, cfg.Index.Dimensions)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, 1000, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 200, cfg.Retrieval.ChunkOverlap)
	assert.Equal(t, 4, cfg.Concurrency.IndexFanout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "public/reports", cfg.Server.ReportsDir)
	assert.NotEmpty(t, cfg.Analysis.Intent)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout())
}

func TestEnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[llm]
provider = "gemini"

[server]
port = "8080"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://other/db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://other/db", cfg.Index.PostgresDSN)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("does/not/exist.toml")
	assert.Error(t, err)
}
