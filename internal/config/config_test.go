package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.6, cfg.Retrieval.SimilarityThreshold, 1e-9)
	assert.InDelta(t, 0.65, cfg.Retrieval.ResultDedupeThreshold, 1e-9)
	assert.InDelta(t, 0.70, cfg.Retrieval.ConsolidationThreshold, 1e-9)
	assert.Equal(t, 6000, cfg.Retrieval.MaxContextChars)
	assert.Equal(t, 0, cfg.Retrieval.TermMatchCap)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motorag.yaml")
	data := `
embedder:
  type: tfidf
retrieval:
  top_k: 7
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.6, cfg.Retrieval.SimilarityThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Ingest.SentencesPerChunk)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motorag.yaml")
	data := `
embedder:
  type: banana
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadGeneratorDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motorag.yaml")
	data := `
generator:
  type: openai
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Generator.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Generator.APIKeyEnv)
	assert.InDelta(t, 0.2, cfg.Generator.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.Generator.MaxTokens)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "motorag.yaml")
	cfg := defaultConfig()
	cfg.Retrieval.TopK = 9
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Retrieval.TopK)
	assert.Equal(t, cfg.Embedder.Type, loaded.Embedder.Type)
}
