package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultOllamaURL, s.Ollama.URL)
	assert.Equal(t, DefaultOllamaModel, s.Ollama.Model)
	assert.Equal(t, DefaultCacheCapacity, s.Cache.Capacity)
	assert.Equal(t, DefaultChunkingStrategy, s.Chunking.Strategy)
	assert.Equal(t, DefaultIndexWorkers, s.Indexing.Workers)
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[ollama]
model = "all-minilm"
dimensions = 384

[chunking]
strategy = "technical"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFileName), []byte(content), 0600))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "all-minilm", s.Ollama.Model)
	assert.Equal(t, 384, s.Ollama.Dimensions)
	assert.Equal(t, "technical", s.Chunking.Strategy)

	// Unnamed fields keep defaults.
	assert.Equal(t, DefaultOllamaURL, s.Ollama.URL)
	assert.Equal(t, DefaultCacheCapacity, s.Cache.Capacity)
	assert.Equal(t, DefaultIndexWorkers, s.Indexing.Workers)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFileName), []byte("not [valid toml"), 0600))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestSettings_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(dir)
	require.NoError(t, err)
	s.Ollama.Model = "all-minilm"
	s.Cache.Capacity = 64
	require.NoError(t, s.Save())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "all-minilm", reloaded.Ollama.Model)
	assert.Equal(t, 64, reloaded.Cache.Capacity)
}

func TestSettings_ChunkingConfig(t *testing.T) {
	s := DefaultSettings()
	s.Chunking.Strategy = "narrative"
	s.Chunking.MaxSentences = 20

	cfg, err := s.ChunkingConfig()
	require.NoError(t, err)

	base, err := domain.ChunkingPreset("narrative")
	require.NoError(t, err)
	assert.Equal(t, base.SimilarityThreshold, cfg.SimilarityThreshold)
	assert.Equal(t, 20, cfg.MaxChunkSentences)
}

func TestSettings_ChunkingConfigUnknownStrategy(t *testing.T) {
	s := DefaultSettings()
	s.Chunking.Strategy = "bogus"

	_, err := s.ChunkingConfig()
	require.Error(t, err)
}

func TestSettings_ChunkingConfigInvalidOverride(t *testing.T) {
	s := DefaultSettings()
	s.Chunking.MinSentences = 10
	s.Chunking.MaxSentences = 5

	_, err := s.ChunkingConfig()
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}
