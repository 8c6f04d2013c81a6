// Package file provides TOML-backed configuration loading.
//
// Settings live in a single config.toml under the semdex config directory
// (default ~/.semdex). Absent fields fall back to defaults, so a partial
// file overrides only what it names.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// Default configuration values.
const (
	DefaultConfigFileName    = "config.toml"
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultOllamaModel       = "nomic-embed-text"
	DefaultOllamaDimensions  = 768
	DefaultOllamaTimeout     = 30 * time.Second
	DefaultCacheCapacity     = 512
	DefaultCacheTTLMinutes   = 30
	DefaultCacheTTIMinutes   = 10
	DefaultIndexWorkers      = 4
	DefaultProgressInterval  = 25
	DefaultChunkingStrategy  = "default"
	DefaultFileExtensionsDoc = ".md,.markdown,.txt,.rst"
)

// OllamaSettings configures the embedding provider.
type OllamaSettings struct {
	URL        string `toml:"url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	TimeoutSec int    `toml:"timeout_seconds"`
}

// CacheSettings configures the query embedding cache.
type CacheSettings struct {
	Capacity   int `toml:"capacity"`
	TTLMinutes int `toml:"ttl_minutes"`
	TTIMinutes int `toml:"tti_minutes"`
}

// ChunkingSettings selects a chunking preset and optional overrides.
// Zero-valued overrides leave the preset untouched.
type ChunkingSettings struct {
	Strategy            string  `toml:"strategy"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	Percentile          float64 `toml:"percentile"`
	MinSentences        int     `toml:"min_sentences"`
	MaxSentences        int     `toml:"max_sentences"`
}

// IndexingSettings configures the indexing pipeline.
type IndexingSettings struct {
	Workers          int      `toml:"workers"`
	ProgressInterval int      `toml:"progress_interval"`
	Extensions       []string `toml:"extensions"`
}

// Settings is the full semdex configuration.
type Settings struct {
	Ollama   OllamaSettings   `toml:"ollama"`
	Cache    CacheSettings    `toml:"cache"`
	Chunking ChunkingSettings `toml:"chunking"`
	Indexing IndexingSettings `toml:"indexing"`

	path string
}

// DefaultSettings returns settings with every field at its default.
func DefaultSettings() *Settings {
	return &Settings{
		Ollama: OllamaSettings{
			URL:        DefaultOllamaURL,
			Model:      DefaultOllamaModel,
			Dimensions: DefaultOllamaDimensions,
			TimeoutSec: int(DefaultOllamaTimeout / time.Second),
		},
		Cache: CacheSettings{
			Capacity:   DefaultCacheCapacity,
			TTLMinutes: DefaultCacheTTLMinutes,
			TTIMinutes: DefaultCacheTTIMinutes,
		},
		Chunking: ChunkingSettings{
			Strategy: DefaultChunkingStrategy,
		},
		Indexing: IndexingSettings{
			Workers:          DefaultIndexWorkers,
			ProgressInterval: DefaultProgressInterval,
		},
	}
}

// Load reads settings from configDir/config.toml, filling absent fields
// with defaults. A missing file yields pure defaults, not an error.
// If configDir is empty, defaults to ~/.semdex.
func Load(configDir string) (*Settings, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".semdex")
	}

	s := DefaultSettings()
	s.path = filepath.Join(configDir, DefaultConfigFileName)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	s.applyDefaults()
	return s, nil
}

// Save persists the settings to disk with restricted permissions.
func (s *Settings) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	return os.WriteFile(s.path, data, 0600)
}

// Path returns the configuration file path.
func (s *Settings) Path() string {
	return s.path
}

// OllamaTimeout returns the provider timeout as a duration.
func (s *Settings) OllamaTimeout() time.Duration {
	return time.Duration(s.Ollama.TimeoutSec) * time.Second
}

// ChunkingConfig resolves the chunking section into a validated config:
// the named preset with any non-zero overrides applied.
func (s *Settings) ChunkingConfig() (domain.ChunkingConfig, error) {
	cfg, err := domain.ChunkingPreset(s.Chunking.Strategy)
	if err != nil {
		return domain.ChunkingConfig{}, err
	}

	if s.Chunking.SimilarityThreshold > 0 {
		cfg.SimilarityThreshold = s.Chunking.SimilarityThreshold
	}
	if s.Chunking.Percentile > 0 {
		cfg.SimilarityPercentile = s.Chunking.Percentile
	}
	if s.Chunking.MinSentences > 0 {
		cfg.MinChunkSentences = s.Chunking.MinSentences
	}
	if s.Chunking.MaxSentences > 0 {
		cfg.MaxChunkSentences = s.Chunking.MaxSentences
	}

	if err := cfg.Validate(); err != nil {
		return domain.ChunkingConfig{}, err
	}
	return cfg, nil
}

// applyDefaults backfills zero-valued fields after unmarshalling a
// partial file.
func (s *Settings) applyDefaults() {
	def := DefaultSettings()

	if s.Ollama.URL == "" {
		s.Ollama.URL = def.Ollama.URL
	}
	if s.Ollama.Model == "" {
		s.Ollama.Model = def.Ollama.Model
	}
	if s.Ollama.Dimensions <= 0 {
		s.Ollama.Dimensions = def.Ollama.Dimensions
	}
	if s.Ollama.TimeoutSec <= 0 {
		s.Ollama.TimeoutSec = def.Ollama.TimeoutSec
	}
	if s.Cache.Capacity <= 0 {
		s.Cache.Capacity = def.Cache.Capacity
	}
	if s.Cache.TTLMinutes <= 0 {
		s.Cache.TTLMinutes = def.Cache.TTLMinutes
	}
	if s.Cache.TTIMinutes <= 0 {
		s.Cache.TTIMinutes = def.Cache.TTIMinutes
	}
	if s.Chunking.Strategy == "" {
		s.Chunking.Strategy = def.Chunking.Strategy
	}
	if s.Indexing.Workers <= 0 {
		s.Indexing.Workers = def.Indexing.Workers
	}
	if s.Indexing.ProgressInterval <= 0 {
		s.Indexing.ProgressInterval = def.Indexing.ProgressInterval
	}
}
