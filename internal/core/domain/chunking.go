package domain

import "fmt"

// ThresholdPolicy selects how the percentile-derived threshold and the
// fixed configured threshold are combined into one effective boundary
// threshold.
type ThresholdPolicy string

// Available threshold policies.
const (
	// ThresholdPolicyMin uses the lower of the two thresholds. Sentences
	// stay together unless both signals agree on a split. This is the
	// default behaviour.
	ThresholdPolicyMin ThresholdPolicy = "min"

	// ThresholdPolicyMax uses the higher of the two thresholds, making each
	// signal an independent necessary condition for keeping sentences
	// together.
	ThresholdPolicyMax ThresholdPolicy = "max"
)

// IsValid returns true if the policy is recognised.
func (p ThresholdPolicy) IsValid() bool {
	return p == ThresholdPolicyMin || p == ThresholdPolicyMax
}

// Combine applies the policy to the dynamic and fixed thresholds.
func (p ThresholdPolicy) Combine(dynamic, fixed float64) float64 {
	if p == ThresholdPolicyMax {
		if dynamic > fixed {
			return dynamic
		}
		return fixed
	}
	if dynamic < fixed {
		return dynamic
	}
	return fixed
}

// ChunkingConfig holds the validated parameters for semantic chunk
// assembly.
type ChunkingConfig struct {
	// SimilarityThreshold is the fixed boundary threshold, in [0, 1].
	SimilarityThreshold float64

	// SimilarityPercentile selects the percentile of the document's own
	// pairwise-similarity distribution used as the adaptive threshold,
	// in [0, 1].
	SimilarityPercentile float64

	// ThresholdPolicy combines the adaptive and fixed thresholds.
	// Empty defaults to ThresholdPolicyMin.
	ThresholdPolicy ThresholdPolicy

	// MinChunkSentences is the smallest chunk returned standalone; smaller
	// candidates are merged into a neighbour. At least 1.
	MinChunkSentences int

	// MaxChunkSentences caps chunk size; oversized candidates are split at
	// their weakest internal similarity. At least MinChunkSentences.
	MaxChunkSentences int

	// MinSentenceLength drops segmentation fragments shorter than this
	// many characters. At least 1.
	MinSentenceLength int

	// EmbeddingBatchSize bounds the number of texts per provider call.
	// At least 1.
	EmbeddingBatchSize int
}

// DefaultChunkingConfig returns the balanced preset.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		SimilarityThreshold:  0.75,
		SimilarityPercentile: 0.25,
		ThresholdPolicy:      ThresholdPolicyMin,
		MinChunkSentences:    2,
		MaxChunkSentences:    8,
		MinSentenceLength:    10,
		EmbeddingBatchSize:   16,
	}
}

// TechnicalChunkingConfig returns a preset tuned for dense technical
// prose: smaller chunks, a stricter threshold.
func TechnicalChunkingConfig() ChunkingConfig {
	cfg := DefaultChunkingConfig()
	cfg.SimilarityThreshold = 0.8
	cfg.SimilarityPercentile = 0.35
	cfg.MaxChunkSentences = 5
	return cfg
}

// NarrativeChunkingConfig returns a preset tuned for flowing narrative
// text: larger chunks, a looser threshold.
func NarrativeChunkingConfig() ChunkingConfig {
	cfg := DefaultChunkingConfig()
	cfg.SimilarityThreshold = 0.65
	cfg.SimilarityPercentile = 0.15
	cfg.MaxChunkSentences = 12
	return cfg
}

// ChunkingPreset returns the named preset configuration.
// Known names: "default", "technical", "narrative". "custom" returns the
// default as a starting point for flag overrides. Unknown names return
// ErrInvalidConfig.
func ChunkingPreset(name string) (ChunkingConfig, error) {
	switch name {
	case "", "default", "custom":
		return DefaultChunkingConfig(), nil
	case "technical":
		return TechnicalChunkingConfig(), nil
	case "narrative":
		return NarrativeChunkingConfig(), nil
	default:
		return ChunkingConfig{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, name)
	}
}

// Validate checks all fields and returns ErrInvalidConfig (wrapped with
// the offending field) on the first violation.
func (c ChunkingConfig) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %v outside [0, 1]", ErrInvalidConfig, c.SimilarityThreshold)
	}
	if c.SimilarityPercentile < 0 || c.SimilarityPercentile > 1 {
		return fmt.Errorf("%w: similarity percentile %v outside [0, 1]", ErrInvalidConfig, c.SimilarityPercentile)
	}
	if c.ThresholdPolicy != "" && !c.ThresholdPolicy.IsValid() {
		return fmt.Errorf("%w: unknown threshold policy %q", ErrInvalidConfig, c.ThresholdPolicy)
	}
	if c.MinChunkSentences < 1 {
		return fmt.Errorf("%w: min chunk sentences %d < 1", ErrInvalidConfig, c.MinChunkSentences)
	}
	if c.MaxChunkSentences < c.MinChunkSentences {
		return fmt.Errorf("%w: max chunk sentences %d < min %d",
			ErrInvalidConfig, c.MaxChunkSentences, c.MinChunkSentences)
	}
	if c.MinSentenceLength < 1 {
		return fmt.Errorf("%w: min sentence length %d < 1", ErrInvalidConfig, c.MinSentenceLength)
	}
	if c.EmbeddingBatchSize < 1 {
		return fmt.Errorf("%w: embedding batch size %d < 1", ErrInvalidConfig, c.EmbeddingBatchSize)
	}
	return nil
}

// Policy returns the configured threshold policy, defaulting to min.
func (c ChunkingConfig) Policy() ThresholdPolicy {
	if c.ThresholdPolicy == "" {
		return ThresholdPolicyMin
	}
	return c.ThresholdPolicy
}
