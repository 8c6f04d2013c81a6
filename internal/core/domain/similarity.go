package domain

import (
	"fmt"
	"math"
	"sort"
)

// CosineSimilarity computes the cosine of the angle between two vectors.
//
// Returns a value in [-1, 1]:
//   - 1 means the vectors point the same way
//   - 0 means the vectors are orthogonal
//   - -1 means the vectors are opposite
//
// The dot product and both magnitudes are accumulated in one pass.
// Fails with ErrDimensionMismatch when lengths differ, ErrZeroVector when
// either vector has zero magnitude, and ErrInvalidValue when the result is
// NaN or infinite.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0, ErrZeroVector
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, ErrInvalidValue
	}
	return sim, nil
}

// PairwiseSimilarities returns the cosine similarity of each consecutive
// pair: N vectors yield N-1 scores. Empty and singleton input yield an
// empty sequence, not an error.
func PairwiseSimilarities(embeddings [][]float32) ([]float64, error) {
	if len(embeddings) < 2 {
		return []float64{}, nil
	}

	sims := make([]float64, 0, len(embeddings)-1)
	for i := 0; i < len(embeddings)-1; i++ {
		sim, err := CosineSimilarity(embeddings[i], embeddings[i+1])
		if err != nil {
			return nil, fmt.Errorf("pair %d-%d: %w", i, i+1, err)
		}
		sims = append(sims, sim)
	}
	return sims, nil
}

// Percentile returns the p-th percentile of values using linear
// interpolation between adjacent ranks. p=0 returns the minimum, p=1 the
// maximum. Undefined on empty input; callers must guard (returns 0).
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
