package driven

import "context"

// ComputeFunc produces a vector for a cache miss.
type ComputeFunc func(ctx context.Context) ([]float32, error)

// CacheStats reports the current occupancy of an embedding cache.
type CacheStats struct {
	// Entries is the number of live entries.
	Entries int

	// ApproxBytes is the approximate memory weight of cached vectors.
	ApproxBytes int64
}

// EmbeddingCache is a bounded, time-aware cache mapping a normalised query
// string to a previously computed vector. Implementations are safe for
// concurrent use; only the cache itself mutates its internal state.
type EmbeddingCache interface {
	// Get returns the cached vector for key, if present and unexpired.
	Get(key string) ([]float32, bool)

	// Put stores a vector under key.
	Put(key string, vector []float32)

	// GetOrCompute returns the cached vector for key, or invokes compute on
	// miss and caches the result. At most one computation is in flight per
	// key; concurrent callers for the same key all receive the same result.
	// A compute error propagates to every waiter and is not cached.
	GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]float32, error)

	// Clear removes all entries.
	Clear()

	// Stats returns entry count and approximate weight.
	Stats() CacheStats

	// Close stops background maintenance.
	Close() error
}
