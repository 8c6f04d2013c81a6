// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
//
// The rest of the engine never references a concrete backend type.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, issuing provider
	// requests in slices of batchSize. Every returned vector must share one
	// dimension; an intra-batch mismatch is a hard error for the batch.
	EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	// This is determined by the model and must match the stored chunks.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup to fail fast before any indexing work.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
