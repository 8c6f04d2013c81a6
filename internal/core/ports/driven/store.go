package driven

import (
	"context"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// ChunkFilter narrows a chunk listing at the storage layer.
type ChunkFilter struct {
	// SourceFile restricts to one document's chunks.
	SourceFile string

	// Category restricts to one documentation category.
	Category *domain.Category
}

// ChunkStore is the single owner of durable chunk state. All mutation goes
// through its transactional operations; readers never observe a partial
// per-document chunk set.
type ChunkStore interface {
	// InsertChunks stores the chunks of a newly indexed document.
	InsertChunks(ctx context.Context, chunks []domain.SemanticChunk) error

	// ReplaceChunks atomically swaps a document's chunk set: within one
	// transaction it deletes every chunk for sourceFile and inserts the new
	// set. On any failure the transaction rolls back entirely.
	ReplaceChunks(ctx context.Context, sourceFile string, chunks []domain.SemanticChunk) error

	// DeleteChunks removes all chunks for sourceFile and reports how many
	// rows were deleted. A path with no rows yields 0, not an error.
	DeleteChunks(ctx context.Context, sourceFile string) (int64, error)

	// ListChunks returns chunks matching the filter, ordered by source file
	// and chunk index.
	ListChunks(ctx context.Context, filter ChunkFilter) ([]domain.SemanticChunk, error)

	// FileHashes returns the recorded content hash per source file.
	FileHashes(ctx context.Context) (map[string]string, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int64, error)

	// Close releases resources.
	Close() error
}
