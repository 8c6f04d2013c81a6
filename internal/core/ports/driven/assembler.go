package driven

import (
	"context"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// ChunkAssembler turns a raw document into semantically coherent chunks.
// Implementations segment the text, detect topic boundaries from sentence
// embeddings, and embed each final chunk's content.
type ChunkAssembler interface {
	// Assemble produces the complete chunk set for doc. The returned chunks
	// share one TotalChunks and carry doc.ContentHash as their FileHash.
	// Fails with domain.ErrEmptyDocument when segmentation yields nothing.
	Assemble(ctx context.Context, doc domain.RawDocument) ([]domain.SemanticChunk, error)
}
