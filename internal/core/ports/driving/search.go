package driving

import (
	"context"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// SearchService ranks stored chunks against a text query.
type SearchService interface {
	// Search embeds the query (through the embedding cache), scores every
	// candidate chunk by cosine similarity, filters, ranks deterministically
	// and paginates by offset or cursor.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchPage, error)
}
