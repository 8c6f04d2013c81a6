// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// IndexReport summarises one indexing run. Per-document failures are
// counted and collected, never aborting the run.
type IndexReport struct {
	// Indexed counts newly inserted documents.
	Indexed int

	// Reindexed counts atomically replaced documents.
	Reindexed int

	// Removed counts deleted documents.
	Removed int

	// Unchanged counts skipped documents.
	Unchanged int

	// Failed counts documents whose indexing failed.
	Failed int

	// ChunksWritten counts chunks inserted across the run.
	ChunksWritten int

	// Errors holds the isolated per-document failures.
	Errors []error
}

// Processed returns the number of documents that reached a terminal state.
func (r *IndexReport) Processed() int {
	return r.Indexed + r.Reindexed + r.Removed + r.Unchanged + r.Failed
}

// Indexer keeps the persistent chunk store in sync with a document set.
type Indexer interface {
	// Run classifies every supplied document against the store's recorded
	// hashes and applies the required operation with bounded parallelism.
	// Documents on record but absent from docs are removed.
	Run(ctx context.Context, docs []domain.RawDocument) (*IndexReport, error)

	// IndexDocument chunks and inserts a new document.
	IndexDocument(ctx context.Context, doc domain.RawDocument) error

	// ReindexDocument atomically replaces a modified document's chunks.
	ReindexDocument(ctx context.Context, doc domain.RawDocument) error

	// RemoveDocument deletes all chunks for path, reporting the count.
	RemoveDocument(ctx context.Context, path string) (int64, error)
}
