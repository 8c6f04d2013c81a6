package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
	"github.com/custodia-labs/semdex/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// Default indexing parameters.
const (
	DefaultIndexWorkers     = 4
	DefaultProgressInterval = 25
)

// IndexerConfig tunes an indexing run.
type IndexerConfig struct {
	// Workers bounds concurrent document processing (default 4).
	Workers int

	// ProgressInterval logs a progress line every N processed documents
	// (default 25).
	ProgressInterval int
}

// IndexerService keeps the chunk store in sync with a document set using
// content-hash change detection.
type IndexerService struct {
	store     driven.ChunkStore
	assembler driven.ChunkAssembler
	cfg       IndexerConfig
}

// NewIndexerService creates a new indexer service.
func NewIndexerService(store driven.ChunkStore, assembler driven.ChunkAssembler, cfg IndexerConfig) *IndexerService {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultIndexWorkers
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}

	return &IndexerService{
		store:     store,
		assembler: assembler,
		cfg:       cfg,
	}
}

// Run classifies every supplied document against the store's recorded
// hashes and applies the required operation with bounded parallelism.
// Documents on record but absent from docs are removed. A single
// document's failure is counted and collected, never aborting the run.
func (s *IndexerService) Run(ctx context.Context, docs []domain.RawDocument) (*driving.IndexReport, error) {
	logger.Section("Indexing Run")
	logger.Debug("Documents supplied: %d", len(docs))

	recorded, err := s.store.FileHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recorded hashes: %w", err)
	}
	logger.Debug("Documents on record: %d", len(recorded))

	report := &driving.IndexReport{}
	var mu sync.Mutex
	var processed int

	progress := func() {
		mu.Lock()
		defer mu.Unlock()
		processed++
		if processed%s.cfg.ProgressInterval == 0 {
			logger.Info("Progress: %d/%d documents", processed, len(docs))
		}
	}

	supplied := make(map[string]bool, len(docs))
	for _, doc := range docs {
		supplied[doc.Path] = true
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Workers)

	for _, doc := range docs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			state := domain.Classify(recorded[doc.Path], doc.ContentHash)
			logger.Debug("%s: %s", doc.Path, state)

			switch state {
			case domain.DocUnchanged:
				mu.Lock()
				report.Unchanged++
				mu.Unlock()

			case domain.DocNew:
				written, err := s.indexDocument(groupCtx, doc, false)
				mu.Lock()
				if err != nil {
					report.Failed++
					report.Errors = append(report.Errors, fmt.Errorf("%s: %w", doc.Path, err))
					logger.Error("Indexing %s failed: %v", doc.Path, err)
				} else {
					report.Indexed++
					report.ChunksWritten += written
				}
				mu.Unlock()

			case domain.DocModified:
				written, err := s.indexDocument(groupCtx, doc, true)
				mu.Lock()
				if err != nil {
					report.Failed++
					report.Errors = append(report.Errors, fmt.Errorf("%s: %w", doc.Path, err))
					logger.Error("Reindexing %s failed: %v", doc.Path, err)
				} else {
					report.Reindexed++
					report.ChunksWritten += written
				}
				mu.Unlock()
			}

			progress()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return report, err
	}

	// Remove documents on record that were not supplied this run.
	var removals []string
	for path := range recorded {
		if !supplied[path] {
			removals = append(removals, path)
		}
	}
	sort.Strings(removals)

	for _, path := range removals {
		deleted, err := s.store.DeleteChunks(ctx, path)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("%s: %w", path, err))
			logger.Error("Removing %s failed: %v", path, err)
			continue
		}
		logger.Debug("%s: removed %d chunks", path, deleted)
		report.Removed++
	}

	logger.Info("Run complete: %d indexed, %d reindexed, %d removed, %d unchanged, %d failed",
		report.Indexed, report.Reindexed, report.Removed, report.Unchanged, report.Failed)

	return report, nil
}

// IndexDocument chunks and inserts a new document.
func (s *IndexerService) IndexDocument(ctx context.Context, doc domain.RawDocument) error {
	_, err := s.indexDocument(ctx, doc, false)
	return err
}

// ReindexDocument atomically replaces a modified document's chunks.
func (s *IndexerService) ReindexDocument(ctx context.Context, doc domain.RawDocument) error {
	_, err := s.indexDocument(ctx, doc, true)
	return err
}

// RemoveDocument deletes all chunks for path, reporting the count.
func (s *IndexerService) RemoveDocument(ctx context.Context, path string) (int64, error) {
	deleted, err := s.store.DeleteChunks(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("removing %s: %w", path, err)
	}
	return deleted, nil
}

// indexDocument assembles chunks and writes them, replacing any previous
// set when replace is true. Returns the number of chunks written.
func (s *IndexerService) indexDocument(ctx context.Context, doc domain.RawDocument, replace bool) (int, error) {
	chunks, err := s.assembler.Assemble(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("assembling chunks: %w", err)
	}

	if replace {
		if err := s.store.ReplaceChunks(ctx, doc.Path, chunks); err != nil {
			return 0, fmt.Errorf("replacing chunks: %w", err)
		}
	} else {
		if err := s.store.InsertChunks(ctx, chunks); err != nil {
			return 0, fmt.Errorf("inserting chunks: %w", err)
		}
	}

	return len(chunks), nil
}
