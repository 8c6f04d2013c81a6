package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semdex/internal/connectors/filesystem"
	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
	"github.com/custodia-labs/semdex/internal/logger"
	"github.com/custodia-labs/semdex/internal/postprocessors/chunker"
)

var (
	indexStrategy     string
	indexThreshold    float64
	indexPercentile   float64
	indexMinSentences int
	indexMaxSentences int
	indexWorkers      int
	indexCategory     string
	indexDryRun       bool
	indexWatch        bool
)

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index documents into the semantic store",
	Long: `Indexes the given files and directories into the local chunk store.

The supplied paths define the document set: new files are chunked and
inserted, modified files are atomically re-chunked, unchanged files are
skipped and files on record but no longer present are removed.

Chunking follows the configured strategy preset (default, technical or
narrative); individual parameters can be overridden per run.

Examples:
  # Index a documentation tree
  semdex index ./docs

  # Preview chunking without touching the store
  semdex index --dry-run ./docs

  # Keep the index in sync as files change
  semdex index --watch ./docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexStrategy, "strategy", "", "chunking strategy preset: default, technical or narrative")
	indexCmd.Flags().Float64Var(&indexThreshold, "threshold", 0, "fixed similarity threshold override, in (0, 1]")
	indexCmd.Flags().Float64Var(&indexPercentile, "percentile", 0, "adaptive threshold percentile override, in (0, 1]")
	indexCmd.Flags().IntVar(&indexMinSentences, "min-sentences", 0, "minimum sentences per chunk override")
	indexCmd.Flags().IntVar(&indexMaxSentences, "max-sentences", 0, "maximum sentences per chunk override")
	indexCmd.Flags().IntVarP(&indexWorkers, "workers", "w", 0, "parallel document workers (default from settings)")
	indexCmd.Flags().StringVar(&indexCategory, "category", "", "tag every chunk with a category: tutorial, howto, reference or explanation")
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "chunk into an in-memory store, leaving the index untouched")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep running and re-index files as they change")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if embedder == nil || chunkStore == nil || settings == nil {
		return errors.New("indexing services not configured")
	}

	cfg, err := indexChunkingConfig()
	if err != nil {
		return err
	}

	var opts []chunker.Option
	if indexCategory != "" {
		category, err := domain.ParseCategory(indexCategory)
		if err != nil {
			return fmt.Errorf("unknown category %q", indexCategory)
		}
		opts = append(opts, chunker.WithCategory(category))
	}

	assembler, err := chunker.New(cfg, embedder, opts...)
	if err != nil {
		return err
	}

	store := chunkStore
	if indexDryRun {
		store = memory.NewChunkStore()
		cmd.Println("Dry run: chunks will not be persisted.")
	}

	indexer := newIndexer(store, assembler, indexWorkers)
	ctx := cmd.Context()

	docs, err := docLoader.Load(ctx, args)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	report, err := indexer.Run(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	printReport(cmd, report)

	if indexWatch && !indexDryRun {
		return watchPaths(ctx, cmd, indexer, args)
	}
	return nil
}

// indexChunkingConfig resolves settings with any flag overrides applied.
func indexChunkingConfig() (domain.ChunkingConfig, error) {
	resolved := *settings
	if indexStrategy != "" {
		resolved.Chunking.Strategy = indexStrategy
	}
	if indexThreshold > 0 {
		resolved.Chunking.SimilarityThreshold = indexThreshold
	}
	if indexPercentile > 0 {
		resolved.Chunking.Percentile = indexPercentile
	}
	if indexMinSentences > 0 {
		resolved.Chunking.MinSentences = indexMinSentences
	}
	if indexMaxSentences > 0 {
		resolved.Chunking.MaxSentences = indexMaxSentences
	}
	return resolved.ChunkingConfig()
}

func printReport(cmd *cobra.Command, report *driving.IndexReport) {
	cmd.Printf("Indexed %d, reindexed %d, removed %d, unchanged %d",
		report.Indexed, report.Reindexed, report.Removed, report.Unchanged)
	if report.Failed > 0 {
		cmd.Printf(", failed %d", report.Failed)
	}
	cmd.Printf(" (%d chunks written)\n", report.ChunksWritten)

	for _, err := range report.Errors {
		cmd.Printf("  error: %v\n", err)
	}
}

// watchPaths blocks, applying filesystem changes to the index until the
// context is cancelled.
func watchPaths(ctx context.Context, cmd *cobra.Command, indexer driving.Indexer, paths []string) error {
	changes := make(chan filesystem.Change)
	watchers := make([]*filesystem.Watcher, 0, len(paths))
	defer func() {
		for _, w := range watchers {
			w.Close()
		}
	}()

	for _, path := range paths {
		w := filesystem.NewWatcher(path, docLoader, filesystem.DefaultDebounce)
		ch, err := w.Watch(ctx)
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		watchers = append(watchers, w)

		go func() {
			for change := range ch {
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-changes:
			applyChange(ctx, cmd, indexer, change)
		}
	}
}

func applyChange(ctx context.Context, cmd *cobra.Command, indexer driving.Indexer, change filesystem.Change) {
	switch change.Type {
	case filesystem.ChangeRemoved:
		removed, err := indexer.RemoveDocument(ctx, change.Path)
		if err != nil {
			logger.Error("remove %s: %v", change.Path, err)
			return
		}
		cmd.Printf("Removed %s (%d chunks)\n", change.Path, removed)
	default:
		docs, err := docLoader.Load(ctx, []string{change.Path})
		if err != nil || len(docs) == 0 {
			logger.Error("load %s: %v", change.Path, err)
			return
		}
		if err := indexer.ReindexDocument(ctx, docs[0]); err != nil {
			logger.Error("reindex %s: %v", change.Path, err)
			return
		}
		cmd.Printf("Reindexed %s\n", change.Path)
	}
}
