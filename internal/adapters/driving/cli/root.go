// Package cli implements the semdex command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/semdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/semdex/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/semdex/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/semdex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/semdex/internal/connectors/filesystem"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
	"github.com/custodia-labs/semdex/internal/core/services"
	"github.com/custodia-labs/semdex/internal/logger"
)

const version = "0.1.0"

// Persistent flag values.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Services wired by InitServices. Tests swap these for mocks.
var (
	settings      *file.Settings
	chunkStore    driven.ChunkStore
	embedder      driven.EmbeddingService
	embedCache    driven.EmbeddingCache
	searchService driving.SearchService
	docLoader     *filesystem.Loader
)

var rootCmd = &cobra.Command{
	Use:   "semdex",
	Short: "Semantic indexing and search for local documentation",
	Long: `semdex indexes local documentation into semantically coherent chunks
and serves meaning-based search over them.

Documents are segmented into sentences, grouped at topic boundaries
detected from embedding similarity, and stored with their vectors in a
local SQLite database. Searches embed the query and rank chunks by
cosine similarity. Embeddings are computed by a local Ollama instance.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.semdex)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.semdex/data)")
}

// Execute runs the root command with the given context. The context is
// cancelled on shutdown signals so watch mode and servers exit cleanly.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// InitServices wires the production services. It is a no-op when a search
// service is already present, so tests can inject mocks beforehand.
// The returned cleanup releases the store and cache.
//
// Wiring happens before cobra parses the command line, so the directory
// flags are scanned early here.
func InitServices() (func(), error) {
	if searchService != nil {
		return func() {}, nil
	}
	scanDirectoryFlags(os.Args[1:])

	loaded, err := file.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = loaded

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open chunk store: %w", err)
	}
	chunkStore = store

	embedder = ollama.NewEmbeddingService(ollama.Config{
		BaseURL:    settings.Ollama.URL,
		Model:      settings.Ollama.Model,
		Dimensions: settings.Ollama.Dimensions,
		Timeout:    settings.OllamaTimeout(),
	})

	queryCache := cache.New(cache.Config{
		MaxCapacity: settings.Cache.Capacity,
		TimeToLive:  minutes(settings.Cache.TTLMinutes),
		TimeToIdle:  minutes(settings.Cache.TTIMinutes),
	})
	embedCache = queryCache

	searchService = services.NewSearchService(chunkStore, embedder, embedCache)
	docLoader = filesystem.NewLoader(settings.Indexing.Extensions)

	cleanup := func() {
		queryCache.Close()
		if err := store.Close(); err != nil {
			logger.Warn("closing chunk store: %v", err)
		}
	}
	return cleanup, nil
}

// newIndexer builds an indexer over the given store with the effective
// worker count. The assembler embeds with the shared Ollama service.
func newIndexer(store driven.ChunkStore, assembler driven.ChunkAssembler, workers int) driving.Indexer {
	if workers <= 0 {
		workers = settings.Indexing.Workers
	}
	return services.NewIndexerService(store, assembler, services.IndexerConfig{
		Workers:          workers,
		ProgressInterval: settings.Indexing.ProgressInterval,
	})
}

// scanDirectoryFlags pre-parses the persistent directory flags, ignoring
// everything else on the command line.
func scanDirectoryFlags(args []string) {
	fs := pflag.NewFlagSet("semdex", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.StringVar(&configDir, "config-dir", "", "")
	fs.StringVar(&dataDir, "data-dir", "", "")
	_ = fs.Parse(args)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// formatList joins items for display, or a placeholder when empty.
func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
