package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/semdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/semdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semdex/internal/connectors/filesystem"
	"github.com/custodia-labs/semdex/internal/core/domain"
)

// mockEmbedder returns a constant vector for every text.
type mockEmbedder struct{}

func (mockEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (m mockEmbedder) EmbedBatch(_ context.Context, texts []string, _ int) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (mockEmbedder) Dimensions() int { return 3 }

func (mockEmbedder) ModelName() string { return "mock-embed" }

func (mockEmbedder) Ping(context.Context) error { return nil }

func (mockEmbedder) Close() error { return nil }

// mockSearchService returns one canned result.
type mockSearchService struct{}

func (mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchPage, error) {
	return &domain.SearchPage{
		Query: query,
		Results: []domain.SearchResult{
			{
				ID:         "chunk-1",
				SourceFile: "docs/guide.md",
				Title:      "Test Document",
				Content:    "A matching chunk.",
				Snippet:    "A matching chunk.",
				Similarity: 0.95,
			},
		},
		TotalResults: 1,
		Limit:        opts.Limit(),
	}, nil
}

// mockSearchServiceError always fails.
type mockSearchServiceError struct{}

func (mockSearchServiceError) Search(context.Context, string, domain.SearchOptions) (*domain.SearchPage, error) {
	return nil, errors.New("backend unavailable")
}

// setupTestServices swaps the package globals for in-memory fakes and
// returns a cleanup restoring the previous values.
func setupTestServices() func() {
	oldSettings := settings
	oldStore := chunkStore
	oldEmbedder := embedder
	oldSearch := searchService
	oldLoader := docLoader

	settings = file.DefaultSettings()
	chunkStore = memory.NewChunkStore()
	embedder = mockEmbedder{}
	searchService = mockSearchService{}
	docLoader = filesystem.NewLoader(nil)

	return func() {
		settings = oldSettings
		chunkStore = oldStore
		embedder = oldEmbedder
		searchService = oldSearch
		docLoader = oldLoader
	}
}

// resetSearchFlags restores flag values mutated by a test run.
func resetSearchFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		searchMaxResults = 0
		searchMinSimilarity = 0
		searchCategory = ""
		searchOffset = 0
		searchCursor = ""
		searchSnippets = true
		searchJSON = false
	})
}
