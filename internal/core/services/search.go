package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
	"github.com/custodia-labs/semdex/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// snippetMaxLen caps a generated snippet's length.
const snippetMaxLen = 200

// SearchService ranks stored chunks against a text query by cosine
// similarity of their embeddings.
type SearchService struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
	cache    driven.EmbeddingCache
}

// NewSearchService creates a new search service. The cache is optional;
// when nil, every query embedding is computed directly.
func NewSearchService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	cache driven.EmbeddingCache,
) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
		cache:    cache,
	}
}

// scoredChunk pairs a candidate chunk with its query similarity.
type scoredChunk struct {
	chunk domain.SemanticChunk
	score float64
}

// Search embeds the query, scores every candidate chunk, filters by
// minimum similarity, ranks deterministically and paginates.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchPage, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var cursor *domain.Cursor
	if opts.Cursor != "" {
		decoded, err := domain.DecodeCursor(opts.Cursor)
		if err != nil {
			return nil, err
		}
		cursor = &decoded
	}

	queryVec, err := s.queryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(queryVec))

	candidates, err := s.store.ListChunks(ctx, driven.ChunkFilter{Category: opts.Category})
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	logger.Debug("Candidates: %d chunks", len(candidates))

	ranked, err := s.rank(queryVec, candidates, opts.MinSimilarity)
	if err != nil {
		return nil, err
	}
	logger.Debug("Above similarity threshold %.2f: %d", opts.MinSimilarity, len(ranked))

	limit := opts.Limit()
	start := opts.Offset
	if cursor != nil {
		start = resumeIndex(ranked, *cursor)
	}
	if start > len(ranked) {
		start = len(ranked)
	}

	end := min(start+limit, len(ranked))
	hasMore := end < len(ranked)

	page := &domain.SearchPage{
		Query:        query,
		Results:      make([]domain.SearchResult, 0, end-start),
		TotalResults: len(ranked),
		Offset:       opts.Offset,
		Limit:        limit,
		HasMore:      hasMore,
	}

	for _, sc := range ranked[start:end] {
		result := domain.SearchResult{
			ID:            sc.chunk.ID,
			SourceFile:    sc.chunk.SourceFile,
			Title:         sc.chunk.Metadata.Title,
			Category:      sc.chunk.Metadata.Category,
			Content:       sc.chunk.Content,
			Similarity:    sc.score,
			AvgSimilarity: sc.chunk.AvgSimilarity,
			SentenceRange: sc.chunk.SentenceRange,
		}
		if opts.IncludeSnippets {
			result.Snippet = makeSnippet(sc.chunk.Content, query)
		}
		page.Results = append(page.Results, result)
	}

	if hasMore && len(page.Results) > 0 {
		last := ranked[end-1]
		next := domain.Cursor{
			LastSeenID: last.chunk.ID,
			Score:      last.score,
			UpdatedAt:  last.chunk.Metadata.UpdatedAt,
			Forward:    true,
		}
		page.NextCursor = next.Encode()
	}

	logger.Info("Results: %d of %d (limit %d)", len(page.Results), page.TotalResults, limit)
	return page, nil
}

// queryEmbedding resolves the query vector through the cache when present.
func (s *SearchService) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if s.cache == nil {
		return s.embedder.Embed(ctx, query)
	}
	return s.cache.GetOrCompute(ctx, query, func(ctx context.Context) ([]float32, error) {
		logger.Debug("Cache miss, computing query embedding")
		return s.embedder.Embed(ctx, query)
	})
}

// rank scores candidates against the query vector, drops those below
// minSimilarity and sorts descending with chunk ID as tie-break. A stored
// chunk whose embedding dimension differs from the query's is corrupt
// relative to the active model and fails the whole search.
func (s *SearchService) rank(queryVec []float32, candidates []domain.SemanticChunk, minSimilarity float64) ([]scoredChunk, error) {
	ranked := make([]scoredChunk, 0, len(candidates))
	for _, chunk := range candidates {
		score, err := domain.CosineSimilarity(queryVec, chunk.Embedding)
		if err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				return nil, fmt.Errorf("chunk %s: %w", chunk.ID, err)
			}
			logger.Warn("Skipping chunk %s: %v", chunk.ID, err)
			continue
		}
		if score < minSimilarity {
			continue
		}
		ranked = append(ranked, scoredChunk{chunk: chunk, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].chunk.ID < ranked[j].chunk.ID
	})

	return ranked, nil
}

// resumeIndex locates where a cursor's page left off within the current
// ranking. When the last seen chunk still exists, resumption is exact.
// When it was re-indexed away between pages, the recorded score positions
// the cursor at the first strictly lower-scoring result.
func resumeIndex(ranked []scoredChunk, cursor domain.Cursor) int {
	for i, sc := range ranked {
		if sc.chunk.ID == cursor.LastSeenID {
			return i + 1
		}
	}
	for i, sc := range ranked {
		if sc.score < cursor.Score {
			return i
		}
	}
	return len(ranked)
}

// makeSnippet extracts the first sentence containing a query term,
// truncated to snippetMaxLen. Falls back to the chunk's opening text when
// no term matches.
func makeSnippet(content, query string) string {
	terms := strings.Fields(strings.ToLower(query))

	for _, sentence := range splitSentences(content) {
		sentenceLower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(sentenceLower, term) {
				return truncate(sentence, snippetMaxLen)
			}
		}
	}

	return truncate(strings.TrimSpace(content), snippetMaxLen)
}

// splitSentences splits content into sentences by common terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// truncate shortens s to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
