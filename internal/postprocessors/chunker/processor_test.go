package chunker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// mockEmbedder returns preset vectors per text, with a fallback for texts
// it has no mapping for (chunk contents).
type mockEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	calls    int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string, _ int) ([][]float32, error) {
	m.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return len(m.fallback) }
func (m *mockEmbedder) ModelName() string          { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// anglesToVectors builds unit vectors whose consecutive-pair cosine
// similarities equal the given values exactly.
func vectorsWithPairwiseSims(sims []float64) [][]float32 {
	vectors := make([][]float32, len(sims)+1)
	angle := 0.0
	vectors[0] = []float32{1, 0}
	for i, sim := range sims {
		angle += math.Acos(sim)
		vectors[i+1] = []float32{float32(math.Cos(angle)), float32(math.Sin(angle))}
	}
	return vectors
}

// embedderFor maps each sentence to a vector producing the given pairwise
// similarity sequence.
func embedderFor(sentences []string, sims []float64) *mockEmbedder {
	vectors := vectorsWithPairwiseSims(sims)
	m := &mockEmbedder{
		vectors:  make(map[string][]float32, len(sentences)),
		fallback: []float32{0.5, 0.5},
	}
	for i, s := range sentences {
		m.vectors[s] = vectors[i]
	}
	return m
}

func newProcessor(t *testing.T, cfg domain.ChunkingConfig, embedder *mockEmbedder, opts ...Option) *Processor {
	t.Helper()
	p, err := New(cfg, embedder, opts...)
	require.NoError(t, err)
	return p
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := domain.DefaultChunkingConfig()
	cfg.MinChunkSentences = 0

	_, err := New(cfg, &mockEmbedder{fallback: []float32{1, 0}})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNew_NilEmbedder(t *testing.T) {
	_, err := New(domain.DefaultChunkingConfig(), nil)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAssemble_EmptyDocument(t *testing.T) {
	p := newProcessor(t, domain.DefaultChunkingConfig(), &mockEmbedder{fallback: []float32{1, 0}})

	_, err := p.Assemble(context.Background(), domain.NewRawDocument("empty.md", "   \n  "))

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestAssemble_SingleSentence(t *testing.T) {
	p := newProcessor(t, domain.DefaultChunkingConfig(), &mockEmbedder{fallback: []float32{1, 0}})

	chunks, err := p.Assemble(context.Background(),
		domain.NewRawDocument("one.md", "Just one sentence without a break"))

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[0].TotalChunks)
	assert.Equal(t, domain.SentenceRange{Start: 0, End: 0}, chunks[0].SentenceRange)
	assert.InDelta(t, 1.0, chunks[0].AvgSimilarity, 1e-9)
	assert.Equal(t, []float32{1, 0}, chunks[0].Embedding)
}

func TestAssemble_BoundaryAtWeakPair(t *testing.T) {
	// Pairwise similarities [0.9, 0.85, 0.30, 0.88] with an effective
	// threshold between 0.30 and 0.85 must cut exactly at the 0.30 pair.
	sentences := []string{
		"Alpha sentence one.",
		"Alpha sentence two.",
		"Alpha sentence three.",
		"Beta sentence four.",
		"Beta sentence five.",
	}
	text := "Alpha sentence one. Alpha sentence two. Alpha sentence three. Beta sentence four. Beta sentence five."
	embedder := embedderFor(sentences, []float64{0.9, 0.85, 0.30, 0.88})

	cfg := domain.DefaultChunkingConfig()
	cfg.SimilarityThreshold = 0.5
	cfg.SimilarityPercentile = 0.5 // dynamic ~0.865, min policy keeps 0.5
	cfg.MinChunkSentences = 2
	cfg.MinSentenceLength = 5

	p := newProcessor(t, cfg, embedder)

	chunks, err := p.Assemble(context.Background(), domain.NewRawDocument("doc.md", text))

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, domain.SentenceRange{Start: 0, End: 2}, chunks[0].SentenceRange)
	assert.Equal(t, domain.SentenceRange{Start: 3, End: 4}, chunks[1].SentenceRange)
}

func TestAssemble_TopicShiftScenario(t *testing.T) {
	sentences := []string{
		"First idea.",
		"Second idea continues.",
		"Completely unrelated topic now.",
		"Another unrelated sentence.",
	}
	text := "First idea. Second idea continues. Completely unrelated topic now. Another unrelated sentence."
	embedder := embedderFor(sentences, []float64{0.9, 0.2, 0.9})

	cfg := domain.DefaultChunkingConfig()
	cfg.SimilarityPercentile = 0.1
	cfg.MinChunkSentences = 2
	cfg.MinSentenceLength = 5

	p := newProcessor(t, cfg, embedder)

	chunks, err := p.Assemble(context.Background(), domain.NewRawDocument("doc.md", text))

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, 2, chunk.TotalChunks)
	}
	assert.Contains(t, chunks[0].Content, "First idea.")
	assert.Contains(t, chunks[0].Content, "Second idea continues.")
	assert.Contains(t, chunks[1].Content, "Completely unrelated topic now.")
}

func TestAssemble_UndersizedTrailingMergesBack(t *testing.T) {
	sentences := []string{
		"Topic sentence one here.",
		"Topic sentence two here.",
		"Stray trailing sentence.",
	}
	text := "Topic sentence one here. Topic sentence two here. Stray trailing sentence."
	embedder := embedderFor(sentences, []float64{0.9, 0.1})

	cfg := domain.DefaultChunkingConfig()
	cfg.SimilarityThreshold = 0.5
	cfg.SimilarityPercentile = 0.5
	cfg.MinChunkSentences = 2
	cfg.MinSentenceLength = 5

	p := newProcessor(t, cfg, embedder)

	chunks, err := p.Assemble(context.Background(), domain.NewRawDocument("doc.md", text))

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.SentenceRange{Start: 0, End: 2}, chunks[0].SentenceRange)
}

func TestAssemble_UndersizedLeadingMergesForward(t *testing.T) {
	sentences := []string{
		"Stray leading sentence.",
		"Topic sentence one here.",
		"Topic sentence two here.",
	}
	text := "Stray leading sentence. Topic sentence one here. Topic sentence two here."
	embedder := embedderFor(sentences, []float64{0.1, 0.9})

	cfg := domain.DefaultChunkingConfig()
	cfg.SimilarityThreshold = 0.5
	cfg.SimilarityPercentile = 0.5
	cfg.MinChunkSentences = 2
	cfg.MinSentenceLength = 5

	p := newProcessor(t, cfg, embedder)

	chunks, err := p.Assemble(context.Background(), domain.NewRawDocument("doc.md", text))

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.SentenceRange{Start: 0, End: 2}, chunks[0].SentenceRange)
}

func TestAssemble_OversizedSplitsAtWeakestPoint(t *testing.T) {
	sims := []float64{0.95, 0.9, 0.8, 0.9, 0.95}
	sentences := make([]string, 6)
	text := ""
	for i := range sentences {
		sentences[i] = fmt.Sprintf("Sentence number %d padded out.", i)
		if i > 0 {
			text += " "
		}
		text += sentences[i]
	}
	embedder := embedderFor(sentences, sims)

	cfg := domain.DefaultChunkingConfig()
	cfg.SimilarityThreshold = 0.5
	cfg.SimilarityPercentile = 0
	cfg.MinChunkSentences = 1
	cfg.MaxChunkSentences = 3
	cfg.MinSentenceLength = 5

	p := newProcessor(t, cfg, embedder)

	chunks, err := p.Assemble(context.Background(), domain.NewRawDocument("doc.md", text))

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	// Weakest internal similarity is sims[2]=0.8: split after sentence 2.
	assert.Equal(t, domain.SentenceRange{Start: 0, End: 2}, chunks[0].SentenceRange)
	assert.Equal(t, domain.SentenceRange{Start: 3, End: 5}, chunks[1].SentenceRange)
}

func TestAssemble_Metadata(t *testing.T) {
	sentences := []string{
		"First idea continues here.",
		"Second idea continues here.",
	}
	text := "# Getting Started\nFirst idea continues here. Second idea continues here."
	embedder := embedderFor(sentences, []float64{0.9})
	fixed := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

	cfg := domain.DefaultChunkingConfig()
	cfg.MinSentenceLength = 5

	p := newProcessor(t, cfg, embedder,
		WithCategory(domain.CategoryTutorial),
		WithKeywords("setup", "Setup", "intro"),
		WithClock(func() time.Time { return fixed }),
	)

	doc := domain.NewRawDocument("docs/start.md", text)
	chunks, err := p.Assemble(context.Background(), doc)

	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	meta := chunks[0].Metadata
	assert.Equal(t, "docs/start.md", meta.SourceFile)
	assert.Equal(t, "Getting Started", meta.Title)
	require.NotNil(t, meta.Category)
	assert.Equal(t, domain.CategoryTutorial, *meta.Category)
	assert.Equal(t, []string{"setup", "intro"}, meta.Keywords)
	assert.Equal(t, doc.ContentHash, meta.FileHash)
	assert.Equal(t, fixed, meta.CreatedAt)
	assert.Positive(t, meta.WordCount)
	assert.Equal(t, len(chunks[0].Content), meta.CharCount)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestAssemble_PropagatesEmbeddingError(t *testing.T) {
	embedErr := errors.New("provider down")
	embedder := &mockEmbedder{embedErr: embedErr, fallback: []float32{1, 0}}

	cfg := domain.DefaultChunkingConfig()
	cfg.MinSentenceLength = 5

	p := newProcessor(t, cfg, embedder)

	_, err := p.Assemble(context.Background(),
		domain.NewRawDocument("doc.md", "First sentence here. Second sentence here."))

	assert.ErrorIs(t, err, embedErr)
}
