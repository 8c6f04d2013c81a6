// Package chunker assembles sentences into semantically coherent chunks.
//
// Boundaries are detected from the similarity of consecutive sentence
// embeddings against a threshold derived from the document's own
// similarity distribution, so segmentation adapts to each document's
// topic density.
package chunker

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/postprocessors/segmenter"
)

// Ensure Processor implements the interface.
var _ driven.ChunkAssembler = (*Processor)(nil)

// Processor builds semantic chunks from raw documents.
type Processor struct {
	cfg      domain.ChunkingConfig
	embedder driven.EmbeddingService
	category *domain.Category
	keywords []string
	now      func() time.Time
}

// Option configures the processor.
type Option func(*Processor)

// WithCategory tags every produced chunk with a documentation category.
func WithCategory(c domain.Category) Option {
	return func(p *Processor) {
		p.category = &c
	}
}

// WithKeywords tags every produced chunk with keywords (deduplicated).
func WithKeywords(keywords ...string) Option {
	return func(p *Processor) {
		p.keywords = keywords
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// New creates a processor after validating cfg.
func New(cfg domain.ChunkingConfig, embedder driven.EmbeddingService, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("chunker: %w", domain.ErrEmbeddingUnavailable)
	}

	p := &Processor{
		cfg:      cfg,
		embedder: embedder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Assemble produces the complete chunk set for doc.
//
// Sentence-level embeddings are used only to locate topic boundaries and
// are discarded; each persisted chunk carries a fresh embedding of its
// final concatenated content.
func (p *Processor) Assemble(ctx context.Context, doc domain.RawDocument) ([]domain.SemanticChunk, error) {
	sentences := segmenter.Split(doc.Content, p.cfg.MinSentenceLength)
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.Path, domain.ErrEmptyDocument)
	}

	groups, sims, err := p.groupSentences(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", doc.Path, err)
	}

	contents := make([]string, len(groups))
	for i, g := range groups {
		contents[i] = joinSentences(sentences[g.start : g.end+1])
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, contents, p.cfg.EmbeddingBatchSize)
	if err != nil {
		return nil, fmt.Errorf("embed chunks of %s: %w", doc.Path, err)
	}

	title := extractTitle(doc.Content)
	now := p.now().UTC()

	chunks := make([]domain.SemanticChunk, len(groups))
	for i, g := range groups {
		chunks[i] = domain.SemanticChunk{
			ID:          uuid.New().String(),
			SourceFile:  doc.Path,
			ChunkIndex:  i,
			TotalChunks: len(groups),
			SentenceRange: domain.SentenceRange{
				Start: g.start,
				End:   g.end,
			},
			Content:       contents[i],
			Embedding:     embeddings[i],
			AvgSimilarity: cohesion(sims, g),
			Metadata: domain.ChunkMetadata{
				SourceFile: doc.Path,
				Title:      title,
				Category:   p.category,
				Keywords:   domain.DedupKeywords(p.keywords),
				WordCount:  domain.CountWords(contents[i]),
				CharCount:  len(contents[i]),
				FileHash:   doc.ContentHash,
				CreatedAt:  now,
				UpdatedAt:  now,
			},
		}
	}

	return chunks, nil
}

// group is an inclusive sentence index range.
type group struct {
	start, end int
}

func (g group) size() int {
	return g.end - g.start + 1
}

// groupSentences embeds the sentences, derives the effective threshold and
// returns the final chunk ranges plus the pairwise similarity sequence.
func (p *Processor) groupSentences(
	ctx context.Context, sentences []domain.Sentence,
) ([]group, []float64, error) {
	if len(sentences) == 1 {
		return []group{{start: 0, end: 0}}, nil, nil
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts, p.cfg.EmbeddingBatchSize)
	if err != nil {
		return nil, nil, fmt.Errorf("embed sentences: %w", err)
	}

	sims, err := domain.PairwiseSimilarities(embeddings)
	if err != nil {
		return nil, nil, err
	}

	dynamic := domain.Percentile(sims, p.cfg.SimilarityPercentile)
	effective := p.cfg.Policy().Combine(dynamic, p.cfg.SimilarityThreshold)

	groups := boundaryGroups(sims, effective, len(sentences))
	groups = splitOversized(groups, sims, p.cfg.MaxChunkSentences)
	groups = mergeUndersized(groups, p.cfg.MinChunkSentences)

	return groups, sims, nil
}

// boundaryGroups cuts before sentence i+1 whenever sims[i] falls below the
// threshold. Boundary 0 is implicit.
func boundaryGroups(sims []float64, threshold float64, total int) []group {
	var groups []group
	start := 0
	for i, sim := range sims {
		if sim < threshold {
			groups = append(groups, group{start: start, end: i})
			start = i + 1
		}
	}
	groups = append(groups, group{start: start, end: total - 1})
	return groups
}

// splitOversized cuts any group larger than max at its weakest internal
// similarity, repeatedly until every group fits.
func splitOversized(groups []group, sims []float64, max int) []group {
	out := make([]group, 0, len(groups))
	for _, g := range groups {
		out = append(out, splitGroup(g, sims, max)...)
	}
	return out
}

func splitGroup(g group, sims []float64, max int) []group {
	if g.size() <= max {
		return []group{g}
	}

	// Weakest adjacent similarity strictly inside the group.
	weakest := g.start
	for i := g.start; i < g.end; i++ {
		if sims[i] < sims[weakest] {
			weakest = i
		}
	}

	left := group{start: g.start, end: weakest}
	right := group{start: weakest + 1, end: g.end}
	return append(splitGroup(left, sims, max), splitGroup(right, sims, max)...)
}

// mergeUndersized folds groups smaller than min into a neighbour: trailing
// remainders merge into the preceding group, a lone leading remainder
// merges forward.
func mergeUndersized(groups []group, min int) []group {
	if len(groups) <= 1 {
		return groups
	}

	out := make([]group, 0, len(groups))
	for _, g := range groups {
		if g.size() >= min || len(out) == 0 {
			out = append(out, g)
			continue
		}
		out[len(out)-1].end = g.end
	}

	// Leading remainder merges forward.
	if len(out) > 1 && out[0].size() < min {
		out[1].start = out[0].start
		out = out[1:]
	}

	return out
}

// cohesion is the mean of the intra-group pairwise similarities, or 1.0
// for a single-sentence group.
func cohesion(sims []float64, g group) float64 {
	if g.size() <= 1 || len(sims) == 0 {
		return 1.0
	}

	var sum float64
	for i := g.start; i < g.end; i++ {
		sum += sims[i]
	}
	return sum / float64(g.end-g.start)
}

func joinSentences(sentences []domain.Sentence) string {
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

var headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)

// extractTitle returns the first markdown heading, if any.
func extractTitle(content string) string {
	m := headingPattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
