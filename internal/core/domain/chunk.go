package domain

import (
	"strings"
	"time"
	"unicode"
)

// Category classifies documentation following the Diátaxis quadrants.
type Category string

// Available categories.
const (
	CategoryTutorial    Category = "tutorial"
	CategoryHowTo       Category = "howto"
	CategoryReference   Category = "reference"
	CategoryExplanation Category = "explanation"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTutorial, CategoryHowTo, CategoryReference, CategoryExplanation:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a category name, case-insensitively.
// Returns ErrInvalidInput for unknown names.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidInput
	}
	return c, nil
}

// ChunkMetadata carries descriptive fields persisted alongside a chunk.
type ChunkMetadata struct {
	// SourceFile is the owning document's path.
	SourceFile string

	// Title is an optional human-readable title.
	Title string

	// Category is an optional documentation category.
	Category *Category

	// Keywords is a deduplicated set of tags.
	Keywords []string

	// WordCount is the number of words in the chunk content.
	WordCount int

	// CharCount is the number of characters in the chunk content.
	CharCount int

	// FileHash is the content hash of the source document at indexing time.
	// All chunks of one document snapshot share one FileHash.
	FileHash string

	// CreatedAt is when the chunk was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the chunk was last stored.
	UpdatedAt time.Time
}

// SemanticChunk is a contiguous run of sentences treated as one
// semantically coherent retrieval unit. Built transiently by the chunk
// assembler; owned by the persistent store once indexed.
type SemanticChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceFile references the owning document.
	SourceFile string

	// ChunkIndex is the ordinal position within the document,
	// 0 <= ChunkIndex < TotalChunks.
	ChunkIndex int

	// TotalChunks is the number of chunks produced for the document in the
	// same indexing pass. Shared by all sibling chunks.
	TotalChunks int

	// SentenceRange spans the inclusive sentence indices covered.
	SentenceRange SentenceRange

	// Content is the concatenated sentence text.
	Content string

	// Embedding is the vector computed from the chunk's final content.
	// It is independent of the transient per-sentence vectors used for
	// boundary detection.
	Embedding []float32

	// AvgSimilarity is the mean pairwise similarity of the sentences within
	// the chunk; a cohesion score. 1.0 for single-sentence chunks.
	AvgSimilarity float64

	// Metadata carries descriptive fields.
	Metadata ChunkMetadata
}

// SentenceRange is an inclusive range of sentence indices, Start <= End.
type SentenceRange struct {
	Start int
	End   int
}

// Len returns the number of sentences covered.
func (r SentenceRange) Len() int {
	return r.End - r.Start + 1
}

// CountWords counts whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

// DedupKeywords returns keywords with duplicates removed, preserving the
// first occurrence order. Comparison is case-insensitive.
func DedupKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(keywords))
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, kw)
	}
	return result
}
