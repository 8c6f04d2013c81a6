package domain

import "fmt"

// Search option bounds.
const (
	// DefaultMaxResults is used when SearchOptions.MaxResults is zero.
	DefaultMaxResults = 10

	// MaxResultsLimit caps SearchOptions.MaxResults.
	MaxResultsLimit = 100
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// MaxResults is the page size, in [1, MaxResultsLimit].
	// Zero defaults to DefaultMaxResults.
	MaxResults int

	// MinSimilarity discards candidates scoring below it, in [0, 1].
	MinSimilarity float64

	// Category restricts candidates to one documentation category.
	Category *Category

	// Offset is the number of ranked results to skip. Mutually exclusive
	// with Cursor.
	Offset int

	// Cursor resumes strictly after a previously returned position.
	// Mutually exclusive with Offset.
	Cursor string

	// IncludeSnippets enables query-term snippet extraction per result.
	IncludeSnippets bool
}

// Validate checks option ranges. Returns ErrInvalidConfig on violation.
func (o SearchOptions) Validate() error {
	if o.MaxResults < 0 || o.MaxResults > MaxResultsLimit {
		return fmt.Errorf("%w: max results %d outside [0, %d]", ErrInvalidConfig, o.MaxResults, MaxResultsLimit)
	}
	if o.MinSimilarity < 0 || o.MinSimilarity > 1 {
		return fmt.Errorf("%w: min similarity %v outside [0, 1]", ErrInvalidConfig, o.MinSimilarity)
	}
	if o.Offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidConfig, o.Offset)
	}
	if o.Offset > 0 && o.Cursor != "" {
		return fmt.Errorf("%w: offset and cursor are mutually exclusive", ErrInvalidConfig)
	}
	if o.Category != nil && !o.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidConfig, *o.Category)
	}
	return nil
}

// Limit returns the effective page size.
func (o SearchOptions) Limit() int {
	if o.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return o.MaxResults
}

// SearchResult is a single ranked hit. Presentation fields are
// denormalised from the chunk so rendering needs no second lookup.
type SearchResult struct {
	// ID is the matched chunk's ID.
	ID string

	// SourceFile is the owning document path.
	SourceFile string

	// Title is the chunk title, if any.
	Title string

	// Category is the chunk category, if any.
	Category *Category

	// Content is the chunk text.
	Content string

	// Snippet is a short extract around matched query terms.
	// Only populated when SearchOptions.IncludeSnippets is set.
	Snippet string

	// Similarity is the query-to-chunk cosine score.
	Similarity float64

	// AvgSimilarity is the chunk's internal cohesion score.
	AvgSimilarity float64

	// SentenceRange locates the chunk within its document's segmentation.
	SentenceRange SentenceRange
}

// SearchPage is one page of ranked results plus pagination state.
type SearchPage struct {
	// Query is the original query text.
	Query string

	// Results holds the page's hits in descending similarity order.
	Results []SearchResult

	// TotalResults counts all hits passing the similarity filter, before
	// pagination.
	TotalResults int

	// Offset echoes the request offset in offset mode.
	Offset int

	// Limit is the effective page size.
	Limit int

	// NextCursor resumes after the last result on this page. Empty when
	// HasMore is false.
	NextCursor string

	// HasMore indicates further results exist beyond this page.
	HasMore bool
}
