package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates an out-of-range or inconsistent configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyQuery indicates a search was attempted with an empty query.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmptyDocument indicates segmentation produced zero sentences.
	ErrEmptyDocument = errors.New("document has no sentences")

	// ErrInvalidCursor indicates a pagination cursor could not be decoded.
	ErrInvalidCursor = errors.New("invalid pagination cursor")

	// Similarity Errors.

	// ErrDimensionMismatch indicates two vectors of different lengths were
	// compared. Vectors are never truncated or padded to fit.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrZeroVector indicates a similarity computation over a zero-magnitude
	// vector, for which cosine similarity is undefined.
	ErrZeroVector = errors.New("zero-magnitude vector")

	// ErrInvalidValue indicates a similarity computation produced NaN or an
	// infinite value.
	ErrInvalidValue = errors.New("similarity is not a finite number")

	// Dependency Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured or unreachable. Nothing in the engine works without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingParse indicates a stored embedding blob is malformed.
	ErrEmbeddingParse = errors.New("stored embedding is malformed")
)
