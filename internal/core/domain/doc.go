// Package domain defines the core business entities for semdex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: A document supplied by a loader, consumed once per run
//   - Sentence: An ordered text span produced by segmentation
//   - SemanticChunk: A contiguous run of sentences stored as one retrieval unit
//   - ChunkingConfig: Validated parameters for chunk assembly
//   - Cursor: An opaque pagination position
//
// It also carries the pure numeric logic of the engine (cosine similarity,
// pairwise similarity sequences, percentile statistics), which depends on
// nothing but the standard library.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
