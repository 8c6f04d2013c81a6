// Package memory provides an in-memory chunk store used by tests and
// dry-run indexing.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore. Chunks
// are held per source file so per-document replacement stays atomic under
// the store mutex.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.SemanticChunk // keyed by source file
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string][]domain.SemanticChunk),
	}
}

// InsertChunks stores the chunks of a newly indexed document.
func (s *ChunkStore) InsertChunks(_ context.Context, chunks []domain.SemanticChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.SourceFile] = append(s.chunks[chunk.SourceFile], chunk)
	}
	return nil
}

// ReplaceChunks swaps a document's chunk set in one step.
func (s *ChunkStore) ReplaceChunks(_ context.Context, sourceFile string, chunks []domain.SemanticChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(chunks) == 0 {
		delete(s.chunks, sourceFile)
		return nil
	}
	s.chunks[sourceFile] = append([]domain.SemanticChunk(nil), chunks...)
	return nil
}

// DeleteChunks removes all chunks for sourceFile.
func (s *ChunkStore) DeleteChunks(_ context.Context, sourceFile string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := int64(len(s.chunks[sourceFile]))
	delete(s.chunks, sourceFile)
	return deleted, nil
}

// ListChunks returns chunks matching the filter, ordered by source file
// and chunk index.
func (s *ChunkStore) ListChunks(_ context.Context, filter driven.ChunkFilter) ([]domain.SemanticChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SemanticChunk
	for sourceFile, chunks := range s.chunks {
		if filter.SourceFile != "" && sourceFile != filter.SourceFile {
			continue
		}
		for _, chunk := range chunks {
			if filter.Category != nil {
				if chunk.Metadata.Category == nil || *chunk.Metadata.Category != *filter.Category {
					continue
				}
			}
			result = append(result, chunk)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SourceFile != result[j].SourceFile {
			return result[i].SourceFile < result[j].SourceFile
		}
		return result[i].ChunkIndex < result[j].ChunkIndex
	})

	return result, nil
}

// FileHashes returns the recorded content hash per source file.
func (s *ChunkStore) FileHashes(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := make(map[string]string, len(s.chunks))
	for sourceFile, chunks := range s.chunks {
		if len(chunks) > 0 {
			hashes[sourceFile] = chunks[0].Metadata.FileHash
		}
	}
	return hashes, nil
}

// CountChunks returns the total number of stored chunks.
func (s *ChunkStore) CountChunks(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, chunks := range s.chunks {
		count += int64(len(chunks))
	}
	return count, nil
}

// Close releases resources.
func (s *ChunkStore) Close() error {
	return nil
}
