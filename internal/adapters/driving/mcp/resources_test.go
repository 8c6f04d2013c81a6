package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semdex/internal/core/domain"
)

func seedStore(t *testing.T) *memory.ChunkStore {
	t.Helper()
	store := memory.NewChunkStore()
	chunks := []domain.SemanticChunk{
		{ID: "a-0", SourceFile: "docs/a.md", ChunkIndex: 0, TotalChunks: 2, Content: "first", Metadata: domain.ChunkMetadata{SourceFile: "docs/a.md", FileHash: "hash-a"}},
		{ID: "a-1", SourceFile: "docs/a.md", ChunkIndex: 1, TotalChunks: 2, Content: "second", Metadata: domain.ChunkMetadata{SourceFile: "docs/a.md", FileHash: "hash-a"}},
		{ID: "b-0", SourceFile: "docs/b.md", ChunkIndex: 0, TotalChunks: 1, Content: "third", Metadata: domain.ChunkMetadata{SourceFile: "docs/b.md", FileHash: "hash-b"}},
	}
	require.NoError(t, store.InsertChunks(context.Background(), chunks))
	return store
}

func readResource(t *testing.T, handler sdkmcp.ResourceHandler, uri string) string {
	t.Helper()
	result, err := handler(context.Background(), &sdkmcp.ReadResourceRequest{
		Params: &sdkmcp.ReadResourceParams{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, uri, result.Contents[0].URI)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	return result.Contents[0].Text
}

func TestHandleIndexResource(t *testing.T) {
	server, err := NewServer(Ports{Search: &stubSearch{}, Store: seedStore(t)})
	require.NoError(t, err)

	text := readResource(t, server.handleIndexResource, indexResourceURI)

	var summary indexSummary
	require.NoError(t, json.Unmarshal([]byte(text), &summary))
	assert.Equal(t, 2, summary.Documents)
	assert.Equal(t, int64(3), summary.TotalChunks)
}

func TestHandleDocumentsResource(t *testing.T) {
	server, err := NewServer(Ports{Search: &stubSearch{}, Store: seedStore(t)})
	require.NoError(t, err)

	text := readResource(t, server.handleDocumentsResource, documentsResourceURI)

	var entries []documentEntry
	require.NoError(t, json.Unmarshal([]byte(text), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "docs/a.md", entries[0].SourceFile)
	assert.Equal(t, "hash-a", entries[0].FileHash)
	assert.Equal(t, 2, entries[0].Chunks)
	assert.Equal(t, "docs/b.md", entries[1].SourceFile)
	assert.Equal(t, 1, entries[1].Chunks)
}

func TestHandleResource_UnknownURI(t *testing.T) {
	server, err := NewServer(Ports{Search: &stubSearch{}, Store: seedStore(t)})
	require.NoError(t, err)

	_, err = server.handleIndexResource(context.Background(), &sdkmcp.ReadResourceRequest{
		Params: &sdkmcp.ReadResourceParams{URI: "semdex://bogus"},
	})
	require.Error(t, err)
}
