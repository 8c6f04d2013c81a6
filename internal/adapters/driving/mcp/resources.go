package mcp

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/semdex/internal/core/ports/driven"
)

// Resource URIs exposed by the server.
const (
	indexResourceURI     = "semdex://index"
	documentsResourceURI = "semdex://documents"
)

// indexSummary is the payload of the semdex://index resource.
type indexSummary struct {
	Documents   int   `json:"documents"`
	TotalChunks int64 `json:"total_chunks"`
}

// documentEntry is one row in the semdex://documents resource.
type documentEntry struct {
	SourceFile string `json:"source_file"`
	FileHash   string `json:"file_hash"`
	Chunks     int    `json:"chunks"`
}

func (s *Server) registerResources() {
	if s.ports.Store == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         indexResourceURI,
		Name:        "Index summary",
		Description: "Document and chunk counts for the local semantic index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResource(&mcp.Resource{
		URI:         documentsResourceURI,
		Name:        "Indexed documents",
		Description: "Every indexed document with its content hash and chunk count",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

func (s *Server) handleIndexResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != indexResourceURI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	hashes, err := s.ports.Store.FileHashes(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.ports.Store.CountChunks(ctx)
	if err != nil {
		return nil, err
	}

	return jsonResource(req.Params.URI, indexSummary{
		Documents:   len(hashes),
		TotalChunks: total,
	})
}

func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != documentsResourceURI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunks, err := s.ports.Store.ListChunks(ctx, driven.ChunkFilter{})
	if err != nil {
		return nil, err
	}

	byFile := make(map[string]*documentEntry)
	for _, chunk := range chunks {
		entry, ok := byFile[chunk.SourceFile]
		if !ok {
			entry = &documentEntry{
				SourceFile: chunk.SourceFile,
				FileHash:   chunk.Metadata.FileHash,
			}
			byFile[chunk.SourceFile] = entry
		}
		entry.Chunks++
	}

	entries := make([]documentEntry, 0, len(byFile))
	for _, entry := range byFile {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SourceFile < entries[j].SourceFile
	})

	return jsonResource(req.Params.URI, entries)
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
