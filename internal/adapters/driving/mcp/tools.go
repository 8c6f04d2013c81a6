package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// SearchInput is the input schema for the semantic_search tool.
type SearchInput struct {
	Query         string  `json:"query" jsonschema:"the natural language search query"`
	Limit         int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10, max 100)"`
	Category      string  `json:"category,omitempty" jsonschema:"restrict results to one category: tutorial, howto, reference or explanation"`
	MinSimilarity float64 `json:"min_similarity,omitempty" jsonschema:"discard results scoring below this cosine similarity, in [0, 1]"`
}

// SearchResultItem is a single hit in the semantic_search output.
type SearchResultItem struct {
	ChunkID    string  `json:"chunk_id"`
	SourceFile string  `json:"source_file"`
	Title      string  `json:"title,omitempty"`
	Category   string  `json:"category,omitempty"`
	Similarity float64 `json:"similarity"`
	Snippet    string  `json:"snippet,omitempty"`
	Content    string  `json:"content"`
}

// SearchOutput is the output schema for the semantic_search tool.
type SearchOutput struct {
	Results []SearchResultItem `json:"results"`
	Count   int                `json:"count"`
	Total   int                `json:"total"`
	HasMore bool               `json:"has_more"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Search locally indexed documentation by meaning. Returns the most semantically similar chunks for a natural language query.",
	}, s.handleSearch)
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		MaxResults:      input.Limit,
		MinSimilarity:   input.MinSimilarity,
		IncludeSnippets: true,
	}
	if input.Category != "" {
		category, err := domain.ParseCategory(input.Category)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		opts.Category = &category
	}

	page, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultItem, 0, len(page.Results)),
		Count:   len(page.Results),
		Total:   page.TotalResults,
		HasMore: page.HasMore,
	}
	for _, result := range page.Results {
		item := SearchResultItem{
			ChunkID:    result.ID,
			SourceFile: result.SourceFile,
			Title:      result.Title,
			Similarity: result.Similarity,
			Snippet:    result.Snippet,
			Content:    result.Content,
		}
		if result.Category != nil {
			item.Category = string(*result.Category)
		}
		output.Results = append(output.Results, item)
	}

	return nil, output, nil
}
