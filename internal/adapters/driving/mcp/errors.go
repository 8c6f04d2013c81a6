// Package mcp provides an MCP (Model Context Protocol) server adapter for
// semdex. It exposes semantic search over the local index to AI assistants.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
