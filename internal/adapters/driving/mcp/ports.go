package mcp

import (
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
)

// Ports aggregates the services the MCP server depends on.
type Ports struct {
	// Search serves semantic queries against the index. Required.
	Search driving.SearchService

	// Store backs the index resources. Optional; when nil the
	// semdex:// resources are not registered.
	Store driven.ChunkStore
}

// Validate checks that required services are present.
func (p Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
