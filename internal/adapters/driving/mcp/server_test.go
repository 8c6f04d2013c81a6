package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// stubSearch returns a canned page or error.
type stubSearch struct {
	page     *domain.SearchPage
	err      error
	lastOpts domain.SearchOptions
}

func (s *stubSearch) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchPage, error) {
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	if s.page != nil {
		return s.page, nil
	}
	return &domain.SearchPage{Query: query, Limit: opts.Limit()}, nil
}

func TestNewServer_RequiresSearchService(t *testing.T) {
	_, err := NewServer(Ports{})
	require.ErrorIs(t, err, ErrMissingSearchService)
}

func TestNewServer_StoreIsOptional(t *testing.T) {
	server, err := NewServer(Ports{Search: &stubSearch{}})
	require.NoError(t, err)
	assert.NotNil(t, server)
}
