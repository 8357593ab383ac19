package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search",
		Description: "Full-text search over products and posts with filters and facets",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildSearchIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/rebuild",
		Summary:     "Rebuild search index",
		Description: "Drops and re-creates the index, then reindexes every product and post",
		Tags:        []string{"Search"},
	}, s.handleRebuildSearchIndex)
}

// === DTOs ===

// SearchInput contains the query and its filters.
type SearchInput struct {
	Query     string `query:"q" doc:"Search text"`
	Types     string `query:"types" doc:"Comma-separated document types (product, post)"`
	Status    string `query:"status" doc:"Comma-separated status filter"`
	Category  string `query:"category" doc:"Category slug filter"`
	Tags      string `query:"tags" doc:"Comma-separated tag slug filter"`
	MinPrice  int64  `query:"min_price" doc:"Minimum price in minor units (products only)"`
	MaxPrice  int64  `query:"max_price" doc:"Maximum price in minor units (products only)"`
	Limit     int    `query:"limit" doc:"Page size" minimum:"1" maximum:"100"`
	Offset    int    `query:"offset" doc:"Result offset" minimum:"0"`
	SortBy    string `query:"sort_by" doc:"Sort field" enum:"relevance,name,price,recent"`
	SortOrder string `query:"sort_order" doc:"Sort direction" enum:"asc,desc"`
	Facets    bool   `query:"facets" doc:"Include facet counts"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body search.Result
}

// RebuildOutput reports the document count after a rebuild.
type RebuildOutput struct {
	Body struct {
		IndexedDocuments uint64 `json:"indexed_documents" doc:"Documents in the index after the rebuild"`
	}
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.search == nil {
		return nil, errors.Unavailable("search is not configured")
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.Types = splitCSV(input.Types)
	params.Statuses = splitCSV(input.Status)
	params.CategorySlug = input.Category
	params.TagSlugs = splitCSV(input.Tags)
	params.MinPrice = input.MinPrice
	params.MaxPrice = input.MaxPrice
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}
	params.IncludeFacets = input.Facets

	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleRebuildSearchIndex(ctx context.Context, _ *struct{}) (*RebuildOutput, error) {
	if s.search == nil {
		return nil, errors.Unavailable("search is not configured")
	}
	if err := s.search.Rebuild(); err != nil {
		return nil, err
	}

	if err := s.services.Products.Reindex(ctx); err != nil {
		return nil, err
	}
	if err := s.services.Posts.Reindex(ctx); err != nil {
		return nil, err
	}

	count, err := s.search.DocumentCount()
	if err != nil {
		return nil, err
	}
	out := &RebuildOutput{}
	out.Body.IndexedDocuments = count
	return out, nil
}
