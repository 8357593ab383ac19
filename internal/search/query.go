package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string   // User's search text
	Types []string // Document types to include (empty = all)

	// Filters
	Statuses     []string // Exact status values
	CategorySlug string   // Exact category slug
	TagSlugs     []string // Any of these tag slugs
	MinPrice     int64    // Minimum effective price (products only)
	MaxPrice     int64    // Maximum effective price (products only)

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "price", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	FacetFields   []string
	Highlight     bool
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{"type", "tags", "category_slug"},
		Highlight:     true,
	}
}

// Result represents search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitempty"`
}

// Hit is a single search result.
type Hit struct {
	ID           string            `json:"id"`
	Type         DocType           `json:"type"`
	Score        float64           `json:"score"`
	Name         string            `json:"name"`
	SKU          string            `json:"sku,omitempty"`
	Author       string            `json:"author,omitempty"`
	Status       string            `json:"status,omitempty"`
	CategorySlug string            `json:"category_slug,omitempty"`
	Price        int64             `json:"price,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts.
type Facets struct {
	Types      []FacetCount `json:"types,omitempty"`
	Tags       []FacetCount `json:"tags,omitempty"`
	Categories []FacetCount `json:"categories,omitempty"`
}

// FacetCount is one facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a query against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		for _, field := range params.FacetFields {
			searchRequest.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("author")
	}

	searchRequest.Fields = []string{
		"id", "type", "name", "sku", "author", "status", "category_slug", "price",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if sku, ok := hit.Fields["sku"].(string); ok {
			searchHit.SKU = sku
		}
		if a, ok := hit.Fields["author"].(string); ok {
			searchHit.Author = a
		}
		if st, ok := hit.Fields["status"].(string); ok {
			searchHit.Status = st
		}
		if c, ok := hit.Fields["category_slug"].(string); ok {
			searchHit.CategorySlug = c
		}
		if p, ok := hit.Fields["price"].(float64); ok {
			searchHit.Price = int64(p)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Name match carries the highest boost.
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		textQueries = append(textQueries, descMatch)

		// Exact SKU lookups land here too.
		skuTerm := bleve.NewTermQuery(params.Query)
		skuTerm.SetField("sku")
		skuTerm.SetBoost(5.0)
		textQueries = append(textQueries, skuTerm)

		// Fuzzy match on name for typo tolerance.
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		queries = append(queries, termDisjunction("type", params.Types))
	}

	if len(params.Statuses) > 0 {
		queries = append(queries, termDisjunction("status", params.Statuses))
	}

	if params.CategorySlug != "" {
		cq := bleve.NewTermQuery(params.CategorySlug)
		cq.SetField("category_slug")
		queries = append(queries, cq)
	}

	if len(params.TagSlugs) > 0 {
		queries = append(queries, termDisjunction("tags", params.TagSlugs))
	}

	if params.MinPrice > 0 || params.MaxPrice > 0 {
		minPrice := float64(params.MinPrice)
		maxPrice := float64(params.MaxPrice)
		if params.MaxPrice == 0 {
			maxPrice = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&minPrice, &maxPrice)
		rangeQuery.SetField("price")
		queries = append(queries, rangeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// termDisjunction builds an OR of exact term queries on one field.
func termDisjunction(field string, values []string) query.Query {
	termQueries := make([]query.Query, len(values))
	for i, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(field)
		termQueries[i] = tq
	}
	return bleve.NewDisjunctionQuery(termQueries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "price":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-price"})
		} else {
			req.SortBy([]string{"price"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance is the default.
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	facets := Facets{}

	if typeFacet, ok := result.Facets["type"]; ok {
		for _, term := range typeFacet.Terms.Terms() {
			facets.Types = append(facets.Types, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	if tagFacet, ok := result.Facets["tags"]; ok {
		for _, term := range tagFacet.Terms.Terms() {
			facets.Tags = append(facets.Tags, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	if categoryFacet, ok := result.Facets["category_slug"]; ok {
		for _, term := range categoryFacet.Terms.Terms() {
			facets.Categories = append(facets.Categories, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return facets
}
