package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)

	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestNewIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexDocument(t *testing.T) {
	index := setupTestIndex(t)

	doc := &Document{
		ID:     "prd_1",
		Type:   DocTypeProduct,
		Name:   "Wireless Mouse",
		SKU:    "WM-100",
		Status: "active",
	}
	require.NoError(t, index.IndexDocument(doc))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexDocuments_Batch(t *testing.T) {
	index := setupTestIndex(t)

	docs := []*Document{
		{ID: "prd_1", Type: DocTypeProduct, Name: "Mouse", Status: "active"},
		{ID: "prd_2", Type: DocTypeProduct, Name: "Keyboard", Status: "active"},
		{ID: "pst_1", Type: DocTypePost, Name: "Desk setup guide", Status: "published"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_DeleteDocument(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocument(&Document{
		ID: "prd_1", Type: DocTypeProduct, Name: "Mouse", Status: "active",
	}))
	require.NoError(t, index.DeleteDocument("prd_1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Search_Basic(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	docs := []*Document{
		{ID: "prd_1", Type: DocTypeProduct, Name: "Wireless Mouse", Status: "active"},
		{ID: "prd_2", Type: DocTypeProduct, Name: "Wireless Keyboard", Status: "active"},
		{ID: "prd_3", Type: DocTypeProduct, Name: "USB Hub", Status: "active"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	result, err := index.Search(ctx, Params{Query: "wireless", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
	assert.Len(t, result.Hits, 2)
}

func TestIndex_Search_ByType(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	docs := []*Document{
		{ID: "prd_1", Type: DocTypeProduct, Name: "Standing Desk", Status: "active"},
		{ID: "pst_1", Type: DocTypePost, Name: "Standing desk review", Status: "published"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	result, err := index.Search(ctx, Params{
		Types: []string{string(DocTypeProduct)},
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "prd_1", result.Hits[0].ID)
}

func TestIndex_Search_SKUExactMatch(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexDocument(&Document{
		ID: "prd_1", Type: DocTypeProduct, Name: "Shirt", SKU: "SHIRT-1-M", Status: "active",
	}))

	result, err := index.Search(ctx, Params{Query: "SHIRT-1-M", Limit: 10})
	require.NoError(t, err)
	require.NotZero(t, result.Total)
	assert.Equal(t, "prd_1", result.Hits[0].ID)
}

func TestIndex_Search_TagAndPriceFilters(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	docs := []*Document{
		{ID: "prd_1", Type: DocTypeProduct, Name: "Budget Mouse", Price: 1500, Tags: []string{"peripherals"}, Status: "active"},
		{ID: "prd_2", Type: DocTypeProduct, Name: "Gaming Mouse", Price: 9000, Tags: []string{"peripherals", "gaming"}, Status: "active"},
		{ID: "prd_3", Type: DocTypeProduct, Name: "Gaming Chair", Price: 25000, Tags: []string{"gaming"}, Status: "active"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	result, err := index.Search(ctx, Params{
		TagSlugs: []string{"gaming"},
		MaxPrice: 10000,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "prd_2", result.Hits[0].ID)
}

func TestIndex_Search_Facets(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	docs := []*Document{
		{ID: "prd_1", Type: DocTypeProduct, Name: "Mouse", Status: "active"},
		{ID: "prd_2", Type: DocTypeProduct, Name: "Keyboard", Status: "active"},
		{ID: "pst_1", Type: DocTypePost, Name: "Peripherals roundup", Status: "published"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	result, err := index.Search(ctx, Params{
		Limit:         10,
		IncludeFacets: true,
		FacetFields:   []string{"type"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Facets.Types)

	counts := map[string]int{}
	for _, fc := range result.Facets.Types {
		counts[fc.Value] = fc.Count
	}
	assert.Equal(t, 2, counts["product"])
	assert.Equal(t, 1, counts["post"])
}

func TestIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocument(&Document{
		ID: "prd_1", Type: DocTypeProduct, Name: "Mouse", Status: "active",
	}))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestProductDocument(t *testing.T) {
	now := time.Now()
	p := &domain.Product{
		Base:      domain.Base{ID: "prd_1", CreatedAt: now, UpdatedAt: now},
		Name:      "Shirt",
		SKU:       "SHIRT-1",
		BasePrice: 2500,
		Status:    domain.ProductStatusActive,
	}

	doc := ProductDocument(p, "apparel", []string{"cotton"})
	assert.Equal(t, "prd_1", doc.ID)
	assert.Equal(t, DocTypeProduct, doc.Type)
	assert.Equal(t, int64(2500), doc.Price)
	assert.Equal(t, "apparel", doc.CategorySlug)
	assert.Equal(t, []string{"cotton"}, doc.Tags)
}

func TestPostDocument(t *testing.T) {
	now := time.Now()
	p := &domain.Post{
		Base:    domain.Base{ID: "pst_1", CreatedAt: now, UpdatedAt: now},
		Title:   "Desk setup guide",
		Excerpt: "How to build a desk…",
		Status:  domain.PostStatusPublished,
	}

	doc := PostDocument(p, "Ada", "guides", nil)
	assert.Equal(t, "pst_1", doc.ID)
	assert.Equal(t, DocTypePost, doc.Type)
	assert.Equal(t, "Desk setup guide", doc.Name)
	assert.Equal(t, "Ada", doc.Author)
}
