package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
)

func TestProductService_Create(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	cat := mustCreateCategory(t, deps, "Electronics", "")
	tag := mustCreateTag(t, deps, "Sale")

	p := mustCreateProduct(t, deps, CreateProductParams{
		Name:      "Wireless Mouse",
		SKU:       "WM-100",
		Category:  cat.ID,
		Tags:      []string{tag.ID},
		BasePrice: 2999,
		Stock:     10,
	})

	assert.Equal(t, "wireless-mouse", p.Slug)
	assert.Equal(t, 10, p.Stock)
	require.Len(t, p.InventoryLog, 1)
	assert.Equal(t, 10, p.InventoryLog[0].Change)

	// Counters on the referenced category and tag moved.
	gotCat, err := NewCategoryService(deps).Get(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotCat.Stats.ProductCount)

	gotTag, err := NewTagService(deps).Get(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotTag.Stats.ProductCount)
	assert.Equal(t, 1, gotTag.Stats.TotalUsage)
}

func TestProductService_Create_UnknownCategory(t *testing.T) {
	deps := newTestDeps(t)

	_, err := NewProductService(deps).Create(context.Background(), CreateProductParams{
		Name:     "Wireless Mouse",
		SKU:      "WM-100",
		Currency: "USD",
		Category: "cat-missing",
	})
	require.Error(t, err)

	var domErr *errors.Error
	require.ErrorAs(t, err, &domErr)
	require.Len(t, domErr.Fields(), 1)
	assert.Equal(t, "category", domErr.Fields()[0].Field)
	assert.Equal(t, errors.KindInvalidReference, domErr.Fields()[0].Kind)
}

func TestProductService_Create_DuplicateVariantSKU(t *testing.T) {
	deps := newTestDeps(t)

	_, err := NewProductService(deps).Create(context.Background(), CreateProductParams{
		Name:     "T-Shirt",
		SKU:      "TS-1",
		Currency: "USD",
		Variants: []domain.Variant{
			{SKU: "TS-1-S", Name: "Small", Price: 1999, IsActive: true},
			{SKU: "TS-1-S", Name: "Small Again", Price: 1999, IsActive: true},
		},
	})
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestProductService_Update_MovesCounters(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewProductService(deps)
	ctx := context.Background()

	catA := mustCreateCategory(t, deps, "Electronics", "")
	catB := mustCreateCategory(t, deps, "Accessories", "")
	p := mustCreateProduct(t, deps, CreateProductParams{
		Name:     "Wireless Mouse",
		SKU:      "WM-100",
		Category: catA.ID,
	})

	_, err := svc.Update(ctx, p.ID, ProductPatch{Category: &catB.ID})
	require.NoError(t, err)

	gotA, err := NewCategoryService(deps).Get(ctx, catA.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotA.Stats.ProductCount)

	gotB, err := NewCategoryService(deps).Get(ctx, catB.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotB.Stats.ProductCount)
}

func TestProductService_SetPrice_RecordsHistory(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewProductService(deps)
	ctx := context.Background()

	p := mustCreateProduct(t, deps, CreateProductParams{
		Name:      "Wireless Mouse",
		SKU:       "WM-100",
		BasePrice: 2999,
	})

	updated, err := svc.SetPrice(ctx, p.ID, "", 2499)
	require.NoError(t, err)
	assert.Equal(t, int64(2499), updated.BasePrice)
	require.Len(t, updated.PriceHistory, 1)
	assert.Equal(t, int64(2999), updated.PriceHistory[0].OldPrice)
	assert.Equal(t, int64(2499), updated.PriceHistory[0].NewPrice)
}

func TestProductService_AdjustStock(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewProductService(deps)
	ctx := context.Background()

	p := mustCreateProduct(t, deps, CreateProductParams{
		Name:  "Wireless Mouse",
		SKU:   "WM-100",
		Stock: 5,
	})

	updated, err := svc.AdjustStock(ctx, p.ID, "", -3, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Stock)

	_, err = svc.AdjustStock(ctx, p.ID, "", -10, "oversell")
	require.ErrorIs(t, err, errors.ErrConflict)
}

func TestProductService_AdjustStock_UnknownVariant(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewProductService(deps)

	p := mustCreateProduct(t, deps, CreateProductParams{Name: "T-Shirt", SKU: "TS-1"})

	_, err := svc.AdjustStock(context.Background(), p.ID, "TS-1-XL", 5, "restock")
	require.Error(t, err)

	var domErr *errors.Error
	require.ErrorAs(t, err, &domErr)
	require.Len(t, domErr.Fields(), 1)
	assert.Equal(t, "sku", domErr.Fields()[0].Field)
}

func TestProductService_List_ByStatus(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewProductService(deps)
	ctx := context.Background()

	mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})
	mustCreateProduct(t, deps, CreateProductParams{Name: "Keyboard", SKU: "K-1", Status: domain.ProductStatusDraft})

	active, err := svc.List(ctx, "", "", domain.ProductStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "mouse", active[0].Slug)

	all, err := svc.List(ctx, "", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductService_Delete_UnwindsCounters(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewProductService(deps)
	ctx := context.Background()

	cat := mustCreateCategory(t, deps, "Electronics", "")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1", Category: cat.ID})

	require.NoError(t, svc.Delete(ctx, p.ID))

	gotCat, err := NewCategoryService(deps).Get(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotCat.Stats.ProductCount)

	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, errors.ErrNotFound)
}
