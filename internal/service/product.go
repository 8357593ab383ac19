package service

import (
	"context"
	"time"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/id"
	"github.com/storefrontapp/storefront-server/internal/search"
	"github.com/storefrontapp/storefront-server/internal/slug"
	"github.com/storefrontapp/storefront-server/internal/store"
)

// ProductService manages the sellable catalog. Every persist goes through
// Recalculate so derived fields (flags, stats, has_variants) never drift
// from their inputs, and every catalog-visible change is mirrored into the
// search index best-effort.
type ProductService struct {
	deps Deps
}

// NewProductService creates a new product service.
func NewProductService(deps Deps) *ProductService {
	return &ProductService{deps: deps}
}

// CreateProductParams is the caller-supplied draft for a new product.
type CreateProductParams struct {
	Name           string               `json:"name" validate:"required,min=1,max=200"`
	SKU            string               `json:"sku" validate:"required,max=64"`
	Description    string               `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category       string               `json:"category,omitempty"`
	Tags           []string             `json:"tags,omitempty"`
	ImageURLs      []string             `json:"image_urls,omitempty" validate:"dive,url"`
	Currency       string               `json:"currency" validate:"required,len=3"`
	BasePrice      int64                `json:"base_price" validate:"gte=0"`
	CompareAtPrice int64                `json:"compare_at_price,omitempty" validate:"gte=0"`
	Stock          int                  `json:"stock" validate:"gte=0"`
	Variants       []domain.Variant     `json:"variants,omitempty" validate:"dive"`
	Status         domain.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=draft active out_of_stock discontinued"`
}

// Create inserts a product. Category and tag references must exist; the slug
// is derived from the name and must be unique.
func (s *ProductService) Create(ctx context.Context, params CreateProductParams) (*domain.Product, error) {
	if err := s.deps.Validator.Validate(params); err != nil {
		return nil, err
	}

	p := &domain.Product{
		Name:           params.Name,
		Slug:           slug.Make(params.Name),
		SKU:            params.SKU,
		Description:    params.Description,
		Category:       params.Category,
		Tags:           params.Tags,
		ImageURLs:      params.ImageURLs,
		Currency:       params.Currency,
		BasePrice:      params.BasePrice,
		CompareAtPrice: params.CompareAtPrice,
		Stock:          params.Stock,
		Variants:       params.Variants,
		Status:         params.Status,
	}
	if p.Slug == "" {
		return nil, errors.RequiredField("slug")
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusDraft
	}
	if dup, ok := p.VariantSKUsUnique(); !ok {
		return nil, errors.Validationf("duplicate variant sku %q", dup)
	}

	if err := s.checkReferences(ctx, p.Category, p.Tags); err != nil {
		return nil, err
	}

	p.ID = id.MustGenerate(id.PrefixProduct)
	p.InitTimestamps()
	now := time.Now().UTC()
	if params.Stock > 0 {
		p.Stock = 0
		p.RecordInventoryChange(now, "", params.Stock, "initial stock")
	}
	for i := range p.Variants {
		if p.Variants[i].Stock > 0 {
			stock := p.Variants[i].Stock
			p.Variants[i].Stock = 0
			p.RecordInventoryChange(now, p.Variants[i].SKU, stock, "initial stock")
		}
	}
	p.Recalculate(now)

	if err := s.deps.Store.Products.Create(ctx, p.ID, p); err != nil {
		return nil, err
	}

	s.deps.bumpCategoryStats(ctx, p.Category, func(st *domain.CategoryStats) { st.ProductCount++ })
	for _, tagID := range p.Tags {
		s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.ProductCount++ })
	}
	s.index(ctx, p)
	s.deps.recordAudit(ctx, "product", p.ID, audit.ActionCreate, "")
	s.deps.logger().Info("product created", "product_id", p.ID, "sku", p.SKU)

	return p, nil
}

// checkReferences verifies that the category and every tag exist.
func (s *ProductService) checkReferences(ctx context.Context, category string, tags []string) error {
	if category != "" {
		if _, err := s.deps.Store.Categories.Get(ctx, category); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.InvalidReference("category")
			}
			return err
		}
	}
	for _, tagID := range tags {
		if _, err := s.deps.Store.Tags.Get(ctx, tagID); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.InvalidReference("tags")
			}
			return err
		}
	}
	return nil
}

// Get returns a product by ID.
func (s *ProductService) Get(ctx context.Context, productID string) (*domain.Product, error) {
	return s.deps.Store.Products.Get(ctx, productID)
}

// GetBySlug returns a product by its unique slug.
func (s *ProductService) GetBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	return s.deps.Store.Products.GetByIndex(ctx, "slug", productSlug)
}

// GetBySKU returns the product owning the given SKU, either as its base SKU
// or one of its variant SKUs.
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.deps.Store.Products.GetByIndex(ctx, "sku", sku)
}

// List returns products, optionally filtered by category, tag or status.
// Only one index can drive the scan; remaining filters apply in memory.
func (s *ProductService) List(ctx context.Context, category, tag string, status domain.ProductStatus) ([]*domain.Product, error) {
	seq := s.deps.Store.Products.List(ctx)
	switch {
	case category != "":
		seq = s.deps.Store.Products.ListByIndex(ctx, "category", category)
	case tag != "":
		seq = s.deps.Store.Products.ListByIndex(ctx, "tag", tag)
	case status != "":
		seq = s.deps.Store.Products.ListByIndex(ctx, "status", string(status))
	}
	return store.Collect(store.Filter(seq, func(p *domain.Product) bool {
		if category != "" && p.Category != category {
			return false
		}
		if tag != "" && !contains(p.Tags, tag) {
			return false
		}
		return status == "" || p.Status == status
	}))
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// ProductPatch is a partial update. Price and stock changes must go through
// SetPrice and AdjustStock so the append-only histories stay complete.
type ProductPatch struct {
	Name           *string               `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string               `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category       *string               `json:"category,omitempty"`
	Tags           *[]string             `json:"tags,omitempty"`
	ImageURLs      *[]string             `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	CompareAtPrice *int64                `json:"compare_at_price,omitempty" validate:"omitempty,gte=0"`
	Status         *domain.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=draft active out_of_stock discontinued"`
	IsFeatured     *bool                 `json:"is_featured,omitempty"`
	Promotion      *domain.Promotion     `json:"promotion,omitempty"`
}

// Update applies a partial update, adjusting category/tag counters when the
// references move and re-deriving the slug on a rename.
func (s *ProductService) Update(ctx context.Context, productID string, patch ProductPatch) (*domain.Product, error) {
	if err := s.deps.Validator.Validate(patch); err != nil {
		return nil, err
	}

	p, err := s.deps.Store.Products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	oldCategory := p.Category
	oldTags := p.Tags

	if patch.Name != nil {
		p.Name = *patch.Name
		p.Slug = slug.Make(*patch.Name)
		if p.Slug == "" {
			return nil, errors.RequiredField("slug")
		}
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.ImageURLs != nil {
		p.ImageURLs = *patch.ImageURLs
	}
	if patch.CompareAtPrice != nil {
		p.CompareAtPrice = *patch.CompareAtPrice
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsFeatured != nil {
		p.Flags.IsFeatured = *patch.IsFeatured
	}
	if patch.Promotion != nil {
		p.Promotion = patch.Promotion
	}

	if p.Category != oldCategory || patch.Tags != nil {
		if err := s.checkReferences(ctx, p.Category, p.Tags); err != nil {
			return nil, err
		}
	}

	p.Recalculate(time.Now().UTC())
	p.Touch()
	if err := s.deps.Store.Products.Update(ctx, productID, p); err != nil {
		return nil, err
	}

	if p.Category != oldCategory {
		s.deps.bumpCategoryStats(ctx, oldCategory, func(st *domain.CategoryStats) { st.ProductCount-- })
		s.deps.bumpCategoryStats(ctx, p.Category, func(st *domain.CategoryStats) { st.ProductCount++ })
	}
	if patch.Tags != nil {
		for _, tagID := range removedFrom(oldTags, p.Tags) {
			s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.ProductCount-- })
		}
		for _, tagID := range removedFrom(p.Tags, oldTags) {
			s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.ProductCount++ })
		}
	}

	s.index(ctx, p)
	s.deps.recordAudit(ctx, "product", productID, audit.ActionUpdate, "")
	return p, nil
}

// removedFrom returns the elements of a that are absent from b.
func removedFrom(a, b []string) []string {
	var out []string
	for _, v := range a {
		if !contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

// SetPrice changes the base price, or a variant's price when sku is given,
// recording the change in the price history.
func (s *ProductService) SetPrice(ctx context.Context, productID, sku string, newPrice int64) (*domain.Product, error) {
	if newPrice < 0 {
		return nil, errors.Validation("price must not be negative")
	}

	p, err := s.deps.Store.Products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if sku != "" && p.Variant(sku) == nil {
		return nil, errors.InvalidReference("sku")
	}

	p.RecordPriceChange(time.Now().UTC(), sku, newPrice)
	p.Recalculate(time.Now().UTC())
	p.Touch()
	if err := s.deps.Store.Products.Update(ctx, productID, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	s.deps.recordAudit(ctx, "product", productID, audit.ActionUpdate, "")
	return p, nil
}

// AdjustStock applies a stock movement to the base product or a variant,
// recording it in the inventory log. A movement that would drive stock
// negative is rejected.
func (s *ProductService) AdjustStock(ctx context.Context, productID, sku string, change int, reason string) (*domain.Product, error) {
	p, err := s.deps.Store.Products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	current := p.Stock
	if sku != "" {
		v := p.Variant(sku)
		if v == nil {
			return nil, errors.InvalidReference("sku")
		}
		current = v.Stock
	}
	if current+change < 0 {
		return nil, errors.Conflictf("stock cannot go below zero (have %d, change %d)", current, change)
	}

	p.RecordInventoryChange(time.Now().UTC(), sku, change, reason)
	p.Recalculate(time.Now().UTC())
	p.Touch()
	if err := s.deps.Store.Products.Update(ctx, productID, p); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "product", productID, audit.ActionUpdate, "")
	return p, nil
}

// Delete removes a product, decrementing the counters its references held
// and dropping it from the search index.
func (s *ProductService) Delete(ctx context.Context, productID string) error {
	p, err := s.deps.Store.Products.Get(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.deps.Store.Products.Delete(ctx, productID); err != nil {
		return err
	}

	s.deps.bumpCategoryStats(ctx, p.Category, func(st *domain.CategoryStats) { st.ProductCount-- })
	for _, tagID := range p.Tags {
		s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.ProductCount-- })
	}
	if s.deps.Search != nil {
		if err := s.deps.Search.DeleteDocument(productID); err != nil {
			s.deps.logger().Warn("search delete failed", "product_id", productID, "error", err)
		}
	}
	s.deps.recordAudit(ctx, "product", productID, audit.ActionDelete, "")
	return nil
}

// Reindex pushes every product into the search index in one batch.
func (s *ProductService) Reindex(ctx context.Context) error {
	if s.deps.Search == nil {
		return nil
	}
	var docs []*search.Document
	for p, err := range s.deps.Store.Products.List(ctx) {
		if err != nil {
			return err
		}
		docs = append(docs, search.ProductDocument(p, s.categorySlug(ctx, p.Category), s.tagSlugs(ctx, p.Tags)))
	}
	return s.deps.Search.IndexDocuments(docs)
}

// index mirrors the product into the search index best-effort.
func (s *ProductService) index(ctx context.Context, p *domain.Product) {
	if s.deps.Search == nil {
		return
	}
	doc := search.ProductDocument(p, s.categorySlug(ctx, p.Category), s.tagSlugs(ctx, p.Tags))
	if err := s.deps.Search.IndexDocument(doc); err != nil {
		s.deps.logger().Warn("search index failed", "product_id", p.ID, "error", err)
	}
}

func (s *ProductService) categorySlug(ctx context.Context, categoryID string) string {
	if categoryID == "" {
		return ""
	}
	cat, err := s.deps.Store.Categories.Get(ctx, categoryID)
	if err != nil {
		return ""
	}
	return cat.Slug
}

func (s *ProductService) tagSlugs(ctx context.Context, tagIDs []string) []string {
	slugs := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		tag, err := s.deps.Store.Tags.Get(ctx, tagID)
		if err != nil {
			continue
		}
		slugs = append(slugs, tag.Slug)
	}
	return slugs
}
