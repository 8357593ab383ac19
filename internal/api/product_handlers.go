package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
)

func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createProduct",
		Method:        http.MethodPost,
		Path:          "/api/v1/products",
		Summary:       "Create product",
		Tags:          []string{"Products"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProduct",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}",
		Summary:     "Get product",
		Tags:        []string{"Products"},
	}, s.handleGetProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProductBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/slug/{slug}",
		Summary:     "Get product by slug",
		Tags:        []string{"Products"},
	}, s.handleGetProductBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProductBySKU",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/sku/{sku}",
		Summary:     "Get product by SKU",
		Tags:        []string{"Products"},
	}, s.handleGetProductBySKU)

	huma.Register(s.api, huma.Operation{
		OperationID: "listProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Lists products, optionally filtered by category, tag and status",
		Tags:        []string{"Products"},
	}, s.handleListProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProduct",
		Method:      http.MethodPatch,
		Path:        "/api/v1/products/{id}",
		Summary:     "Update product",
		Description: "Applies a partial update; price and stock have dedicated endpoints",
		Tags:        []string{"Products"},
	}, s.handleUpdateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "setProductPrice",
		Method:      http.MethodPut,
		Path:        "/api/v1/products/{id}/price",
		Summary:     "Set price",
		Description: "Changes the price of the product or one of its variants, recording the change",
		Tags:        []string{"Products"},
	}, s.handleSetProductPrice)

	huma.Register(s.api, huma.Operation{
		OperationID: "adjustProductStock",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/stock",
		Summary:     "Adjust stock",
		Description: "Applies a signed stock change to the product or one of its variants",
		Tags:        []string{"Products"},
	}, s.handleAdjustProductStock)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteProduct",
		Method:        http.MethodDelete,
		Path:          "/api/v1/products/{id}",
		Summary:       "Delete product",
		Tags:          []string{"Products"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteProduct)
}

// === DTOs ===

// ProductOutput wraps a single product for Huma.
type ProductOutput struct {
	Body domain.Product
}

// CreateProductInput wraps the create product request for Huma.
type CreateProductInput struct {
	Body service.CreateProductParams
}

// ProductIDInput identifies a product by ID.
type ProductIDInput struct {
	ID string `path:"id" doc:"Product ID"`
}

// ProductSlugInput identifies a product by slug.
type ProductSlugInput struct {
	Slug string `path:"slug" doc:"Product slug"`
}

// ProductSKUInput identifies a product by SKU.
type ProductSKUInput struct {
	SKU string `path:"sku" doc:"Product or variant SKU"`
}

// ListProductsInput contains filters for listing products.
type ListProductsInput struct {
	Category string `query:"category" doc:"Filter by category ID"`
	Tag      string `query:"tag" doc:"Filter by tag ID"`
	Status   string `query:"status" doc:"Filter by status" enum:"draft,active,out_of_stock,discontinued"`
}

// ListProductsOutput wraps the product list for Huma.
type ListProductsOutput struct {
	Body struct {
		Products []*domain.Product `json:"products" doc:"List of products"`
	}
}

// UpdateProductInput wraps a partial product update for Huma.
type UpdateProductInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body service.ProductPatch
}

// SetPriceInput wraps a price change for Huma.
type SetPriceInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body struct {
		SKU   string `json:"sku,omitempty" doc:"Variant SKU; empty targets the base product"`
		Price int64  `json:"price" doc:"New price in minor currency units"`
	}
}

// AdjustStockInput wraps a stock adjustment for Huma.
type AdjustStockInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body struct {
		SKU    string `json:"sku,omitempty" doc:"Variant SKU; empty targets the base product"`
		Change int    `json:"change" doc:"Signed stock delta"`
		Reason string `json:"reason,omitempty" doc:"Reason recorded in the inventory log"`
	}
}

// === Handlers ===

func (s *Server) handleCreateProduct(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
	product, err := s.services.Products.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleGetProduct(ctx context.Context, input *ProductIDInput) (*ProductOutput, error) {
	product, err := s.services.Products.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleGetProductBySlug(ctx context.Context, input *ProductSlugInput) (*ProductOutput, error) {
	product, err := s.services.Products.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleGetProductBySKU(ctx context.Context, input *ProductSKUInput) (*ProductOutput, error) {
	product, err := s.services.Products.GetBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleListProducts(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
	products, err := s.services.Products.List(ctx, input.Category, input.Tag, domain.ProductStatus(input.Status))
	if err != nil {
		return nil, err
	}
	out := &ListProductsOutput{}
	out.Body.Products = products
	return out, nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, input *UpdateProductInput) (*ProductOutput, error) {
	product, err := s.services.Products.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleSetProductPrice(ctx context.Context, input *SetPriceInput) (*ProductOutput, error) {
	product, err := s.services.Products.SetPrice(ctx, input.ID, input.Body.SKU, input.Body.Price)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleAdjustProductStock(ctx context.Context, input *AdjustStockInput) (*ProductOutput, error) {
	product, err := s.services.Products.AdjustStock(ctx, input.ID, input.Body.SKU, input.Body.Change, input.Body.Reason)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, input *ProductIDInput) (*struct{}, error) {
	if err := s.services.Products.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
