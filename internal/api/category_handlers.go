package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Create category",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Tags:        []string{"Categories"},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/slug/{slug}",
		Summary:     "Get category by slug",
		Tags:        []string{"Categories"},
	}, s.handleGetCategoryBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/tree",
		Summary:     "Get category tree",
		Description: "Returns active categories as a nested forest ordered by display order",
		Tags:        []string{"Categories"},
	}, s.handleCategoryTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategoryDescendants",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}/descendants",
		Summary:     "List category descendants",
		Tags:        []string{"Categories"},
	}, s.handleCategoryDescendants)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Update category",
		Description: "Applies a partial update; slug and hierarchy changes cascade to descendants",
		Tags:        []string{"Categories"},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCategory",
		Method:        http.MethodDelete,
		Path:          "/api/v1/categories/{id}",
		Summary:       "Delete category",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCategory)
}

// === DTOs ===

// CategoryOutput wraps a single category for Huma.
type CategoryOutput struct {
	Body domain.Category
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Body service.CreateCategoryParams
}

// CategoryIDInput identifies a category by ID.
type CategoryIDInput struct {
	ID string `path:"id" doc:"Category ID"`
}

// CategorySlugInput identifies a category by slug.
type CategorySlugInput struct {
	Slug string `path:"slug" doc:"Category slug"`
}

// ListCategoriesOutput wraps the flat category list for Huma.
type ListCategoriesOutput struct {
	Body struct {
		Categories []*domain.Category `json:"categories" doc:"List of categories"`
	}
}

// CategoryTreeOutput wraps the nested category forest for Huma.
type CategoryTreeOutput struct {
	Body struct {
		Tree []*domain.CategoryNode `json:"tree" doc:"Nested active categories"`
	}
}

// UpdateCategoryInput wraps a partial category update for Huma.
type UpdateCategoryInput struct {
	ID   string `path:"id" doc:"Category ID"`
	Body service.CategoryPatch
}

// === Handlers ===

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	category, err := s.services.Categories.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: *category}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *CategoryIDInput) (*CategoryOutput, error) {
	category, err := s.services.Categories.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: *category}, nil
}

func (s *Server) handleGetCategoryBySlug(ctx context.Context, input *CategorySlugInput) (*CategoryOutput, error) {
	category, err := s.services.Categories.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: *category}, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListCategoriesOutput{}
	out.Body.Categories = categories
	return out, nil
}

func (s *Server) handleCategoryTree(ctx context.Context, _ *struct{}) (*CategoryTreeOutput, error) {
	tree, err := s.services.Categories.Tree(ctx)
	if err != nil {
		return nil, err
	}
	out := &CategoryTreeOutput{}
	out.Body.Tree = tree
	return out, nil
}

func (s *Server) handleCategoryDescendants(ctx context.Context, input *CategoryIDInput) (*ListCategoriesOutput, error) {
	descendants, err := s.services.Categories.Descendants(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &ListCategoriesOutput{}
	out.Body.Categories = descendants
	return out, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	category, err := s.services.Categories.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: *category}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *CategoryIDInput) (*struct{}, error) {
	if err := s.services.Categories.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
