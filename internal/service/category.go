package service

import (
	"context"
	"slices"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/id"
	"github.com/storefrontapp/storefront-server/internal/slug"
	"github.com/storefrontapp/storefront-server/internal/store"
)

// CategoryService maintains the catalog hierarchy. Ancestors, level and path
// are materialized on every write, and moves or renames cascade eagerly to
// every descendant so the tree never serves stale paths.
type CategoryService struct {
	deps Deps
}

// NewCategoryService creates a new category service.
func NewCategoryService(deps Deps) *CategoryService {
	return &CategoryService{deps: deps}
}

// CreateCategoryParams is the caller-supplied draft for a new category.
type CreateCategoryParams struct {
	Name         string `json:"name" validate:"required,min=1,max=80"`
	Description  string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Parent       string `json:"parent,omitempty"`
	DisplayOrder int    `json:"display_order,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// Create inserts a category. The slug is derived from the name; a colliding
// slug fails with a duplicate error rather than silently disambiguating.
func (s *CategoryService) Create(ctx context.Context, params CreateCategoryParams) (*domain.Category, error) {
	if err := s.deps.Validator.Validate(params); err != nil {
		return nil, err
	}

	cat := &domain.Category{
		Name:         params.Name,
		Slug:         slug.Make(params.Name),
		Description:  params.Description,
		Parent:       params.Parent,
		DisplayOrder: params.DisplayOrder,
		IsActive:     true,
	}
	if params.IsActive != nil {
		cat.IsActive = *params.IsActive
	}
	if cat.Slug == "" {
		return nil, errors.RequiredField("slug")
	}
	cat.ID = id.MustGenerate(id.PrefixCategory)
	cat.InitTimestamps()

	parent, err := s.resolveParent(ctx, params.Parent)
	if err != nil {
		return nil, err
	}
	cat.DeriveFromParent(parent)

	if err := s.deps.Store.Categories.Create(ctx, cat.ID, cat); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "category", cat.ID, audit.ActionCreate, "")
	s.deps.logger().Info("category created", "category_id", cat.ID, "path", cat.Path)

	return cat, nil
}

// resolveParent fetches the parent category, mapping a missing parent to an
// invalid_reference validation error. A nil return with nil error means root.
func (s *CategoryService) resolveParent(ctx context.Context, parentID string) (*domain.Category, error) {
	if parentID == "" {
		return nil, nil
	}
	parent, err := s.deps.Store.Categories.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("parent")
		}
		return nil, err
	}
	return parent, nil
}

// Get returns a category by ID.
func (s *CategoryService) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.deps.Store.Categories.Get(ctx, categoryID)
}

// GetBySlug returns a category by its unique slug.
func (s *CategoryService) GetBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	return s.deps.Store.Categories.GetByIndex(ctx, "slug", categorySlug)
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return store.Collect(s.deps.Store.Categories.List(ctx))
}

// CategoryPatch is a partial update. Setting Parent to the empty string via
// MoveToRoot makes the category a root.
type CategoryPatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Parent       *string `json:"parent,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// Update applies a partial update. A name change re-derives the slug; a slug
// or parent change recomputes ancestors/level/path and cascades the new path
// to every descendant, deepest last, so each child derives from an
// already-updated parent.
func (s *CategoryService) Update(ctx context.Context, categoryID string, patch CategoryPatch) (*domain.Category, error) {
	if err := s.deps.Validator.Validate(patch); err != nil {
		return nil, err
	}

	cat, err := s.deps.Store.Categories.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	oldSlug := cat.Slug
	oldParent := cat.Parent

	if patch.Name != nil {
		cat.Name = *patch.Name
		cat.Slug = slug.Make(*patch.Name)
		if cat.Slug == "" {
			return nil, errors.RequiredField("slug")
		}
	}
	if patch.Description != nil {
		cat.Description = *patch.Description
	}
	if patch.Parent != nil {
		cat.Parent = *patch.Parent
	}
	if patch.DisplayOrder != nil {
		cat.DisplayOrder = *patch.DisplayOrder
	}
	if patch.IsActive != nil {
		cat.IsActive = *patch.IsActive
	}

	hierarchyChanged := cat.Slug != oldSlug || cat.Parent != oldParent

	if hierarchyChanged {
		if cat.Parent == categoryID {
			return nil, errors.Validation("category cannot be its own parent")
		}
		parent, err := s.resolveParent(ctx, cat.Parent)
		if err != nil {
			return nil, err
		}
		// Reparenting under one's own descendant would orphan the subtree.
		if parent != nil && (parent.ID == categoryID || parent.HasAncestor(categoryID)) {
			return nil, errors.Validation("cannot move a category under its own descendant")
		}
		cat.DeriveFromParent(parent)
	}

	cat.Touch()
	if err := s.deps.Store.Categories.Update(ctx, categoryID, cat); err != nil {
		return nil, err
	}

	if hierarchyChanged {
		if err := s.cascade(ctx, cat); err != nil {
			return nil, err
		}
	}

	s.deps.recordAudit(ctx, "category", categoryID, audit.ActionUpdate, "")
	return cat, nil
}

// cascade recomputes ancestors/level/path for every descendant of root.
// Descendants are processed in level order against an in-memory map of
// already-updated nodes, so each child always derives from its parent's new
// state. Each save is still a separate document write.
func (s *CategoryService) cascade(ctx context.Context, root *domain.Category) error {
	descendants, err := store.Collect(s.deps.Store.Categories.ListByIndex(ctx, "ancestor", root.ID))
	if err != nil {
		return err
	}

	slices.SortFunc(descendants, func(a, b *domain.Category) int {
		return a.Level - b.Level
	})

	updated := map[string]*domain.Category{root.ID: root}
	for _, child := range descendants {
		parent, ok := updated[child.Parent]
		if !ok {
			// Parent outside the collected set: an index inconsistency.
			// Refetch rather than derive from stale data.
			parent, err = s.deps.Store.Categories.Get(ctx, child.Parent)
			if err != nil {
				return err
			}
		}
		child.DeriveFromParent(parent)
		child.Touch()
		if err := s.deps.Store.Categories.Update(ctx, child.ID, child); err != nil {
			return err
		}
		updated[child.ID] = child
	}

	return nil
}

// Delete removes a category. Categories with children refuse deletion; the
// caller must move or delete the subtree first. Products and posts keep
// their weak references; cleanup is an explicit separate policy.
func (s *CategoryService) Delete(ctx context.Context, categoryID string) error {
	children, err := store.Collect(s.deps.Store.Categories.ListByIndex(ctx, "parent", categoryID))
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return errors.Conflictf("category has %d child categories", len(children))
	}

	if err := s.deps.Store.Categories.Delete(ctx, categoryID); err != nil {
		return err
	}

	s.deps.recordAudit(ctx, "category", categoryID, audit.ActionDelete, "")
	return nil
}

// Descendants returns every category whose ancestor chain contains
// categoryID, regardless of depth.
func (s *CategoryService) Descendants(ctx context.Context, categoryID string) ([]*domain.Category, error) {
	if _, err := s.deps.Store.Categories.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	descendants, err := store.Collect(s.deps.Store.Categories.ListByIndex(ctx, "ancestor", categoryID))
	if err != nil {
		return nil, err
	}
	slices.SortFunc(descendants, compareByLevelThenOrder)
	return descendants, nil
}

// Tree returns the active categories as a nested forest, children ordered by
// display order under each parent, roots first.
func (s *CategoryService) Tree(ctx context.Context) ([]*domain.CategoryNode, error) {
	categories, err := store.Collect(s.deps.Store.Categories.List(ctx))
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	slices.SortFunc(active, compareByLevelThenOrder)

	nodes := make(map[string]*domain.CategoryNode, len(active))
	var roots []*domain.CategoryNode
	for _, c := range active {
		node := &domain.CategoryNode{Category: c}
		nodes[c.ID] = node

		if c.Parent == "" {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[c.Parent]; ok {
			parent.Children = append(parent.Children, node)
		}
		// An inactive or missing parent drops the subtree from the tree
		// view; the categories themselves remain listable.
	}

	return roots, nil
}

func compareByLevelThenOrder(a, b *domain.Category) int {
	if a.Level != b.Level {
		return a.Level - b.Level
	}
	return a.DisplayOrder - b.DisplayOrder
}
