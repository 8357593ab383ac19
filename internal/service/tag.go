package service

import (
	"context"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/id"
	"github.com/storefrontapp/storefront-server/internal/slug"
	"github.com/storefrontapp/storefront-server/internal/store"
)

// TagService manages the flat tag vocabulary shared by products and posts.
type TagService struct {
	deps Deps
}

// NewTagService creates a new tag service.
func NewTagService(deps Deps) *TagService {
	return &TagService{deps: deps}
}

// CreateTagParams is the caller-supplied draft for a new tag.
type CreateTagParams struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       string `json:"color,omitempty" validate:"omitempty,max=20"`
}

// Create inserts a tag with a slug derived from the name.
func (s *TagService) Create(ctx context.Context, params CreateTagParams) (*domain.Tag, error) {
	if err := s.deps.Validator.Validate(params); err != nil {
		return nil, err
	}

	tag := &domain.Tag{
		Name:        params.Name,
		Slug:        slug.Make(params.Name),
		Description: params.Description,
		Color:       params.Color,
		IsActive:    true,
	}
	if tag.Slug == "" {
		return nil, errors.RequiredField("slug")
	}
	tag.ID = id.MustGenerate(id.PrefixTag)
	tag.InitTimestamps()
	tag.Recalculate()

	if err := s.deps.Store.Tags.Create(ctx, tag.ID, tag); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "tag", tag.ID, audit.ActionCreate, "")
	return tag, nil
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	return s.deps.Store.Tags.Get(ctx, tagID)
}

// GetBySlug returns a tag by its unique slug.
func (s *TagService) GetBySlug(ctx context.Context, tagSlug string) (*domain.Tag, error) {
	return s.deps.Store.Tags.GetByIndex(ctx, "slug", tagSlug)
}

// List returns all tags.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return store.Collect(s.deps.Store.Tags.List(ctx))
}

// TagPatch is a partial update for a tag.
type TagPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,max=20"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Update applies a partial update. A name change re-derives the slug.
func (s *TagService) Update(ctx context.Context, tagID string, patch TagPatch) (*domain.Tag, error) {
	if err := s.deps.Validator.Validate(patch); err != nil {
		return nil, err
	}

	tag, err := s.deps.Store.Tags.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		tag.Name = *patch.Name
		tag.Slug = slug.Make(*patch.Name)
		if tag.Slug == "" {
			return nil, errors.RequiredField("slug")
		}
	}
	if patch.Description != nil {
		tag.Description = *patch.Description
	}
	if patch.Color != nil {
		tag.Color = *patch.Color
	}
	if patch.IsActive != nil {
		tag.IsActive = *patch.IsActive
	}

	tag.Recalculate()
	tag.Touch()
	if err := s.deps.Store.Tags.Update(ctx, tagID, tag); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "tag", tagID, audit.ActionUpdate, "")
	return tag, nil
}

// Delete removes a tag. Products and posts keep their weak ID references.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	if err := s.deps.Store.Tags.Delete(ctx, tagID); err != nil {
		return err
	}
	s.deps.recordAudit(ctx, "tag", tagID, audit.ActionDelete, "")
	return nil
}
