package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/slug/{slug}",
		Summary:     "Get tag by slug",
		Tags:        []string{"Tags"},
	}, s.handleGetTagBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Lists tags ordered by total usage",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Tags:        []string{"Tags"},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/{id}",
		Summary:       "Delete tag",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagOutput wraps a single tag for Huma.
type TagOutput struct {
	Body domain.Tag
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body service.CreateTagParams
}

// TagIDInput identifies a tag by ID.
type TagIDInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// TagSlugInput identifies a tag by slug.
type TagSlugInput struct {
	Slug string `path:"slug" doc:"Tag slug"`
}

// ListTagsOutput wraps the tag list for Huma.
type ListTagsOutput struct {
	Body struct {
		Tags []*domain.Tag `json:"tags" doc:"List of tags"`
	}
}

// UpdateTagInput wraps a partial tag update for Huma.
type UpdateTagInput struct {
	ID   string `path:"id" doc:"Tag ID"`
	Body service.TagPatch
}

// === Handlers ===

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	tag, err := s.services.Tags.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: *tag}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagIDInput) (*TagOutput, error) {
	tag, err := s.services.Tags.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: *tag}, nil
}

func (s *Server) handleGetTagBySlug(ctx context.Context, input *TagSlugInput) (*TagOutput, error) {
	tag, err := s.services.Tags.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: *tag}, nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tags.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ListTagsOutput{}
	out.Body.Tags = tags
	return out, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	tag, err := s.services.Tags.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: *tag}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*struct{}, error) {
	if err := s.services.Tags.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
