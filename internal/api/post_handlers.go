package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts",
		Summary:       "Create post",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Get post",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPostBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/slug/{slug}",
		Summary:     "Get post by slug",
		Tags:        []string{"Posts"},
	}, s.handleGetPostBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List posts",
		Description: "Lists posts, optionally filtered by author, category, tag and status",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPatch,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Update post",
		Tags:        []string{"Posts"},
	}, s.handleUpdatePost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePost",
		Method:        http.MethodDelete,
		Path:          "/api/v1/posts/{id}",
		Summary:       "Delete post",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeletePost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addPostComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts/{id}/comments",
		Summary:       "Add comment",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addCommentReply",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts/{id}/comments/{commentId}/replies",
		Summary:       "Reply to comment",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddCommentReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "removePostComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/posts/{id}/comments/{commentId}",
		Summary:     "Remove comment",
		Tags:        []string{"Posts"},
	}, s.handleRemoveComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "reactToPost",
		Method:      http.MethodPut,
		Path:        "/api/v1/posts/{id}/reactions/{userId}",
		Summary:     "React to post",
		Description: "Sets the user's reaction, replacing any previous one",
		Tags:        []string{"Posts"},
	}, s.handleReact)

	huma.Register(s.api, huma.Operation{
		OperationID: "removePostReaction",
		Method:      http.MethodDelete,
		Path:        "/api/v1/posts/{id}/reactions/{userId}",
		Summary:     "Remove reaction",
		Tags:        []string{"Posts"},
	}, s.handleUnreact)

	huma.Register(s.api, huma.Operation{
		OperationID:   "recordPostView",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts/{id}/views",
		Summary:       "Record view",
		Description:   "Increments the post's view counter; lossy under concurrency",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRecordView)
}

// === DTOs ===

// PostOutput wraps a single post for Huma.
type PostOutput struct {
	Body domain.Post
}

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Body service.CreatePostParams
}

// PostIDInput identifies a post by ID.
type PostIDInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// PostSlugInput identifies a post by slug.
type PostSlugInput struct {
	Slug string `path:"slug" doc:"Post slug"`
}

// ListPostsInput contains filters for listing posts.
type ListPostsInput struct {
	Author   string `query:"author" doc:"Filter by author user ID"`
	Category string `query:"category" doc:"Filter by category ID"`
	Tag      string `query:"tag" doc:"Filter by tag ID"`
	Status   string `query:"status" doc:"Filter by status" enum:"draft,published,archived"`
}

// ListPostsOutput wraps the post list for Huma.
type ListPostsOutput struct {
	Body struct {
		Posts []*domain.Post `json:"posts" doc:"List of posts"`
	}
}

// UpdatePostInput wraps a partial post update for Huma.
type UpdatePostInput struct {
	ID   string `path:"id" doc:"Post ID"`
	Body service.PostPatch
}

// AddCommentInput wraps a new comment for Huma.
type AddCommentInput struct {
	ID   string `path:"id" doc:"Post ID"`
	Body struct {
		Author  string `json:"author" doc:"Commenting user ID"`
		Content string `json:"content" doc:"Comment text"`
	}
}

// AddReplyInput wraps a new comment reply for Huma.
type AddReplyInput struct {
	ID        string `path:"id" doc:"Post ID"`
	CommentID string `path:"commentId" doc:"Parent comment ID"`
	Body      struct {
		Author  string `json:"author" doc:"Replying user ID"`
		Content string `json:"content" doc:"Reply text"`
	}
}

// CommentIDInput identifies a comment within a post.
type CommentIDInput struct {
	ID        string `path:"id" doc:"Post ID"`
	CommentID string `path:"commentId" doc:"Comment ID"`
}

// ReactionInput wraps a reaction change for Huma.
type ReactionInput struct {
	ID     string `path:"id" doc:"Post ID"`
	UserID string `path:"userId" doc:"Reacting user ID"`
	Body   struct {
		Type string `json:"type" doc:"Reaction type" enum:"like,love,insightful,funny"`
	}
}

// UnreactInput identifies a reaction to remove.
type UnreactInput struct {
	ID     string `path:"id" doc:"Post ID"`
	UserID string `path:"userId" doc:"Reacting user ID"`
}

// === Handlers ===

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	post, err := s.services.Posts.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *PostIDInput) (*PostOutput, error) {
	post, err := s.services.Posts.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleGetPostBySlug(ctx context.Context, input *PostSlugInput) (*PostOutput, error) {
	post, err := s.services.Posts.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*ListPostsOutput, error) {
	posts, err := s.services.Posts.List(ctx, input.Author, input.Category, input.Tag, domain.PostStatus(input.Status))
	if err != nil {
		return nil, err
	}
	out := &ListPostsOutput{}
	out.Body.Posts = posts
	return out, nil
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	post, err := s.services.Posts.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *PostIDInput) (*struct{}, error) {
	if err := s.services.Posts.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*PostOutput, error) {
	post, err := s.services.Posts.AddComment(ctx, input.ID, input.Body.Author, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleAddCommentReply(ctx context.Context, input *AddReplyInput) (*PostOutput, error) {
	post, err := s.services.Posts.AddReply(ctx, input.ID, input.CommentID, input.Body.Author, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleRemoveComment(ctx context.Context, input *CommentIDInput) (*PostOutput, error) {
	post, err := s.services.Posts.RemoveComment(ctx, input.ID, input.CommentID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleReact(ctx context.Context, input *ReactionInput) (*PostOutput, error) {
	post, err := s.services.Posts.React(ctx, input.ID, input.UserID, input.Body.Type)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleUnreact(ctx context.Context, input *UnreactInput) (*PostOutput, error) {
	post, err := s.services.Posts.Unreact(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: *post}, nil
}

func (s *Server) handleRecordView(ctx context.Context, input *PostIDInput) (*struct{}, error) {
	s.services.Posts.RecordView(ctx, input.ID)
	return &struct{}{}, nil
}
