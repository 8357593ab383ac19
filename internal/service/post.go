package service

import (
	"context"
	"time"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/content"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/id"
	"github.com/storefrontapp/storefront-server/internal/search"
	"github.com/storefrontapp/storefront-server/internal/slug"
	"github.com/storefrontapp/storefront-server/internal/store"
)

const excerptLength = 200

// PostService manages articles, their nested comment threads and reactions.
// Slugs are auto-generated from the title and disambiguated with the
// creation timestamp when the title collides with an existing post.
type PostService struct {
	deps Deps
}

// NewPostService creates a new post service.
func NewPostService(deps Deps) *PostService {
	return &PostService{deps: deps}
}

// CreatePostParams is the caller-supplied draft for a new post.
type CreatePostParams struct {
	Title    string            `json:"title" validate:"required,min=1,max=200"`
	Content  string            `json:"content" validate:"required"`
	Excerpt  string            `json:"excerpt,omitempty"`
	Author   string            `json:"author" validate:"required"`
	Category string            `json:"category,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
	CoverURL string            `json:"cover_url,omitempty" validate:"omitempty,url"`
	Status   domain.PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

// Create inserts a post. The author must exist; category and tags must exist
// when given. An empty excerpt is derived from the content.
func (s *PostService) Create(ctx context.Context, params CreatePostParams) (*domain.Post, error) {
	if err := s.deps.Validator.Validate(params); err != nil {
		return nil, err
	}

	if _, err := s.deps.Store.Users.Get(ctx, params.Author); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("author")
		}
		return nil, err
	}
	if err := s.checkReferences(ctx, params.Category, params.Tags); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Post{
		Title:    params.Title,
		Content:  params.Content,
		Excerpt:  params.Excerpt,
		Author:   params.Author,
		Category: params.Category,
		Tags:     params.Tags,
		CoverURL: params.CoverURL,
		Status:   params.Status,
	}
	if p.Status == "" {
		p.Status = domain.PostStatusDraft
	}
	if p.Excerpt == "" {
		p.Excerpt = content.Excerpt(p.Content, excerptLength)
	}
	p.Slug = slug.Unique(p.Title, now.Format("20060102150405"), func(candidate string) bool {
		_, err := s.deps.Store.Posts.GetByIndex(ctx, "slug", candidate)
		return err == nil
	})
	if p.Slug == "" {
		return nil, errors.RequiredField("slug")
	}
	if p.Status == domain.PostStatusPublished {
		p.PublishedAt = &now
	}

	p.ID = id.MustGenerate(id.PrefixPost)
	p.InitTimestamps()
	p.Recalculate(content.WordCount(p.Content))

	if err := s.deps.Store.Posts.Create(ctx, p.ID, p); err != nil {
		return nil, err
	}

	s.deps.bumpUserStats(ctx, p.Author, func(st *domain.UserStats) { st.PostCount++ })
	s.deps.bumpCategoryStats(ctx, p.Category, func(st *domain.CategoryStats) { st.PostCount++ })
	for _, tagID := range p.Tags {
		s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.PostCount++ })
	}
	s.index(ctx, p)
	s.deps.recordAudit(ctx, "post", p.ID, audit.ActionCreate, p.Author)
	s.deps.logger().Info("post created", "post_id", p.ID, "slug", p.Slug)

	return p, nil
}

func (s *PostService) checkReferences(ctx context.Context, category string, tags []string) error {
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

// Get returns a post by ID.
func (s *PostService) Get(ctx context.Context, postID string) (*domain.Post, error) {
	return s.deps.Store.Posts.Get(ctx, postID)
}

// GetBySlug returns a post by its unique slug.
func (s *PostService) GetBySlug(ctx context.Context, postSlug string) (*domain.Post, error) {
	return s.deps.Store.Posts.GetByIndex(ctx, "slug", postSlug)
}

// List returns posts, optionally filtered by author, category, tag or
// status. One index drives the scan; remaining filters apply in memory.
func (s *PostService) List(ctx context.Context, author, category, tag string, status domain.PostStatus) ([]*domain.Post, error) {
	seq := s.deps.Store.Posts.List(ctx)
	switch {
	case author != "":
		seq = s.deps.Store.Posts.ListByIndex(ctx, "author", author)
	case category != "":
		seq = s.deps.Store.Posts.ListByIndex(ctx, "category", category)
	case tag != "":
		seq = s.deps.Store.Posts.ListByIndex(ctx, "tag", tag)
	case status != "":
		seq = s.deps.Store.Posts.ListByIndex(ctx, "status", string(status))
	}
	return store.Collect(store.Filter(seq, func(p *domain.Post) bool {
		if author != "" && p.Author != author {
			return false
		}
		if category != "" && p.Category != category {
			return false
		}
		if tag != "" && !contains(p.Tags, tag) {
			return false
		}
		return status == "" || p.Status == status
	}))
}

// PostPatch is a partial update. The slug never changes after creation so
// published URLs stay stable; a title change only retitles.
type PostPatch struct {
	Title    *string            `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content  *string            `json:"content,omitempty" validate:"omitempty,min=1"`
	Excerpt  *string            `json:"excerpt,omitempty"`
	Category *string            `json:"category,omitempty"`
	Tags     *[]string          `json:"tags,omitempty"`
	CoverURL *string            `json:"cover_url,omitempty" validate:"omitempty,url"`
	Status   *domain.PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

// Update applies a partial update. Moving to published stamps PublishedAt
// exactly once; moving away from published keeps the original stamp.
func (s *PostService) Update(ctx context.Context, postID string, patch PostPatch) (*domain.Post, error) {
	if err := s.deps.Validator.Validate(patch); err != nil {
		return nil, err
	}

	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	oldCategory := p.Category
	oldTags := p.Tags

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
		if patch.Excerpt == nil && p.Excerpt == "" {
			p.Excerpt = content.Excerpt(p.Content, excerptLength)
		}
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.CoverURL != nil {
		p.CoverURL = *patch.CoverURL
	}
	if patch.Status != nil {
		if *patch.Status == domain.PostStatusPublished && p.PublishedAt == nil {
			now := time.Now().UTC()
			p.PublishedAt = &now
		}
		p.Status = *patch.Status
	}

	if p.Category != oldCategory || patch.Tags != nil {
		if err := s.checkReferences(ctx, p.Category, p.Tags); err != nil {
			return nil, err
		}
	}

	p.Recalculate(content.WordCount(p.Content))
	p.Touch()
	if err := s.deps.Store.Posts.Update(ctx, postID, p); err != nil {
		return nil, err
	}

	if p.Category != oldCategory {
		s.deps.bumpCategoryStats(ctx, oldCategory, func(st *domain.CategoryStats) { st.PostCount-- })
		s.deps.bumpCategoryStats(ctx, p.Category, func(st *domain.CategoryStats) { st.PostCount++ })
	}
	if patch.Tags != nil {
		for _, tagID := range removedFrom(oldTags, p.Tags) {
			s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.PostCount-- })
		}
		for _, tagID := range removedFrom(p.Tags, oldTags) {
			s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.PostCount++ })
		}
	}

	s.index(ctx, p)
	s.deps.recordAudit(ctx, "post", postID, audit.ActionUpdate, "")
	return p, nil
}

// Delete removes a post and unwinds the counters it held.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.deps.Store.Posts.Delete(ctx, postID); err != nil {
		return err
	}

	s.deps.bumpUserStats(ctx, p.Author, func(st *domain.UserStats) { st.PostCount-- })
	s.deps.bumpCategoryStats(ctx, p.Category, func(st *domain.CategoryStats) { st.PostCount-- })
	for _, tagID := range p.Tags {
		s.deps.bumpTagStats(ctx, tagID, func(st *domain.TagStats) { st.PostCount-- })
	}
	if s.deps.Search != nil {
		if err := s.deps.Search.DeleteDocument(postID); err != nil {
			s.deps.logger().Warn("search delete failed", "post_id", postID, "error", err)
		}
	}
	s.deps.recordAudit(ctx, "post", postID, audit.ActionDelete, "")
	return nil
}

// AddComment appends a top-level comment. The commenter must exist.
func (s *PostService) AddComment(ctx context.Context, postID, author, text string) (*domain.Post, error) {
	if text == "" {
		return nil, errors.RequiredField("content")
	}
	if len(text) > 2000 {
		return nil, errors.LengthBound("content", "must be at most 2000 characters")
	}
	if _, err := s.deps.Store.Users.Get(ctx, author); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("author")
		}
		return nil, err
	}

	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	p.Comments = append(p.Comments, domain.Comment{
		ID:        id.MustGenerate(id.PrefixComment),
		Author:    author,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	})
	p.Recalculate(content.WordCount(p.Content))
	p.Touch()
	if err := s.deps.Store.Posts.Update(ctx, postID, p); err != nil {
		return nil, err
	}

	s.deps.bumpUserStats(ctx, author, func(st *domain.UserStats) { st.CommentCount++ })
	return p, nil
}

// AddReply appends a reply under an existing comment. Threads stay two
// levels deep; replies cannot be replied to.
func (s *PostService) AddReply(ctx context.Context, postID, commentID, author, text string) (*domain.Post, error) {
	if text == "" {
		return nil, errors.RequiredField("content")
	}
	if len(text) > 2000 {
		return nil, errors.LengthBound("content", "must be at most 2000 characters")
	}
	if _, err := s.deps.Store.Users.Get(ctx, author); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("author")
		}
		return nil, err
	}

	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	c := p.Comment(commentID)
	if c == nil {
		return nil, errors.InvalidReference("comment")
	}

	c.Replies = append(c.Replies, domain.Reply{
		ID:        id.MustGenerate(id.PrefixReply),
		Author:    author,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	})
	p.Recalculate(content.WordCount(p.Content))
	p.Touch()
	if err := s.deps.Store.Posts.Update(ctx, postID, p); err != nil {
		return nil, err
	}

	s.deps.bumpUserStats(ctx, author, func(st *domain.UserStats) { st.CommentCount++ })
	return p, nil
}

// RemoveComment deletes a top-level comment with its replies.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID string) (*domain.Post, error) {
	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	c := p.Comment(commentID)
	if c == nil {
		return nil, errors.InvalidReference("comment")
	}
	commenter := c.Author
	p.RemoveComment(commentID)

	p.Recalculate(content.WordCount(p.Content))
	p.Touch()
	if err := s.deps.Store.Posts.Update(ctx, postID, p); err != nil {
		return nil, err
	}

	s.deps.bumpUserStats(ctx, commenter, func(st *domain.UserStats) { st.CommentCount-- })
	return p, nil
}

// React records a reaction from a user, replacing any earlier one from the
// same user. The like counter only moves when the reaction set grows.
func (s *PostService) React(ctx context.Context, postID, user, reactionType string) (*domain.Post, error) {
	if reactionType == "" {
		return nil, errors.RequiredField("type")
	}
	if _, err := s.deps.Store.Users.Get(ctx, user); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("user")
		}
		return nil, err
	}

	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	before := len(p.Reactions)
	if !p.React(user, reactionType, time.Now().UTC()) {
		return p, nil
	}
	p.Recalculate(content.WordCount(p.Content))
	p.Touch()
	if err := s.deps.Store.Posts.Update(ctx, postID, p); err != nil {
		return nil, err
	}

	if len(p.Reactions) > before {
		s.deps.bumpUserStats(ctx, user, func(st *domain.UserStats) { st.LikeCount++ })
	}
	return p, nil
}

// Unreact removes the user's reaction if present.
func (s *PostService) Unreact(ctx context.Context, postID, user string) (*domain.Post, error) {
	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !p.Unreact(user) {
		return p, nil
	}
	p.Recalculate(content.WordCount(p.Content))
	p.Touch()
	if err := s.deps.Store.Posts.Update(ctx, postID, p); err != nil {
		return nil, err
	}

	s.deps.bumpUserStats(ctx, user, func(st *domain.UserStats) { st.LikeCount-- })
	return p, nil
}

// RecordView bumps the view counter. Lossy under concurrency; views are an
// engagement signal, not an accounting value.
func (s *PostService) RecordView(ctx context.Context, postID string) {
	p, err := s.deps.Store.Posts.Get(ctx, postID)
	if err != nil {
		return
	}
	p.Stats.ViewCount++
	if err := s.deps.Store.Posts.Update(ctx, postID, p); err != nil {
		s.deps.logger().Debug("view count update failed", "post_id", postID, "error", err)
	}
}

// Reindex pushes every post into the search index in one batch.
func (s *PostService) Reindex(ctx context.Context) error {
	if s.deps.Search == nil {
		return nil
	}
	var docs []*search.Document
	for p, err := range s.deps.Store.Posts.List(ctx) {
		if err != nil {
			return err
		}
		authorName := ""
		if u, uerr := s.deps.Store.Users.Get(ctx, p.Author); uerr == nil {
			authorName = u.Username
		}
		docs = append(docs, search.PostDocument(p, authorName, s.categorySlugFor(ctx, p.Category), s.tagSlugsFor(ctx, p.Tags)))
	}
	return s.deps.Search.IndexDocuments(docs)
}

func (s *PostService) index(ctx context.Context, p *domain.Post) {
	if s.deps.Search == nil {
		return
	}
	authorName := ""
	if u, err := s.deps.Store.Users.Get(ctx, p.Author); err == nil {
		authorName = u.Username
	}
	doc := search.PostDocument(p, authorName, s.categorySlugFor(ctx, p.Category), s.tagSlugsFor(ctx, p.Tags))
	if err := s.deps.Search.IndexDocument(doc); err != nil {
		s.deps.logger().Warn("search index failed", "post_id", p.ID, "error", err)
	}
}

func (s *PostService) categorySlugFor(ctx context.Context, categoryID string) string {
	if categoryID == "" {
		return ""
	}
	cat, err := s.deps.Store.Categories.Get(ctx, categoryID)
	if err != nil {
		return ""
	}
	return cat.Slug
}

func (s *PostService) tagSlugsFor(ctx context.Context, tagIDs []string) []string {
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
