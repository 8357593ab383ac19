package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
)

func TestPostService_Create(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")

	p, err := NewPostService(deps).Create(ctx, CreatePostParams{
		Title:   "Hello World",
		Content: strings.Repeat("word ", 400),
		Author:  ada.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, domain.PostStatusDraft, p.Status)
	assert.NotEmpty(t, p.Excerpt)
	assert.Equal(t, 2, p.Stats.ReadTime) // 400 words at 200 wpm.

	gotAda, err := NewUserService(deps).Get(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotAda.Stats.PostCount)
}

func TestPostService_Create_SlugCollision(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewPostService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")

	first, err := svc.Create(ctx, CreatePostParams{Title: "Hello World", Content: "one", Author: ada.ID})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreatePostParams{Title: "Hello World", Content: "two", Author: ada.ID})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", first.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "hello-world-"))
	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestPostService_Create_UnknownAuthor(t *testing.T) {
	deps := newTestDeps(t)

	_, err := NewPostService(deps).Create(context.Background(), CreatePostParams{
		Title:   "Hello",
		Content: "body",
		Author:  "usr-missing",
	})
	require.Error(t, err)

	var domErr *errors.Error
	require.ErrorAs(t, err, &domErr)
	require.Len(t, domErr.Fields(), 1)
	assert.Equal(t, "author", domErr.Fields()[0].Field)
	assert.Equal(t, errors.KindInvalidReference, domErr.Fields()[0].Kind)
}

func TestPostService_Publish_StampsOnce(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewPostService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	p, err := svc.Create(ctx, CreatePostParams{Title: "Hello", Content: "body", Author: ada.ID})
	require.NoError(t, err)
	require.Nil(t, p.PublishedAt)

	published := domain.PostStatusPublished
	p, err = svc.Update(ctx, p.ID, PostPatch{Status: &published})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	stamp := *p.PublishedAt

	draft := domain.PostStatusDraft
	p, err = svc.Update(ctx, p.ID, PostPatch{Status: &draft})
	require.NoError(t, err)

	p, err = svc.Update(ctx, p.ID, PostPatch{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, stamp, *p.PublishedAt)
}

func TestPostService_Comments(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewPostService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	bob := mustCreateUser(t, deps, "bob@example.com", "bob")
	p, err := svc.Create(ctx, CreatePostParams{Title: "Hello", Content: "body", Author: ada.ID})
	require.NoError(t, err)

	p, err = svc.AddComment(ctx, p.ID, bob.ID, "nice post")
	require.NoError(t, err)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, 1, p.Stats.CommentsCount)

	p, err = svc.AddReply(ctx, p.ID, p.Comments[0].ID, ada.ID, "thanks")
	require.NoError(t, err)
	require.Len(t, p.Comments[0].Replies, 1)
	// Replies do not count toward the top-level comment total.
	assert.Equal(t, 1, p.Stats.CommentsCount)

	gotBob, err := NewUserService(deps).Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotBob.Stats.CommentCount)

	p, err = svc.RemoveComment(ctx, p.ID, p.Comments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, p.Comments)
	assert.Equal(t, 0, p.Stats.CommentsCount)
}

func TestPostService_AddReply_UnknownComment(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewPostService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	p, err := svc.Create(ctx, CreatePostParams{Title: "Hello", Content: "body", Author: ada.ID})
	require.NoError(t, err)

	_, err = svc.AddReply(ctx, p.ID, "cmt-missing", ada.ID, "hello?")
	require.Error(t, err)

	var domErr *errors.Error
	require.ErrorAs(t, err, &domErr)
	require.Len(t, domErr.Fields(), 1)
	assert.Equal(t, "comment", domErr.Fields()[0].Field)
}

func TestPostService_Reactions(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewPostService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	bob := mustCreateUser(t, deps, "bob@example.com", "bob")
	p, err := svc.Create(ctx, CreatePostParams{Title: "Hello", Content: "body", Author: ada.ID})
	require.NoError(t, err)

	p, err = svc.React(ctx, p.ID, bob.ID, "like")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats.ReactionsCount)

	// Changing the reaction type replaces, never stacks.
	p, err = svc.React(ctx, p.ID, bob.ID, "love")
	require.NoError(t, err)
	require.Len(t, p.Reactions, 1)
	assert.Equal(t, "love", p.Reactions[0].Type)

	gotBob, err := NewUserService(deps).Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotBob.Stats.LikeCount)

	p, err = svc.Unreact(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stats.ReactionsCount)

	gotBob, err = NewUserService(deps).Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotBob.Stats.LikeCount)
}

func TestPostService_List_ByAuthor(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewPostService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	bob := mustCreateUser(t, deps, "bob@example.com", "bob")

	_, err := svc.Create(ctx, CreatePostParams{Title: "A", Content: "body", Author: ada.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreatePostParams{Title: "B", Content: "body", Author: bob.ID})
	require.NoError(t, err)

	got, err := svc.List(ctx, ada.ID, "", "", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}
