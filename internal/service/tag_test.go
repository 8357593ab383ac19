package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/errors"
)

func TestTagService_Create(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTagService(deps)
	ctx := context.Background()

	tag, err := svc.Create(ctx, CreateTagParams{
		Name:  "Summer Sale",
		Color: "#FF9900",
	})
	require.NoError(t, err)

	assert.Equal(t, "summer-sale", tag.Slug)
	assert.True(t, tag.IsActive)
	assert.Zero(t, tag.Stats.TotalUsage)

	got, err := svc.GetBySlug(ctx, "summer-sale")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)
}

func TestTagService_Create_DuplicateSlug(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTagService(deps)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTagParams{Name: "Summer Sale"})
	require.NoError(t, err)

	// "SUMMER sale" slugs to the same value.
	_, err = svc.Create(ctx, CreateTagParams{Name: "SUMMER sale"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestTagService_Update_RenameRederivesSlug(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTagService(deps)
	ctx := context.Background()

	tag, err := svc.Create(ctx, CreateTagParams{Name: "New Arrival"})
	require.NoError(t, err)

	name := "Just In"
	updated, err := svc.Update(ctx, tag.ID, TagPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "just-in", updated.Slug)

	// The old slug no longer resolves.
	_, err = svc.GetBySlug(ctx, "new-arrival")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	got, err := svc.GetBySlug(ctx, "just-in")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)
}

func TestTagService_Delete(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTagService(deps)
	ctx := context.Background()

	tag, err := svc.Create(ctx, CreateTagParams{Name: "Clearance"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tag.ID))

	_, err = svc.Get(ctx, tag.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
