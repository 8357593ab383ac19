package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
)

func TestResolveTarget(t *testing.T) {
	target, err := ResolveTarget(domain.TargetProduct, "prd-1", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewTarget{Type: domain.TargetProduct, ID: "prd-1"}, target)
}

func TestResolveTarget_MissingField(t *testing.T) {
	_, err := ResolveTarget(domain.TargetProduct, "", "", "", "")
	require.Error(t, err)

	var domErr *errors.Error
	require.ErrorAs(t, err, &domErr)
	require.Len(t, domErr.Fields(), 1)
	assert.Equal(t, "product", domErr.Fields()[0].Field)
	assert.Equal(t, errors.KindTargetMismatch, domErr.Fields()[0].Kind)
}

func TestResolveTarget_ExtraField(t *testing.T) {
	// Declared a product review but also carries a post reference.
	_, err := ResolveTarget(domain.TargetProduct, "prd-1", "pst-1", "", "")
	require.Error(t, err)

	var domErr *errors.Error
	require.ErrorAs(t, err, &domErr)
	require.Len(t, domErr.Fields(), 1)
	assert.Equal(t, "post", domErr.Fields()[0].Field)
	assert.Equal(t, errors.KindTargetMismatch, domErr.Fields()[0].Kind)
}

func TestResolveTarget_UnknownType(t *testing.T) {
	_, err := ResolveTarget("invoice", "", "", "", "")
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestReviewService_Create_ProductReview(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})

	r, err := svc.Create(ctx, CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetProduct, ID: p.ID},
		Rating:  4,
		Content: "solid",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusPublished, r.Status)

	gotP, err := NewProductService(deps).Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotP.Stats.ReviewCount)
	assert.InDelta(t, 4.0, gotP.Stats.AverageRating, 0.001)

	gotAda, err := NewUserService(deps).Get(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotAda.Stats.ReviewCount)
}

func TestReviewService_Create_AverageOverSeveral(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	bob := mustCreateUser(t, deps, "bob@example.com", "bob")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})
	target := domain.ReviewTarget{Type: domain.TargetProduct, ID: p.ID}

	_, err := svc.Create(ctx, CreateReviewParams{Author: ada.ID, Target: target, Rating: 5, Content: "great"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateReviewParams{Author: bob.ID, Target: target, Rating: 2, Content: "meh"})
	require.NoError(t, err)

	gotP, err := NewProductService(deps).Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gotP.Stats.ReviewCount)
	assert.InDelta(t, 3.5, gotP.Stats.AverageRating, 0.001)
}

func TestReviewService_Create_UnknownTarget(t *testing.T) {
	deps := newTestDeps(t)
	ada := mustCreateUser(t, deps, "ada@example.com", "ada")

	_, err := NewReviewService(deps).Create(context.Background(), CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetProduct, ID: "prd-missing"},
		Rating:  3,
		Content: "?",
	})
	require.Error(t, err)

	var domErr *errors.Error
	require.ErrorAs(t, err, &domErr)
	require.Len(t, domErr.Fields(), 1)
	assert.Equal(t, "target.id", domErr.Fields()[0].Field)
	assert.Equal(t, errors.KindInvalidReference, domErr.Fields()[0].Kind)
}

func TestReviewService_Create_SelfReview(t *testing.T) {
	deps := newTestDeps(t)
	ada := mustCreateUser(t, deps, "ada@example.com", "ada")

	_, err := NewReviewService(deps).Create(context.Background(), CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetUser, ID: ada.ID},
		Rating:  5,
		Content: "i am great",
	})
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestReviewService_Create_OrderOwnership(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	bob := mustCreateUser(t, deps, "bob@example.com", "bob")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1", BasePrice: 100, Stock: 5})
	o := placeOrder(t, deps, ada.ID, OrderItemParams{Product: p.ID, Quantity: 1})

	_, err := svc.Create(ctx, CreateReviewParams{
		Author:  bob.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetOrder, ID: o.ID},
		Rating:  1,
		Content: "not my order",
	})
	require.ErrorIs(t, err, errors.ErrValidation)

	_, err = svc.Create(ctx, CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetOrder, ID: o.ID},
		Rating:  5,
		Content: "fast shipping",
	})
	require.NoError(t, err)
}

func TestReviewService_Vote(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	bob := mustCreateUser(t, deps, "bob@example.com", "bob")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})

	r, err := svc.Create(ctx, CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetProduct, ID: p.ID},
		Rating:  4,
		Content: "solid",
	})
	require.NoError(t, err)

	r, err = svc.Vote(ctx, r.ID, bob.ID, domain.VoteHelpful)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Stats.HelpfulCount)
	assert.Equal(t, 1, r.Stats.HelpfulnessScore)

	// Switching sides replaces the vote.
	r, err = svc.Vote(ctx, r.ID, bob.ID, domain.VoteNotHelpful)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Stats.HelpfulCount)
	assert.Equal(t, 1, r.Stats.NotHelpfulCount)
	assert.Equal(t, -1, r.Stats.HelpfulnessScore)

	_, err = svc.Vote(ctx, r.ID, ada.ID, domain.VoteHelpful)
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestReviewService_Replies(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	seller := mustCreateUser(t, deps, "shop@example.com", "shop")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})

	r, err := svc.Create(ctx, CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetProduct, ID: p.ID},
		Rating:  2,
		Content: "broke after a week",
	})
	require.NoError(t, err)

	r, err = svc.AddReply(ctx, r.ID, seller.ID, domain.ReplyAuthorSeller, "we will replace it")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Stats.ReplyCount)
	assert.True(t, r.Stats.HasSellerReply)
	assert.True(t, r.Replies[0].IsOfficial)
}

func TestReviewService_Flag_Replaces(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	bob := mustCreateUser(t, deps, "bob@example.com", "bob")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})

	r, err := svc.Create(ctx, CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetProduct, ID: p.ID},
		Rating:  5,
		Content: "spam spam spam",
	})
	require.NoError(t, err)

	r, err = svc.Flag(ctx, r.ID, bob.ID, "spam")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Stats.FlagCount)

	r, err = svc.Flag(ctx, r.ID, bob.ID, "definitely spam")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Stats.FlagCount)
	assert.Equal(t, "definitely spam", r.Flags[0].Reason)
}

func TestReviewService_HideAndDelete_RefreshRating(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	p := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})

	r, err := svc.Create(ctx, CreateReviewParams{
		Author:  ada.ID,
		Target:  domain.ReviewTarget{Type: domain.TargetProduct, ID: p.ID},
		Rating:  1,
		Content: "bad",
	})
	require.NoError(t, err)

	hidden := domain.ReviewStatusHidden
	_, err = svc.Update(ctx, r.ID, ReviewPatch{Status: &hidden})
	require.NoError(t, err)

	gotP, err := NewProductService(deps).Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotP.Stats.ReviewCount)
	assert.Zero(t, gotP.Stats.AverageRating)

	require.NoError(t, svc.Delete(ctx, r.ID))
	got, err := svc.ListByAuthor(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReviewService_ListForTarget(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewReviewService(deps)
	ctx := context.Background()

	ada := mustCreateUser(t, deps, "ada@example.com", "ada")
	mouse := mustCreateProduct(t, deps, CreateProductParams{Name: "Mouse", SKU: "M-1"})
	keyboard := mustCreateProduct(t, deps, CreateProductParams{Name: "Keyboard", SKU: "K-1"})

	_, err := svc.Create(ctx, CreateReviewParams{
		Author: ada.ID, Target: domain.ReviewTarget{Type: domain.TargetProduct, ID: mouse.ID},
		Rating: 4, Content: "good",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateReviewParams{
		Author: ada.ID, Target: domain.ReviewTarget{Type: domain.TargetProduct, ID: keyboard.ID},
		Rating: 5, Content: "clacky",
	})
	require.NoError(t, err)

	got, err := svc.ListForTarget(ctx, domain.ReviewTarget{Type: domain.TargetProduct, ID: mouse.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mouse.ID, got[0].Target.ID)
}
