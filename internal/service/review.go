package service

import (
	"context"
	"time"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/id"
	"github.com/storefrontapp/storefront-server/internal/store"
)

// ReviewService manages rated opinions attached to products, posts, users
// or orders. The target travels as a tagged (type, id) pair; a review of an
// order additionally requires the reviewer to own that order.
type ReviewService struct {
	deps Deps
}

// NewReviewService creates a new review service.
func NewReviewService(deps Deps) *ReviewService {
	return &ReviewService{deps: deps}
}

// ResolveTarget converts the legacy four-nullable-fields wire shape into a
// tagged target, enforcing that exactly the field matching the declared
// type is set and the other three stay empty.
func ResolveTarget(targetType domain.TargetType, product, post, targetUser, order string) (domain.ReviewTarget, error) {
	if !domain.ValidTargetType(targetType) {
		return domain.ReviewTarget{}, errors.Validationf("unknown target type %q", targetType)
	}

	fields := map[domain.TargetType]string{
		domain.TargetProduct: product,
		domain.TargetPost:    post,
		domain.TargetUser:    targetUser,
		domain.TargetOrder:   order,
	}
	names := map[domain.TargetType]string{
		domain.TargetProduct: "product",
		domain.TargetPost:    "post",
		domain.TargetUser:    "target_user",
		domain.TargetOrder:   "order",
	}

	targetID := fields[targetType]
	if targetID == "" {
		return domain.ReviewTarget{}, errors.TargetMismatch(names[targetType])
	}
	for t, v := range fields {
		if t != targetType && v != "" {
			return domain.ReviewTarget{}, errors.TargetMismatch(names[t])
		}
	}

	return domain.ReviewTarget{Type: targetType, ID: targetID}, nil
}

// CreateReviewParams is the caller-supplied draft for a new review.
type CreateReviewParams struct {
	Author  string              `json:"author" validate:"required"`
	Target  domain.ReviewTarget `json:"target"`
	Rating  int                 `json:"rating" validate:"required,gte=1,lte=5"`
	Title   string              `json:"title,omitempty" validate:"omitempty,max=150"`
	Content string              `json:"content" validate:"required,max=5000"`
}

// Create inserts a review. Author and target must exist; order reviews must
// come from the order's owner.
func (s *ReviewService) Create(ctx context.Context, params CreateReviewParams) (*domain.Review, error) {
	if err := s.deps.Validator.Validate(params); err != nil {
		return nil, err
	}

	if _, err := s.deps.Store.Users.Get(ctx, params.Author); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("author")
		}
		return nil, err
	}
	if err := s.checkTarget(ctx, params.Author, params.Target); err != nil {
		return nil, err
	}

	r := &domain.Review{
		Author:  params.Author,
		Target:  params.Target,
		Rating:  params.Rating,
		Title:   params.Title,
		Content: params.Content,
		Status:  domain.ReviewStatusPublished,
	}
	r.ID = id.MustGenerate(id.PrefixReview)
	r.InitTimestamps()
	r.Recalculate()

	if err := s.deps.Store.Reviews.Create(ctx, r.ID, r); err != nil {
		return nil, err
	}

	s.deps.bumpUserStats(ctx, r.Author, func(st *domain.UserStats) { st.ReviewCount++ })
	if r.Target.Type == domain.TargetProduct {
		s.refreshProductRating(ctx, r.Target.ID)
	}
	s.deps.recordAudit(ctx, "review", r.ID, audit.ActionCreate, r.Author)
	s.deps.logger().Info("review created", "review_id", r.ID, "target_type", r.Target.Type, "target_id", r.Target.ID)

	return r, nil
}

// checkTarget verifies the target exists in the collection its type names.
func (s *ReviewService) checkTarget(ctx context.Context, author string, target domain.ReviewTarget) error {
	if !domain.ValidTargetType(target.Type) {
		return errors.Validationf("unknown target type %q", target.Type)
	}
	if target.ID == "" {
		return errors.RequiredField("target.id")
	}

	switch target.Type {
	case domain.TargetProduct:
		if _, err := s.deps.Store.Products.Get(ctx, target.ID); err != nil {
			return targetRefError(err)
		}
	case domain.TargetPost:
		if _, err := s.deps.Store.Posts.Get(ctx, target.ID); err != nil {
			return targetRefError(err)
		}
	case domain.TargetUser:
		if target.ID == author {
			return errors.Validation("users cannot review themselves")
		}
		if _, err := s.deps.Store.Users.Get(ctx, target.ID); err != nil {
			return targetRefError(err)
		}
	case domain.TargetOrder:
		o, err := s.deps.Store.Orders.Get(ctx, target.ID)
		if err != nil {
			return targetRefError(err)
		}
		if o.User != author {
			return errors.Validation("only the order's owner can review it")
		}
	}
	return nil
}

func targetRefError(err error) error {
	if errors.Is(err, errors.ErrNotFound) {
		return errors.InvalidReference("target.id")
	}
	return err
}

// Get returns a review by ID.
func (s *ReviewService) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	return s.deps.Store.Reviews.Get(ctx, reviewID)
}

// ListForTarget returns every review attached to the given target.
func (s *ReviewService) ListForTarget(ctx context.Context, target domain.ReviewTarget) ([]*domain.Review, error) {
	return store.Collect(s.deps.Store.Reviews.ListByIndex(ctx, "target", store.TargetKey(target)))
}

// ListByAuthor returns every review a user wrote.
func (s *ReviewService) ListByAuthor(ctx context.Context, userID string) ([]*domain.Review, error) {
	return store.Collect(s.deps.Store.Reviews.ListByIndex(ctx, "author", userID))
}

// ReviewPatch is a partial update. The target is immutable after creation;
// re-targeting a review is a delete and a new review.
type ReviewPatch struct {
	Rating  *int                 `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Title   *string              `json:"title,omitempty" validate:"omitempty,max=150"`
	Content *string              `json:"content,omitempty" validate:"omitempty,min=1,max=5000"`
	Status  *domain.ReviewStatus `json:"status,omitempty" validate:"omitempty,oneof=published pending hidden"`
}

// Update applies a partial update.
func (s *ReviewService) Update(ctx context.Context, reviewID string, patch ReviewPatch) (*domain.Review, error) {
	if err := s.deps.Validator.Validate(patch); err != nil {
		return nil, err
	}

	r, err := s.deps.Store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	ratingChanged := false
	if patch.Rating != nil && *patch.Rating != r.Rating {
		r.Rating = *patch.Rating
		ratingChanged = true
	}
	if patch.Title != nil {
		r.Title = *patch.Title
	}
	if patch.Content != nil {
		r.Content = *patch.Content
	}
	statusChanged := false
	if patch.Status != nil && *patch.Status != r.Status {
		r.Status = *patch.Status
		statusChanged = true
	}

	r.Recalculate()
	r.Touch()
	if err := s.deps.Store.Reviews.Update(ctx, reviewID, r); err != nil {
		return nil, err
	}

	if (ratingChanged || statusChanged) && r.Target.Type == domain.TargetProduct {
		s.refreshProductRating(ctx, r.Target.ID)
	}
	s.deps.recordAudit(ctx, "review", reviewID, audit.ActionUpdate, "")
	return r, nil
}

// Delete removes a review and unwinds the counters it held.
func (s *ReviewService) Delete(ctx context.Context, reviewID string) error {
	r, err := s.deps.Store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return err
	}

	if err := s.deps.Store.Reviews.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.deps.bumpUserStats(ctx, r.Author, func(st *domain.UserStats) { st.ReviewCount-- })
	if r.Target.Type == domain.TargetProduct {
		s.refreshProductRating(ctx, r.Target.ID)
	}
	s.deps.recordAudit(ctx, "review", reviewID, audit.ActionDelete, "")
	return nil
}

// Vote records a helpfulness vote, replacing any earlier vote by the same
// user. Authors cannot vote on their own reviews.
func (s *ReviewService) Vote(ctx context.Context, reviewID, user string, vote domain.VoteType) (*domain.Review, error) {
	if vote != domain.VoteHelpful && vote != domain.VoteNotHelpful {
		return nil, errors.Validationf("unknown vote type %q", vote)
	}
	if _, err := s.deps.Store.Users.Get(ctx, user); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("user")
		}
		return nil, err
	}

	r, err := s.deps.Store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.Author == user {
		return nil, errors.Validation("authors cannot vote on their own review")
	}

	if !r.CastVote(user, vote, time.Now().UTC()) {
		return r, nil
	}
	r.Recalculate()
	r.Touch()
	if err := s.deps.Store.Reviews.Update(ctx, reviewID, r); err != nil {
		return nil, err
	}
	return r, nil
}

// AddReply appends a reply to a review. Seller and moderator replies are
// marked official.
func (s *ReviewService) AddReply(ctx context.Context, reviewID, author string, authorType domain.ReplyAuthorType, text string) (*domain.Review, error) {
	if text == "" {
		return nil, errors.RequiredField("content")
	}
	if len(text) > 2000 {
		return nil, errors.LengthBound("content", "must be at most 2000 characters")
	}
	switch authorType {
	case domain.ReplyAuthorCustomer, domain.ReplyAuthorSeller, domain.ReplyAuthorModerator:
	default:
		return nil, errors.Validationf("unknown reply author type %q", authorType)
	}
	if _, err := s.deps.Store.Users.Get(ctx, author); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("author")
		}
		return nil, err
	}

	r, err := s.deps.Store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	r.Replies = append(r.Replies, domain.ReviewReply{
		ID:         id.MustGenerate(id.PrefixReply),
		Author:     author,
		AuthorType: authorType,
		Content:    text,
		IsOfficial: authorType == domain.ReplyAuthorSeller || authorType == domain.ReplyAuthorModerator,
		CreatedAt:  time.Now().UTC(),
	})
	r.Recalculate()
	r.Touch()
	if err := s.deps.Store.Reviews.Update(ctx, reviewID, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Flag files a moderation report. A user's repeat flag replaces their
// earlier one rather than stacking.
func (s *ReviewService) Flag(ctx context.Context, reviewID, user, reason string) (*domain.Review, error) {
	if reason == "" {
		return nil, errors.RequiredField("reason")
	}
	if len(reason) > 500 {
		return nil, errors.LengthBound("reason", "must be at most 500 characters")
	}
	if _, err := s.deps.Store.Users.Get(ctx, user); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("user")
		}
		return nil, err
	}

	r, err := s.deps.Store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	replaced := false
	for i := range r.Flags {
		if r.Flags[i].User == user {
			r.Flags[i].Reason = reason
			r.Flags[i].CreatedAt = now
			replaced = true
			break
		}
	}
	if !replaced {
		r.Flags = append(r.Flags, domain.ReviewFlag{User: user, Reason: reason, CreatedAt: now})
	}

	r.Recalculate()
	r.Touch()
	if err := s.deps.Store.Reviews.Update(ctx, reviewID, r); err != nil {
		return nil, err
	}
	return r, nil
}

// refreshProductRating recomputes a product's review count and average
// rating from its published reviews. Best-effort.
func (s *ReviewService) refreshProductRating(ctx context.Context, productID string) {
	target := domain.ReviewTarget{Type: domain.TargetProduct, ID: productID}
	reviews, err := store.Collect(s.deps.Store.Reviews.ListByIndex(ctx, "target", store.TargetKey(target)))
	if err != nil {
		s.deps.logger().Warn("product rating refresh skipped", "product_id", productID, "error", err)
		return
	}

	count := 0
	sum := 0
	for _, r := range reviews {
		if r.Status != domain.ReviewStatusPublished {
			continue
		}
		count++
		sum += r.Rating
	}

	p, err := s.deps.Store.Products.Get(ctx, productID)
	if err != nil {
		s.deps.logger().Debug("product rating refresh skipped", "product_id", productID, "error", err)
		return
	}
	p.Stats.ReviewCount = count
	if count == 0 {
		p.Stats.AverageRating = 0
	} else {
		p.Stats.AverageRating = float64(sum) / float64(count)
	}
	p.Touch()
	if err := s.deps.Store.Products.Update(ctx, productID, p); err != nil {
		s.deps.logger().Warn("product rating refresh failed", "product_id", productID, "error", err)
	}
}
