package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/reviews",
		Summary:       "Create review",
		Description:   "Creates a review against a product, post, user or order",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Get review",
		Tags:        []string{"Reviews"},
	}, s.handleGetReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews",
		Summary:     "List reviews",
		Description: "Lists reviews for a target or by author",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPatch,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Update review",
		Description: "Applies a partial update; the target is immutable",
		Tags:        []string{"Reviews"},
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReview",
		Method:        http.MethodDelete,
		Path:          "/api/v1/reviews/{id}",
		Summary:       "Delete review",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "voteOnReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/reviews/{id}/votes/{userId}",
		Summary:     "Vote on review",
		Description: "Casts or changes the user's helpfulness vote",
		Tags:        []string{"Reviews"},
	}, s.handleVoteOnReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "replyToReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/reviews/{id}/replies",
		Summary:       "Reply to review",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
	}, s.handleReplyToReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "flagReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{id}/flags",
		Summary:     "Flag review",
		Description: "Reports a review; a repeat flag from the same user replaces the earlier reason",
		Tags:        []string{"Reviews"},
	}, s.handleFlagReview)
}

// === DTOs ===

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body domain.Review
}

// CreateReviewInput carries the four-nullable-fields wire shape; exactly the
// field matching target_type must be set.
type CreateReviewInput struct {
	Body struct {
		Author     string `json:"author" doc:"Reviewing user ID"`
		TargetType string `json:"target_type" doc:"Kind of entity under review" enum:"product,post,user,order"`
		Product    string `json:"product,omitempty" doc:"Product ID when target_type is product"`
		Post       string `json:"post,omitempty" doc:"Post ID when target_type is post"`
		TargetUser string `json:"target_user,omitempty" doc:"User ID when target_type is user"`
		Order      string `json:"order,omitempty" doc:"Order ID when target_type is order"`
		Rating     int    `json:"rating" doc:"Star rating, 1 to 5"`
		Title      string `json:"title,omitempty" doc:"Short headline"`
		Content    string `json:"content" doc:"Review body"`
	}
}

// ReviewIDInput identifies a review by ID.
type ReviewIDInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// ListReviewsInput contains filters for listing reviews. Pass either an
// author or a (target_type, target_id) pair.
type ListReviewsInput struct {
	Author     string `query:"author" doc:"Filter by reviewing user ID"`
	TargetType string `query:"target_type" doc:"Target kind" enum:"product,post,user,order"`
	TargetID   string `query:"target_id" doc:"Target entity ID"`
}

// ListReviewsOutput wraps the review list for Huma.
type ListReviewsOutput struct {
	Body struct {
		Reviews []*domain.Review `json:"reviews" doc:"List of reviews"`
	}
}

// UpdateReviewInput wraps a partial review update for Huma.
type UpdateReviewInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body service.ReviewPatch
}

// VoteInput wraps a helpfulness vote for Huma.
type VoteInput struct {
	ID     string `path:"id" doc:"Review ID"`
	UserID string `path:"userId" doc:"Voting user ID"`
	Body   struct {
		Vote string `json:"vote" doc:"Vote direction" enum:"helpful,not_helpful"`
	}
}

// ReviewReplyInput wraps a review reply for Huma.
type ReviewReplyInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body struct {
		Author     string `json:"author" doc:"Replying user ID"`
		AuthorType string `json:"author_type" doc:"Who is replying" enum:"customer,seller,moderator"`
		Content    string `json:"content" doc:"Reply text"`
	}
}

// FlagReviewInput wraps a review report for Huma.
type FlagReviewInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body struct {
		User   string `json:"user" doc:"Reporting user ID"`
		Reason string `json:"reason" doc:"Why the review was reported"`
	}
}

// === Handlers ===

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	target, err := service.ResolveTarget(
		domain.TargetType(input.Body.TargetType),
		input.Body.Product,
		input.Body.Post,
		input.Body.TargetUser,
		input.Body.Order,
	)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Reviews.Create(ctx, service.CreateReviewParams{
		Author:  input.Body.Author,
		Target:  target,
		Rating:  input.Body.Rating,
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: *review}, nil
}

func (s *Server) handleGetReview(ctx context.Context, input *ReviewIDInput) (*ReviewOutput, error) {
	review, err := s.services.Reviews.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: *review}, nil
}

func (s *Server) handleListReviews(ctx context.Context, input *ListReviewsInput) (*ListReviewsOutput, error) {
	var (
		reviews []*domain.Review
		err     error
	)
	switch {
	case input.Author != "":
		reviews, err = s.services.Reviews.ListByAuthor(ctx, input.Author)
	default:
		target := domain.ReviewTarget{Type: domain.TargetType(input.TargetType), ID: input.TargetID}
		reviews, err = s.services.Reviews.ListForTarget(ctx, target)
	}
	if err != nil {
		return nil, err
	}
	out := &ListReviewsOutput{}
	out.Body.Reviews = reviews
	return out, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	review, err := s.services.Reviews.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: *review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*struct{}, error) {
	if err := s.services.Reviews.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleVoteOnReview(ctx context.Context, input *VoteInput) (*ReviewOutput, error) {
	review, err := s.services.Reviews.Vote(ctx, input.ID, input.UserID, domain.VoteType(input.Body.Vote))
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: *review}, nil
}

func (s *Server) handleReplyToReview(ctx context.Context, input *ReviewReplyInput) (*ReviewOutput, error) {
	review, err := s.services.Reviews.AddReply(
		ctx,
		input.ID,
		input.Body.Author,
		domain.ReplyAuthorType(input.Body.AuthorType),
		input.Body.Content,
	)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: *review}, nil
}

func (s *Server) handleFlagReview(ctx context.Context, input *FlagReviewInput) (*ReviewOutput, error) {
	review, err := s.services.Reviews.Flag(ctx, input.ID, input.Body.User, input.Body.Reason)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: *review}, nil
}
