package domain

import "time"

// TargetType identifies the kind of entity a review is attached to.
type TargetType string

// Review target types.
const (
	TargetProduct TargetType = "product"
	TargetPost    TargetType = "post"
	TargetUser    TargetType = "user"
	TargetOrder   TargetType = "order"
)

// ValidTargetType reports whether t is one of the four reviewable kinds.
func ValidTargetType(t TargetType) bool {
	switch t {
	case TargetProduct, TargetPost, TargetUser, TargetOrder:
		return true
	default:
		return false
	}
}

// ReviewTarget is a tagged polymorphic reference: the type discriminator and
// the referenced ID travel together, so a review physically cannot carry a
// product ID labelled as a post. The legacy four-nullable-fields wire shape
// is converted to and from this at the API boundary.
type ReviewTarget struct {
	Type TargetType `json:"type"`
	ID   string     `json:"id"`
}

// VoteType says which way a helpfulness vote went.
type VoteType string

// Vote types.
const (
	VoteHelpful    VoteType = "helpful"
	VoteNotHelpful VoteType = "not_helpful"
)

// Vote is one user's helpfulness vote on a review. Owned by the review.
type Vote struct {
	User      string    `json:"user"`
	Type      VoteType  `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplyAuthorType says who wrote a review reply.
type ReplyAuthorType string

// Reply author types.
const (
	ReplyAuthorCustomer  ReplyAuthorType = "customer"
	ReplyAuthorSeller    ReplyAuthorType = "seller"
	ReplyAuthorModerator ReplyAuthorType = "moderator"
)

// ReviewReply is a response to a review. Owned by the review.
type ReviewReply struct {
	ID         string          `json:"id"`
	Author     string          `json:"author"` // Weak reference.
	AuthorType ReplyAuthorType `json:"author_type"`
	Content    string          `json:"content" validate:"required,max=2000"`
	IsOfficial bool            `json:"is_official,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ReviewFlag is a moderation report against a review. Owned by the review.
type ReviewFlag struct {
	User      string    `json:"user"`
	Reason    string    `json:"reason" validate:"required,max=500"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewStats holds the counters derived from the nested vote, reply and
// flag collections.
type ReviewStats struct {
	HelpfulCount     int  `json:"helpful_count"`
	NotHelpfulCount  int  `json:"not_helpful_count"`
	HelpfulnessScore int  `json:"helpfulness_score"` // HelpfulCount - NotHelpfulCount.
	ReplyCount       int  `json:"reply_count"`
	HasSellerReply   bool `json:"has_seller_reply"`
	FlagCount        int  `json:"flag_count"`
}

// ReviewStatus represents a review's moderation state.
type ReviewStatus string

// Review statuses.
const (
	ReviewStatusPublished ReviewStatus = "published"
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusHidden    ReviewStatus = "hidden"
)

// Review is a rated opinion about exactly one target entity.
type Review struct {
	Base
	Author  string        `json:"author" validate:"required"` // Weak reference.
	Target  ReviewTarget  `json:"target"`
	Rating  int           `json:"rating" validate:"required,gte=1,lte=5"`
	Title   string        `json:"title,omitempty" validate:"omitempty,max=150"`
	Content string        `json:"content" validate:"required,max=5000"`
	Status  ReviewStatus  `json:"status" validate:"required,oneof=published pending hidden"`
	Votes   []Vote        `json:"votes,omitempty"`
	Replies []ReviewReply `json:"replies,omitempty"`
	Flags   []ReviewFlag  `json:"flags,omitempty"`
	Stats   ReviewStats   `json:"stats"`
}

// Recalculate overwrites every derived counter from the nested collections.
// Pure and total: empty collections yield zero counts. Invoked by
// ReviewService immediately before every persist.
func (r *Review) Recalculate() {
	helpful, notHelpful := 0, 0
	for _, v := range r.Votes {
		switch v.Type {
		case VoteHelpful:
			helpful++
		case VoteNotHelpful:
			notHelpful++
		}
	}
	r.Stats.HelpfulCount = helpful
	r.Stats.NotHelpfulCount = notHelpful
	r.Stats.HelpfulnessScore = helpful - notHelpful

	r.Stats.ReplyCount = len(r.Replies)

	sellerReply := false
	for _, reply := range r.Replies {
		if reply.AuthorType == ReplyAuthorSeller || reply.IsOfficial {
			sellerReply = true
			break
		}
	}
	r.Stats.HasSellerReply = sellerReply

	r.Stats.FlagCount = len(r.Flags)
}

// CastVote records a helpfulness vote, replacing any prior vote by the same
// user. Returns true if the vote set changed.
func (r *Review) CastVote(user string, vote VoteType, now time.Time) bool {
	for i := range r.Votes {
		if r.Votes[i].User == user {
			if r.Votes[i].Type == vote {
				return false
			}
			r.Votes[i].Type = vote
			r.Votes[i].CreatedAt = now
			return true
		}
	}
	r.Votes = append(r.Votes, Vote{User: user, Type: vote, CreatedAt: now})
	return true
}
