package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_Recalculate_VoteTallies(t *testing.T) {
	r := &Review{
		Votes: []Vote{
			{User: "usr-1", Type: VoteHelpful},
			{User: "usr-2", Type: VoteHelpful},
			{User: "usr-3", Type: VoteHelpful},
			{User: "usr-4", Type: VoteNotHelpful},
		},
	}

	r.Recalculate()

	assert.Equal(t, 3, r.Stats.HelpfulCount)
	assert.Equal(t, 1, r.Stats.NotHelpfulCount)
	assert.Equal(t, 2, r.Stats.HelpfulnessScore)
}

func TestReview_Recalculate_Empty(t *testing.T) {
	r := &Review{}
	r.Recalculate()

	assert.Equal(t, 0, r.Stats.HelpfulCount)
	assert.Equal(t, 0, r.Stats.NotHelpfulCount)
	assert.Equal(t, 0, r.Stats.HelpfulnessScore)
	assert.Equal(t, 0, r.Stats.ReplyCount)
	assert.False(t, r.Stats.HasSellerReply)
	assert.Equal(t, 0, r.Stats.FlagCount)
}

func TestReview_Recalculate_SellerReply(t *testing.T) {
	r := &Review{Replies: []ReviewReply{
		{ID: "rr-1", AuthorType: ReplyAuthorCustomer, Content: "me too"},
	}}
	r.Recalculate()
	assert.False(t, r.Stats.HasSellerReply)
	assert.Equal(t, 1, r.Stats.ReplyCount)

	r.Replies = append(r.Replies, ReviewReply{ID: "rr-2", AuthorType: ReplyAuthorSeller, Content: "sorry!"})
	r.Recalculate()
	assert.True(t, r.Stats.HasSellerReply)
	assert.Equal(t, 2, r.Stats.ReplyCount)
}

func TestReview_Recalculate_OfficialReplyCountsAsSeller(t *testing.T) {
	r := &Review{Replies: []ReviewReply{
		{ID: "rr-1", AuthorType: ReplyAuthorModerator, IsOfficial: true, Content: "official statement"},
	}}
	r.Recalculate()
	assert.True(t, r.Stats.HasSellerReply)
}

func TestReview_Recalculate_FlagCount(t *testing.T) {
	r := &Review{Flags: []ReviewFlag{
		{User: "usr-1", Reason: "spam"},
		{User: "usr-2", Reason: "offensive"},
	}}
	r.Recalculate()
	assert.Equal(t, 2, r.Stats.FlagCount)
}

func TestReview_CastVote_ReplacesPriorVote(t *testing.T) {
	now := time.Now()
	r := &Review{}

	assert.True(t, r.CastVote("usr-1", VoteHelpful, now))
	assert.False(t, r.CastVote("usr-1", VoteHelpful, now), "same vote twice is a no-op")
	assert.True(t, r.CastVote("usr-1", VoteNotHelpful, now), "switching sides is a change")

	require.Len(t, r.Votes, 1, "one user casts at most one vote")

	r.Recalculate()
	assert.Equal(t, 0, r.Stats.HelpfulCount)
	assert.Equal(t, 1, r.Stats.NotHelpfulCount)
	assert.Equal(t, -1, r.Stats.HelpfulnessScore)
}

func TestValidTargetType(t *testing.T) {
	for _, tt := range []TargetType{TargetProduct, TargetPost, TargetUser, TargetOrder} {
		assert.True(t, ValidTargetType(tt), "%s", tt)
	}
	assert.False(t, ValidTargetType("comment"))
	assert.False(t, ValidTargetType(""))
}
