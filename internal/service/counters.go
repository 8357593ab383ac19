package service

import (
	"context"

	"github.com/storefrontapp/storefront-server/internal/domain"
)

// The bump helpers below maintain denormalized counters on documents other
// than the one a service just wrote. Each is a separate best-effort write
// after the primary mutation commits: a failure is logged and swallowed, and
// the counter drifts until the next reconciliation. Counters are advisory,
// never authoritative.

func (d Deps) bumpUserStats(ctx context.Context, userID string, mutate func(*domain.UserStats)) {
	if userID == "" {
		return
	}
	user, err := d.Store.Users.Get(ctx, userID)
	if err != nil {
		d.logger().Debug("user stats update skipped", "user_id", userID, "error", err)
		return
	}
	mutate(&user.Stats)
	user.Touch()
	if err := d.Store.Users.Update(ctx, userID, user); err != nil {
		d.logger().Warn("user stats update failed", "user_id", userID, "error", err)
	}
}

func (d Deps) bumpCategoryStats(ctx context.Context, categoryID string, mutate func(*domain.CategoryStats)) {
	if categoryID == "" {
		return
	}
	cat, err := d.Store.Categories.Get(ctx, categoryID)
	if err != nil {
		d.logger().Debug("category stats update skipped", "category_id", categoryID, "error", err)
		return
	}
	mutate(&cat.Stats)
	cat.Touch()
	if err := d.Store.Categories.Update(ctx, categoryID, cat); err != nil {
		d.logger().Warn("category stats update failed", "category_id", categoryID, "error", err)
	}
}

func (d Deps) bumpTagStats(ctx context.Context, tagID string, mutate func(*domain.TagStats)) {
	if tagID == "" {
		return
	}
	tag, err := d.Store.Tags.Get(ctx, tagID)
	if err != nil {
		d.logger().Debug("tag stats update skipped", "tag_id", tagID, "error", err)
		return
	}
	mutate(&tag.Stats)
	tag.Recalculate()
	tag.Touch()
	if err := d.Store.Tags.Update(ctx, tagID, tag); err != nil {
		d.logger().Warn("tag stats update failed", "tag_id", tagID, "error", err)
	}
}
