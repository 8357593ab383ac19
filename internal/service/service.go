// Package service implements the domain facade: one service per root entity,
// composing the document store, validation, audit trail and search index.
//
// Consistency model: every operation is a request-scoped read-modify-write.
// Uniqueness is enforced by the store's index engine inside the document
// write; any pre-checks here are optimizations. Cross-entity counter updates
// (a category's product count, a user's order count) are separate best-effort
// writes after the primary write — they can be lost under concurrent writers
// and are logged when they fail, never propagated as operation failures.
package service

import (
	"context"
	"log/slog"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/search"
	"github.com/storefrontapp/storefront-server/internal/store"
	"github.com/storefrontapp/storefront-server/internal/validation"
)

// Deps bundles the collaborators shared by all services.
type Deps struct {
	Store     *store.Store
	Validator *validation.Validator
	Audit     *audit.Log    // Optional; nil disables the audit trail.
	Search    *search.Index // Optional; nil disables search indexing.
	Logger    *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// recordAudit writes one audit entry, best-effort.
func (d Deps) recordAudit(ctx context.Context, entity, entityID string, action audit.Action, actor string) {
	if d.Audit == nil {
		return
	}
	d.Audit.TryRecord(ctx, audit.Entry{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Actor:    actor,
	})
}
