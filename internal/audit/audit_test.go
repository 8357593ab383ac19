package audit_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/audit"
)

func setupLog(t *testing.T) *audit.Log {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audit.db")
	log, err := audit.Open(path, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestLog_RecordAndQuery(t *testing.T) {
	log := setupLog(t)
	ctx := context.Background()

	require.NoError(t, log.Record(ctx, audit.Entry{
		Entity:   "product",
		EntityID: "prd_1",
		Action:   audit.ActionCreate,
		Actor:    "usr_1",
	}))
	require.NoError(t, log.Record(ctx, audit.Entry{
		Entity:   "product",
		EntityID: "prd_1",
		Action:   audit.ActionUpdate,
		Actor:    "usr_2",
		Detail:   "price changed",
	}))
	require.NoError(t, log.Record(ctx, audit.Entry{
		Entity:   "order",
		EntityID: "ord_1",
		Action:   audit.ActionCreate,
	}))

	entries, err := log.ForEntity(ctx, "product", "prd_1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
		assert.Equal(t, "product", e.Entity)
	}

	recent, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestLog_ForEntity_Empty(t *testing.T) {
	log := setupLog(t)

	entries, err := log.ForEntity(context.Background(), "user", "absent", 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLog_ForEntity_Limit(t *testing.T) {
	log := setupLog(t)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, log.Record(ctx, audit.Entry{
			Entity:   "tag",
			EntityID: "tag_1",
			Action:   audit.ActionUpdate,
		}))
	}

	entries, err := log.ForEntity(ctx, "tag", "tag_1", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
