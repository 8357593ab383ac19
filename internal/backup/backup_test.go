package backup

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedUser(t *testing.T, st *store.Store, id, email, username string) {
	t.Helper()
	u := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: "x",
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
	u.ID = id
	u.InitTimestamps()
	require.NoError(t, st.Users.Create(context.Background(), id, u))
}

func TestBackupAndRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newTestStore(t)
	seedUser(t, source, "usr_1", "ada@example.com", "ada")
	seedUser(t, source, "usr_2", "bob@example.com", "bob")

	tag := &domain.Tag{Name: "Sale", Slug: "sale"}
	tag.ID = "tag_1"
	tag.InitTimestamps()
	require.NoError(t, source.Tags.Create(ctx, tag.ID, tag))

	logger := slog.New(slog.DiscardHandler)
	backupDir := t.TempDir()

	svc := NewService(source, backupDir, "test", logger)
	result, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Counts["users"])
	assert.Equal(t, 1, result.Counts["tags"])
	assert.Positive(t, result.Size)

	infos, err := svc.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, result.Path, infos[0].Path)

	// Restore into a fresh store.
	target := newTestStore(t)
	restoreSvc := NewService(target, backupDir, "test", logger)
	restored, err := restoreSvc.Restore(ctx, result.Path)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Counts["users"])
	assert.Equal(t, 1, restored.Counts["tags"])
	assert.Zero(t, restored.Skipped)

	u, err := target.Users.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	// Unique indexes come back with the documents.
	byEmail, err := target.Users.GetByIndex(ctx, "email", "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "usr_2", byEmail.ID)
}

func TestRestore_SkipsExistingDocuments(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "usr_1", "ada@example.com", "ada")

	logger := slog.New(slog.DiscardHandler)
	svc := NewService(st, t.TempDir(), "test", logger)

	result, err := svc.Create(ctx)
	require.NoError(t, err)

	// Restoring into the same store skips everything.
	restored, err := svc.Restore(ctx, result.Path)
	require.NoError(t, err)
	assert.Zero(t, restored.Counts["users"])
	assert.Equal(t, 1, restored.Skipped)
}

func TestList_EmptyDirectory(t *testing.T) {
	svc := NewService(newTestStore(t), filepath.Join(t.TempDir(), "missing"), "test", slog.New(slog.DiscardHandler))
	infos, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}
