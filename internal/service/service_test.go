package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/store"
	"github.com/storefrontapp/storefront-server/internal/validation"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return Deps{
		Store:     s,
		Validator: validation.New(),
		Logger:    slog.New(slog.DiscardHandler),
	}
}

func mustCreateUser(t *testing.T, deps Deps, email, username string) *domain.User {
	t.Helper()
	u, err := NewUserService(deps).Create(context.Background(), CreateUserParams{
		Email:    email,
		Username: username,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return u
}

func mustCreateCategory(t *testing.T, deps Deps, name, parent string) *domain.Category {
	t.Helper()
	c, err := NewCategoryService(deps).Create(context.Background(), CreateCategoryParams{
		Name:   name,
		Parent: parent,
	})
	require.NoError(t, err)
	return c
}

func mustCreateTag(t *testing.T, deps Deps, name string) *domain.Tag {
	t.Helper()
	tag, err := NewTagService(deps).Create(context.Background(), CreateTagParams{Name: name})
	require.NoError(t, err)
	return tag
}

func mustCreateProduct(t *testing.T, deps Deps, params CreateProductParams) *domain.Product {
	t.Helper()
	if params.Currency == "" {
		params.Currency = "USD"
	}
	if params.Status == "" {
		params.Status = domain.ProductStatusActive
	}
	p, err := NewProductService(deps).Create(context.Background(), params)
	require.NoError(t, err)
	return p
}
