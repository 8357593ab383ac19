package api

import (
	"bytes"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontapp/storefront-server/internal/backup"
	"github.com/storefrontapp/storefront-server/internal/config"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/ratelimit"
	"github.com/storefrontapp/storefront-server/internal/service"
	"github.com/storefrontapp/storefront-server/internal/store"
	"github.com/storefrontapp/storefront-server/internal/validation"
)

// setupTestServer creates a server backed by a throwaway store. Search and
// audit are left nil; both degrade gracefully.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	deps := service.Deps{
		Store:     st,
		Validator: validation.New(),
		Logger:    slog.New(slog.DiscardHandler),
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "Test Server"},
	}

	server := NewServer(cfg, st, Services{
		Users:      service.NewUserService(deps),
		Categories: service.NewCategoryService(deps),
		Tags:       service.NewTagService(deps),
		Products:   service.NewProductService(deps),
		Posts:      service.NewPostService(deps),
		Orders:     service.NewOrderService(deps),
		Reviews:    service.NewReviewService(deps),
	}, nil, backup.NewService(st, t.TempDir(), "test", deps.Logger), deps.Logger)
	t.Cleanup(server.Close)

	return server
}

// doJSON sends a request with a JSON body and returns the response.
func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	decodeBody(t, rec, &env)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data["status"])
}

func TestCreateUser(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/users", map[string]any{
		"email":    "ada@example.com",
		"username": "ada",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user UserResponse
	decodeBody(t, rec, &user)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "user", string(user.Role))
	assert.NotEmpty(t, user.ID)

	// The stored password hash must never appear on the wire.
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestUserResponse_OmitsPasswordHash(t *testing.T) {
	u := &domain.User{
		Base:         domain.Base{ID: "usr-1"},
		Email:        "jane@example.com",
		Username:     "jane",
		PasswordHash: "$argon2id$v=19$secret",
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
	u.InitTimestamps()

	data, err := json.Marshal(toUserResponse(u))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "argon2id")
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	server := setupTestServer(t)

	body := map[string]any{
		"email":    "ada@example.com",
		"username": "ada",
		"password": "correct-horse-battery",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	body["username"] = "ada2"
	rec = doJSON(t, server, http.MethodPost, "/api/v1/users", body)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestCreateUser_ShortPasswordUnprocessable(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/users", map[string]any{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestGetUser_NotFound(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/users/usr_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryFlow(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "Electronics",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var parent struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
		Path string `json:"path"`
	}
	decodeBody(t, rec, &parent)
	assert.Equal(t, "electronics", parent.Slug)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/categories", map[string]any{
		"name":   "Laptops",
		"parent": parent.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var child struct {
		ID   string `json:"id"`
		Path string `json:"path"`
	}
	decodeBody(t, rec, &child)
	assert.Equal(t, "electronics/laptops", child.Path)

	// Deleting a category with children must conflict.
	rec = doJSON(t, server, http.MethodDelete, "/api/v1/categories/"+parent.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/categories/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tree struct {
		Tree []struct {
			Children []struct {
				ID string `json:"id"`
			} `json:"children"`
		} `json:"tree"`
	}
	decodeBody(t, rec, &tree)
	require.Len(t, tree.Tree, 1)
	require.Len(t, tree.Tree[0].Children, 1)
	assert.Equal(t, child.ID, tree.Tree[0].Children[0].ID)
}

func TestProductStockConflict(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/products", map[string]any{
		"name":       "Widget",
		"sku":        "WID-1",
		"currency":   "USD",
		"base_price": 1999,
		"stock":      2,
		"status":     "active",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &product)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/products/"+product.ID+"/stock", map[string]any{
		"change": -5,
		"reason": "damage",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = doJSON(t, server, http.MethodPost, "/api/v1/products/"+product.ID+"/stock", map[string]any{
		"change": -2,
		"reason": "damage",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		Stock  int    `json:"stock"`
		Status string `json:"status"`
	}
	decodeBody(t, rec, &updated)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, "out_of_stock", updated.Status)
}

func TestCreateReview_TargetMismatch(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/users", map[string]any{
		"email":    "ada@example.com",
		"username": "ada",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var user struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &user)

	// target_type says product but the post field is set.
	rec = doJSON(t, server, http.MethodPost, "/api/v1/reviews", map[string]any{
		"author":      user.ID,
		"target_type": "product",
		"post":        "pst_123",
		"rating":      5,
		"content":     "great",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestSearchUnavailableWithoutIndex(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/search?q=widget", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	limiter := ratelimit.New(1, 2)
	defer limiter.Stop()

	limited := 0
	handler := RateLimitMiddleware(limiter, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for range 10 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.RemoteAddr = "10.0.0.1:4567"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Positive(t, limited)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.3")
	assert.Equal(t, "198.51.100.3", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.3")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}
