package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create user",
		Description:   "Registers a new user account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Lists users, optionally filtered by role and status",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update user",
		Description: "Applies a partial update to a user",
		Tags:        []string{"Users"},
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteUser",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{id}",
		Summary:       "Delete user",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/login",
		Summary:     "Verify credentials",
		Tags:        []string{"Users"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID:   "followUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/{id}/following/{targetId}",
		Summary:       "Follow user",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleFollowUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "unfollowUser",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{id}/following/{targetId}",
		Summary:       "Unfollow user",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleUnfollowUser)
}

// === DTOs ===

// UserResponse contains user data in API responses. The password hash never
// leaves the store layer.
type UserResponse struct {
	ID           string            `json:"id" doc:"User ID"`
	Email        string            `json:"email" doc:"Email address"`
	Username     string            `json:"username" doc:"Unique username"`
	Profile      domain.Profile    `json:"profile" doc:"Display information"`
	Addresses    []domain.Address  `json:"addresses,omitempty" doc:"Saved addresses"`
	Role         domain.Role       `json:"role" doc:"Platform role"`
	Status       domain.UserStatus `json:"status" doc:"Account status"`
	Followers    []string          `json:"followers,omitempty" doc:"User IDs following this user"`
	Following    []string          `json:"following,omitempty" doc:"User IDs this user follows"`
	Stats        domain.UserStats  `json:"stats" doc:"Denormalized activity counters"`
	ReferralCode string            `json:"referral_code,omitempty" doc:"Shareable referral code"`
	ReferredBy   string            `json:"referred_by,omitempty" doc:"ID of the referring user"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Profile:      u.Profile,
		Addresses:    u.Addresses,
		Role:         u.Role,
		Status:       u.Status,
		Followers:    u.Followers,
		Following:    u.Following,
		Stats:        u.Stats,
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserOutput wraps a single user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Body service.CreateUserParams
}

// GetUserInput contains parameters for getting a user.
type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// ListUsersInput contains filters for listing users.
type ListUsersInput struct {
	Role   string `query:"role" doc:"Filter by role"`
	Status string `query:"status" doc:"Filter by status"`
}

// ListUsersOutput wraps the user list for Huma.
type ListUsersOutput struct {
	Body struct {
		Users []UserResponse `json:"users" doc:"List of users"`
	}
}

// UpdateUserInput wraps a partial user update for Huma.
type UpdateUserInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body service.UserPatch
}

// LoginInput wraps a credential check for Huma.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" doc:"Email address"`
		Password string `json:"password" doc:"Password"`
	}
}

// FollowInput identifies a follow edge.
type FollowInput struct {
	ID       string `path:"id" doc:"Follower user ID"`
	TargetID string `path:"targetId" doc:"Followee user ID"`
}

// === Handlers ===

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.Users.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	user, err := s.services.Users.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	users, err := s.services.Users.List(ctx, input.Role, input.Status)
	if err != nil {
		return nil, err
	}

	out := &ListUsersOutput{}
	out.Body.Users = make([]UserResponse, 0, len(users))
	for _, u := range users {
		out.Body.Users = append(out.Body.Users, toUserResponse(u))
	}
	return out, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	user, err := s.services.Users.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *GetUserInput) (*struct{}, error) {
	if err := s.services.Users.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*UserOutput, error) {
	user, err := s.services.Users.VerifyPassword(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleFollowUser(ctx context.Context, input *FollowInput) (*struct{}, error) {
	if err := s.services.Users.Follow(ctx, input.ID, input.TargetID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleUnfollowUser(ctx context.Context, input *FollowInput) (*struct{}, error) {
	if err := s.services.Users.Unfollow(ctx, input.ID, input.TargetID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
