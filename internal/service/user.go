package service

import (
	"context"
	"log/slog"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/color"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/id"
	"github.com/storefrontapp/storefront-server/internal/password"
	"github.com/storefrontapp/storefront-server/internal/store"
	"github.com/storefrontapp/storefront-server/internal/validation"
)

// UserService manages user accounts and the follow graph.
type UserService struct {
	deps Deps
}

// NewUserService creates a new user service.
func NewUserService(deps Deps) *UserService {
	return &UserService{deps: deps}
}

func (s *UserService) store() *store.Store              { return s.deps.Store }
func (s *UserService) validator() *validation.Validator { return s.deps.Validator }
func (s *UserService) logger() *slog.Logger             { return s.deps.logger() }

// CreateUserParams is the caller-supplied draft for a new account.
type CreateUserParams struct {
	Email      string         `json:"email" validate:"required,email,max=254"`
	Username   string         `json:"username" validate:"required,min=3,max=30"`
	Password   string         `json:"password" validate:"required,min=8,max=128"`
	Profile    domain.Profile `json:"profile"`
	Role       domain.Role    `json:"role,omitempty"`
	ReferredBy string         `json:"referred_by,omitempty"` // Referral code of the referrer.
}

// Create registers a new user. The referral code is generated exactly once
// here and never reassigned; email and username uniqueness is enforced by
// the store's indexes.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (*domain.User, error) {
	if err := s.validator().Validate(params); err != nil {
		return nil, err
	}

	hash, err := password.Hash(params.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "hash password")
	}

	role := params.Role
	if role == "" {
		role = domain.RoleUser
	}

	referralCode, err := id.ReferralCode()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate referral code")
	}

	user := &domain.User{
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: hash,
		Profile:      params.Profile,
		Role:         role,
		Status:       domain.UserStatusActive,
		ReferralCode: referralCode,
	}
	user.ID = id.MustGenerate(id.PrefixUser)
	user.InitTimestamps()
	if user.Profile.AvatarColor == "" {
		user.Profile.AvatarColor = color.ForUser(user.ID)
	}

	// Resolve the referrer by code; an unknown code is a bad reference, not
	// a silent drop.
	if params.ReferredBy != "" {
		referrer, err := s.store().Users.GetByIndex(ctx, "referral_code", params.ReferredBy)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.InvalidReference("referred_by")
			}
			return nil, err
		}
		user.ReferredBy = referrer.ID
	}

	if err := s.store().Users.Create(ctx, user.ID, user); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "user", user.ID, audit.ActionCreate, user.ID)
	s.logger().Info("user created", "user_id", user.ID, "username", user.Username)

	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.store().Users.Get(ctx, userID)
}

// GetByEmail returns a user by email, case-insensitively.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.store().Users.GetByIndex(ctx, "email", email)
}

// GetByUsername returns a user by username, case-insensitively.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.store().Users.GetByIndex(ctx, "username", username)
}

// VerifyPassword checks a login attempt against the stored hash.
func (s *UserService) VerifyPassword(ctx context.Context, email, pw string) (*domain.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := password.Verify(user.PasswordHash, pw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "verify password")
	}
	if !ok {
		return nil, errors.Validation("invalid credentials")
	}
	return user, nil
}

// UserPatch is a partial update: nil fields are left untouched, non-nil
// fields fully replace the prior value.
type UserPatch struct {
	Email     *string            `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Username  *string            `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Password  *string            `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Profile   *domain.Profile    `json:"profile,omitempty"`
	Addresses *[]domain.Address  `json:"addresses,omitempty" validate:"omitempty,dive"`
	Role      *domain.Role       `json:"role,omitempty" validate:"omitempty,oneof=user moderator admin super_admin"`
	Status    *domain.UserStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended pending_verification deleted"`
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, userID string, patch UserPatch) (*domain.User, error) {
	if err := s.validator().Validate(patch); err != nil {
		return nil, err
	}

	user, err := s.store().Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Password != nil {
		hash, err := password.Hash(*patch.Password)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "hash password")
		}
		user.PasswordHash = hash
	}
	if patch.Profile != nil {
		user.Profile = *patch.Profile
	}
	if patch.Addresses != nil {
		user.Addresses = *patch.Addresses
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Status != nil {
		user.Status = *patch.Status
	}

	user.Touch()
	if err := s.store().Users.Update(ctx, userID, user); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "user", userID, audit.ActionUpdate, userID)
	return user, nil
}

// Delete removes a user. References from other documents (post authors,
// review authors, followers) are weak and stay behind; cleanup is a separate
// policy, deliberately not performed here.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.store().Users.Delete(ctx, userID); err != nil {
		return err
	}
	s.deps.recordAudit(ctx, "user", userID, audit.ActionDelete, "")
	return nil
}

// List returns users, optionally filtered by role and status.
func (s *UserService) List(ctx context.Context, role, status string) ([]*domain.User, error) {
	seq := s.store().Users.List(ctx)
	if role != "" {
		seq = s.store().Users.ListByIndex(ctx, "role", role)
	} else if status != "" {
		seq = s.store().Users.ListByIndex(ctx, "status", status)
	}

	users, err := store.Collect(seq)
	if err != nil {
		return nil, err
	}
	if role != "" && status != "" {
		users = filterUsers(users, func(u *domain.User) bool {
			return string(u.Status) == status
		})
	}
	return users, nil
}

func filterUsers(users []*domain.User, keep func(*domain.User) bool) []*domain.User {
	out := users[:0]
	for _, u := range users {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

// Follow makes follower follow followee. Both reference lists are updated
// with two separate document writes: first the follower's Following, then the
// followee's Followers. The second write is best-effort — if it fails the two
// lists diverge until a later follow/unfollow repairs them, which is the
// documented weakness of per-document atomicity.
func (s *UserService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return errors.Validation("cannot follow yourself")
	}

	follower, err := s.store().Users.Get(ctx, followerID)
	if err != nil {
		return err
	}
	followee, err := s.store().Users.Get(ctx, followeeID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.InvalidReference("followee")
		}
		return err
	}

	if !follower.AddFollowing(followeeID) {
		return nil // Already following; idempotent.
	}
	follower.Touch()
	if err := s.store().Users.Update(ctx, followerID, follower); err != nil {
		return err
	}

	if followee.AddFollower(followerID) {
		followee.Touch()
		if err := s.store().Users.Update(ctx, followeeID, followee); err != nil {
			s.logger().Warn("follower list update failed, lists diverged",
				"follower", followerID, "followee", followeeID, "error", err)
		}
	}

	return nil
}

// Unfollow reverses Follow with the same two-write, best-effort contract.
func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	follower, err := s.store().Users.Get(ctx, followerID)
	if err != nil {
		return err
	}

	if !follower.RemoveFollowing(followeeID) {
		return nil // Was not following; idempotent.
	}
	follower.Touch()
	if err := s.store().Users.Update(ctx, followerID, follower); err != nil {
		return err
	}

	followee, err := s.store().Users.Get(ctx, followeeID)
	if err != nil {
		// Followee may have been deleted; nothing to repair.
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		return err
	}
	if followee.RemoveFollower(followerID) {
		followee.Touch()
		if err := s.store().Users.Update(ctx, followeeID, followee); err != nil {
			s.logger().Warn("follower list update failed, lists diverged",
				"follower", followerID, "followee", followeeID, "error", err)
		}
	}

	return nil
}
