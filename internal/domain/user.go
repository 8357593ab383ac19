package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

// Roles, in ascending order of privilege.
const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// UserStatus represents the user's account status.
type UserStatus string

// Account statuses.
const (
	UserStatusActive              UserStatus = "active"
	UserStatusInactive            UserStatus = "inactive"
	UserStatusSuspended           UserStatus = "suspended"
	UserStatusPendingVerification UserStatus = "pending_verification"
	UserStatusDeleted             UserStatus = "deleted"
)

// Profile holds the user's display information.
type Profile struct {
	FirstName   string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName    string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=60"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	// AvatarColor is the fallback hex color shown when no avatar is set.
	// Assigned at creation, derived from the user ID.
	AvatarColor string `json:"avatar_color,omitempty"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
}

// Address is a shipping or billing address owned by the user.
// Addresses have no independent lifecycle; they go away with the user.
type Address struct {
	Label      string `json:"label,omitempty" validate:"omitempty,max=30"`
	Line1      string `json:"line1" validate:"required,max=100"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=100"`
	City       string `json:"city" validate:"required,max=60"`
	Region     string `json:"region,omitempty" validate:"omitempty,max=60"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
	IsDefault  bool   `json:"is_default,omitempty"`
}

// UserStats holds denormalized activity counters.
// These are best-effort, eventually-applied updates performed as separate
// writes by the services that create the counted entities (see OrderService,
// PostService). They are not atomic with the triggering write.
type UserStats struct {
	PostCount    int `json:"post_count"`
	CommentCount int `json:"comment_count"`
	LikeCount    int `json:"like_count"`
	OrderCount   int `json:"order_count"`
	ReviewCount  int `json:"review_count"`
}

// User represents an account on the platform.
//
// Followers and Following are stored as two independent reference lists: B in
// A's Following does not imply A in B's Followers. UserService keeps both
// sides in sync on every follow/unfollow with two separate writes.
type User struct {
	Base
	Email        string     `json:"email" validate:"required,email,max=254"`
	Username     string     `json:"username" validate:"required,min=3,max=30"`
	PasswordHash string     `json:"password_hash,omitempty"` // Stored, never exposed; the API layer maps users through DTOs.
	Profile      Profile    `json:"profile"`
	Addresses    []Address  `json:"addresses,omitempty" validate:"dive"`
	Role         Role       `json:"role" validate:"required,oneof=user moderator admin super_admin"`
	Status       UserStatus `json:"status" validate:"required,oneof=active inactive suspended pending_verification deleted"`
	Followers    []string   `json:"followers,omitempty"`
	Following    []string   `json:"following,omitempty"`
	Stats        UserStats  `json:"stats"`
	ReferralCode string     `json:"referral_code,omitempty"` // Sparse unique, set once at creation.
	ReferredBy   string     `json:"referred_by,omitempty"`   // Weak reference to the referring user.
	LastLoginAt  time.Time  `json:"last_login_at,omitzero"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// IsActive returns true if the user can log in and use the platform.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// FullName returns the user's full name, composed from first and last names.
func (u *User) FullName() string {
	first, last := u.Profile.FirstName, u.Profile.LastName
	switch {
	case first == "" && last == "":
		return u.Profile.DisplayName
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// DisplayName returns the best available name to show for the user.
// Prefers the profile display name, falls back to full name, then username.
func (u *User) DisplayName() string {
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// IsFollowing reports whether this user follows the given user ID.
func (u *User) IsFollowing(userID string) bool {
	return containsID(u.Following, userID)
}

// AddFollowing records that this user follows userID. Idempotent.
func (u *User) AddFollowing(userID string) bool {
	if containsID(u.Following, userID) {
		return false
	}
	u.Following = append(u.Following, userID)
	return true
}

// RemoveFollowing removes userID from this user's following list. Idempotent.
func (u *User) RemoveFollowing(userID string) bool {
	var removed bool
	u.Following, removed = removeID(u.Following, userID)
	return removed
}

// AddFollower records that userID follows this user. Idempotent.
func (u *User) AddFollower(userID string) bool {
	if containsID(u.Followers, userID) {
		return false
	}
	u.Followers = append(u.Followers, userID)
	return true
}

// RemoveFollower removes userID from this user's followers list. Idempotent.
func (u *User) RemoveFollower(userID string) bool {
	var removed bool
	u.Followers, removed = removeID(u.Followers, userID)
	return removed
}

// DefaultAddress returns the address marked default, or the first address,
// or nil when the user has none.
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	if len(u.Addresses) > 0 {
		return &u.Addresses[0]
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
