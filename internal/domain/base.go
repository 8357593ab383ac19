// Package domain contains the core business entities and derived-state logic for the storefront platform.
package domain

import "time"

// Base provides the common identity and timestamp fields shared by every root
// entity. Timestamps are server-assigned; clients never supply them.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentID returns the entity's ID. It lets generic code accept any root
// entity without reflection.
func (b *Base) DocumentID() string {
	return b.ID
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (b *Base) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}
