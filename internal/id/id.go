// Package id generates unique identifiers for domain entities.
package id

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. Every stored document carries one of these so that a bare
// identifier is enough to tell what collection it belongs to.
const (
	PrefixUser     = "usr"
	PrefixCategory = "cat"
	PrefixTag      = "tag"
	PrefixProduct  = "prd"
	PrefixPost     = "pst"
	PrefixOrder    = "ord"
	PrefixReview   = "rev"

	// Nested documents owned by a post or review.
	PrefixComment = "cmt"
	PrefixReply   = "rpl"
)

// referralAlphabet deliberately omits easily-confused characters (0/O, 1/I/L)
// because referral codes get read aloud and typed by hand.
const referralAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const referralLength = 8

// orderNumberAlphabet keeps order numbers digits-and-uppercase so they survive
// case-folding invoice systems.
const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const orderNumberSuffixLength = 6

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "prd-V1StGXR8_Z5jdHi6B-myT")
//
// NanoIDs are URL-friendly, compact (21 characters vs UUID's 36),
// and use a larger alphabet for better entropy per character.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	// Use default NanoID (21 characters, URL-safe alphabet)
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when you're certain the system entropy is available,
// or when failure should crash the program (e.g., during initialization).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// ReferralCode generates an 8-character referral code for a new user.
// Generated exactly once at user creation; the store's sparse unique index is
// the authority on collisions, callers retry on a duplicate error.
func ReferralCode() (string, error) {
	code, err := gonanoid.Generate(referralAlphabet, referralLength)
	if err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	return code, nil
}

// OrderNumber generates a human-readable order number.
// Format: ORD-20260901-7F3K9Q. Assigned once at order creation and never
// reassigned afterwards.
func OrderNumber(now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(orderNumberAlphabet, orderNumberSuffixLength)
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}
