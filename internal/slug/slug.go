// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Make converts a string to a URL-safe slug.
// "Wireless Headphones" -> "wireless-headphones".
// "Café Crème" -> "cafe-creme".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
//
// Make is idempotent: Make(Make(s)) == Make(s).
func Make(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Lowercase.
	s = strings.ToLower(s)

	// Replace non-alphanumeric with hyphens.
	s = nonAlphanumeric.ReplaceAllString(s, "-")

	// Collapse multiple hyphens.
	s = multipleHyphens.ReplaceAllString(s, "-")

	// Trim leading/trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}

// Unique slugifies text, appending disambiguator only when the base slug is
// already taken according to the exists check. Posts use this with their
// creation timestamp; categories, products and tags skip it entirely and let
// the store's unique index reject the collision instead.
func Unique(text, disambiguator string, exists func(string) bool) string {
	base := Make(text)
	if base == "" {
		base = Make(disambiguator)
	}
	if exists == nil || !exists(base) {
		return base
	}
	return Make(base + "-" + disambiguator)
}
