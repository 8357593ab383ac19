// Package content processes rich-text post bodies.
//
// Post content arrives from rich-text editors as either HTML or Markdown.
// Everything derived from content (read time, excerpts, search text) works on
// a plain-text rendering so the numbers don't change depending on which editor
// the author used.
package content

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// markdownSyntax strips the markdown punctuation that would otherwise count
// as words or inflate excerpts.
var markdownSyntax = regexp.MustCompile("[#*_`>~\\[\\]()!-]+")

const wordsPerMinute = 200

// ContainsHTML checks if a string appears to contain HTML markup.
// Returns true if common HTML tags are detected.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts HTML content to Markdown.
// If the input doesn't contain HTML, it's returned unchanged.
func ToMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		// If conversion fails, return the original string
		return s
	}

	return strings.TrimSpace(markdown)
}

// PlainText renders content down to whitespace-separated plain text.
func PlainText(s string) string {
	s = ToMarkdown(s)
	s = markdownSyntax.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts the words in the plain-text rendering of content.
func WordCount(s string) int {
	return len(strings.Fields(PlainText(s)))
}

// ReadTime estimates reading time in whole minutes at 200 words per minute.
// Always at least 1 for non-empty content, 0 for empty content.
func ReadTime(s string) int {
	words := WordCount(s)
	if words == 0 {
		return 0
	}
	// ceil(words / wordsPerMinute) without importing math for a float round-trip.
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// Excerpt returns the first maxLen characters of the plain-text rendering,
// cut at a word boundary with an ellipsis when truncated.
func Excerpt(s string, maxLen int) string {
	text := PlainText(s)
	if len(text) <= maxLen {
		return text
	}

	cut := text[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
