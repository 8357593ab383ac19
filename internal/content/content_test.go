package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"paragraph tag", "<p>hello</p>", true},
		{"bold tag", "some <b>bold</b> text", true},
		{"self closing br", "line<br/>break", true},
		{"plain text", "just plain text", false},
		{"markdown", "# Heading\n\nSome **bold** text", false},
		{"angle brackets in prose", "price < 10 and > 5", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsHTML(tt.input))
		})
	}
}

func TestToMarkdown_PassthroughForPlainText(t *testing.T) {
	in := "already markdown, leave me alone"
	assert.Equal(t, in, ToMarkdown(in))
}

func TestToMarkdown_ConvertsHTML(t *testing.T) {
	out := ToMarkdown("<p>Hello <strong>world</strong></p>")
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "**world**")
	assert.NotContains(t, out, "<p>")
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"single word", "hello", 1},
		{"plain sentence", "the quick brown fox", 4},
		{"html content", "<p>the quick <em>brown</em> fox</p>", 4},
		{"extra whitespace", "  spaced   out   words  ", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WordCount(tt.input))
		})
	}
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 0, ReadTime(""))
	assert.Equal(t, 1, ReadTime("short post"))

	// Exactly 200 words reads in one minute, 201 rounds up to two.
	exactly := strings.Repeat("word ", 200)
	assert.Equal(t, 1, ReadTime(exactly))
	assert.Equal(t, 2, ReadTime(exactly+"extra"))
}

func TestExcerpt(t *testing.T) {
	short := "a short post"
	assert.Equal(t, short, Excerpt(short, 50))

	long := "the quick brown fox jumps over the lazy dog"
	got := Excerpt(long, 20)
	assert.True(t, strings.HasSuffix(got, "…"), "truncated excerpt should end with ellipsis, got %q", got)
	assert.LessOrEqual(t, len(got), 20+len("…"))
	// Cut lands on a word boundary, never mid-word.
	trimmed := strings.TrimSuffix(got, "…")
	assert.True(t, strings.HasPrefix(long, trimmed), "excerpt %q is not a prefix of the source", trimmed)
}
