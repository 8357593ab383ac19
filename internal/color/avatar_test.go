package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForUser_Deterministic(t *testing.T) {
	a := ForUser("usr-abc123")
	b := ForUser("usr-abc123")
	assert.Equal(t, a, b)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, a)
}

func TestForUser_VariesAcrossUsers(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range []string{"usr-1", "usr-2", "usr-3", "usr-4", "usr-5"} {
		seen[ForUser(id)] = true
	}
	assert.Greater(t, len(seen), 1, "all users landed on one hue")
}
