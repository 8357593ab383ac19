package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag_Recalculate_TotalUsage(t *testing.T) {
	tag := &Tag{}
	tag.Recalculate()
	assert.Equal(t, 0, tag.Stats.TotalUsage)

	tag.Stats.ProductCount = 4
	tag.Stats.PostCount = 3
	tag.Recalculate()
	assert.Equal(t, 7, tag.Stats.TotalUsage)

	// A stale hand-set value gets overwritten unconditionally.
	tag.Stats.TotalUsage = 99
	tag.Recalculate()
	assert.Equal(t, 7, tag.Stats.TotalUsage)
}
