package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackedIndicesAreValidAndUnique(t *testing.T) {
	seen := map[int]bool{}
	for _, idx := range TrackedIndices {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, LandmarkCount)
		assert.False(t, seen[idx], "index %d listed twice", idx)
		seen[idx] = true
	}
}

func TestLandmarkSetDefaultsToZeroPoints(t *testing.T) {
	var set LandmarkSet
	assert.True(t, set[NoseTip].IsZero())
	assert.True(t, set[RightEyeUpperLid].IsZero())

	set[NoseTip] = Point{X: 0.5}
	assert.False(t, set[NoseTip].IsZero())
}
