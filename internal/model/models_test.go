package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestXPToReachLevel(t *testing.T) {
	tests := []struct {
		level    int
		expected int64
	}{
		{0, 0},
		{1, 0},
		{2, 10},
		{3, 30},
		{4, 60},
		{5, 100},
		{10, 450},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, XPToReachLevel(tt.level), "level %d", tt.level)
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp       int64
		expected int
	}{
		{-5, 1},
		{0, 1},
		{9, 1},
		{10, 2},
		{29, 2},
		{30, 3},
		{59, 3},
		{60, 4},
		{100, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelForXP(tt.xp), "xp %d", tt.xp)
	}
}

// Property: LevelForXP is consistent with the level thresholds - the returned
// level's threshold is affordable and the next level's is not.
func TestLevelForXPConsistentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xp := rapid.Int64Range(0, 10_000_000).Draw(t, "xp")
		level := LevelForXP(xp)

		if XPToReachLevel(level) > xp {
			t.Fatalf("xp %d cannot afford its own level %d", xp, level)
		}
		if XPToReachLevel(level+1) <= xp {
			t.Fatalf("xp %d should already be level %d", xp, level+1)
		}
	})
}

// Property: more XP never means a lower level.
func TestLevelMonotoneProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(0, 1_000_000).Draw(t, "a")
		b := rapid.Int64Range(0, 1_000_000).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		if LevelForXP(a) > LevelForXP(b) {
			t.Fatalf("level not monotone: LevelForXP(%d)=%d > LevelForXP(%d)=%d",
				a, LevelForXP(a), b, LevelForXP(b))
		}
	})
}
