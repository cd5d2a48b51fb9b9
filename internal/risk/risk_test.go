package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromScore_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{0, LevelLow},
		{39, LevelLow},
		{40, LevelMedium},
		{80, LevelMedium},
		{81, LevelHigh},
		{100, LevelHigh},
	}

	for _, tt := range tests {
		got := LevelFromScore(tt.score)
		if got != tt.want {
			t.Errorf("LevelFromScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestLevelFromScore_Monotonic(t *testing.T) {
	rank := map[Level]int{LevelLow: 0, LevelMedium: 1, LevelHigh: 2}

	prev := LevelLow
	for score := 0; score <= 100; score++ {
		got := LevelFromScore(score)
		if rank[got] < rank[prev] {
			t.Fatalf("level decreased at score %d: %s after %s", score, got, prev)
		}
		prev = got
	}
}

func TestFallback_KnownProfiles(t *testing.T) {
	low := Fallback("low_risk")
	assert.Equal(t, 12, low.Score)
	assert.Equal(t, LevelLow, low.Level)
	assert.True(t, low.IsFallback())

	med := Fallback("medium_risk")
	assert.Equal(t, 58, med.Score)
	assert.Equal(t, LevelMedium, med.Level)

	high := Fallback("high_risk")
	assert.Equal(t, 91, high.Score)
	assert.Equal(t, LevelHigh, high.Level)
	assert.Contains(t, high.ReasonCodes, "rapid_return_pattern")
}

func TestFallback_UnknownProfileDefaultsToLowestRisk(t *testing.T) {
	a := Fallback("some_new_profile")
	assert.Equal(t, 12, a.Score)
	assert.Equal(t, LevelLow, a.Level)
	assert.Equal(t, ModelSourceFallback, a.ModelSource)
}

func TestFallback_LevelsConsistentWithScores(t *testing.T) {
	for _, id := range []string{"low_risk", "medium_risk", "high_risk"} {
		a := Fallback(id)
		assert.Equal(t, LevelFromScore(a.Score), a.Level, "profile %s", id)
	}
}

func TestFallback_ReturnsIndependentCopies(t *testing.T) {
	a := Fallback("high_risk")
	a.ReasonCodes[0] = "mutated"
	a.Score = 1

	b := Fallback("high_risk")
	assert.Equal(t, 91, b.Score)
	assert.Equal(t, "size_variation_detected", b.ReasonCodes[0])
}

func TestMemoryStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i, score := range []int{12, 58, 91} {
		require.NoError(t, store.Record(ctx, &Record{
			ID:       "risk_" + string(rune('a'+i)),
			UserHash: "hash-1",
			Score:    score,
			Level:    LevelFromScore(score),
		}))
	}

	records, err := store.ListByUser(ctx, "hash-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Most recent first
	assert.Equal(t, 91, records[0].Score)
	assert.Equal(t, 58, records[1].Score)

	none, err := store.ListByUser(ctx, "hash-2", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
