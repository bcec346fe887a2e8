package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRankAndPrestige(t *testing.T) {
	tests := []struct {
		points    int
		prestige  int
		rank      string
		toNext    int
		prestiged bool
	}{
		{points: 0, rank: "Rookie", toNext: 500},
		{points: 499, rank: "Rookie", toNext: 1},
		{points: 500, rank: "Casual", toNext: 700},
		{points: 9199, rank: "Sponsored", toNext: 1},
		{points: 9200, rank: "Pro", toNext: 800, prestiged: true},
		{points: 9999, rank: "Pro", toNext: 1, prestiged: true},
		{points: 10000, prestige: 1, rank: "Rookie", toNext: 500},
		{points: 12345, prestige: 1, rank: "League Regular", toNext: 1155},
		{points: -20, rank: "Rookie", toNext: 500},
	}

	for _, tt := range tests {
		st := GetRankAndPrestige(tt.points)
		assert.Equal(t, tt.prestige, st.Prestige, "points=%d", tt.points)
		assert.Equal(t, tt.rank, st.Rank, "points=%d", tt.points)
		assert.Equal(t, tt.toNext, st.Progress.PointsToNext, "points=%d", tt.points)
		assert.Equal(t, tt.prestiged, st.Progress.NextIsPrestige, "points=%d", tt.points)
	}
}

func TestRankProgressRatio(t *testing.T) {
	st := GetRankAndPrestige(12345)
	assert.Equal(t, 2345, st.PointsInPrestige)
	assert.Equal(t, 2200, st.Progress.BandStart)
	assert.Equal(t, 3500, st.Progress.BandEnd)
	assert.Equal(t, "Tournament Player", st.Progress.NextRank)
	assert.InDelta(t, 145.0/1300.0, st.Progress.Ratio, 1e-9)

	top := GetRankAndPrestige(9600)
	assert.Equal(t, PrestigeStep, top.Progress.BandEnd)
	assert.Empty(t, top.Progress.NextRank)
	assert.InDelta(t, 0.5, top.Progress.Ratio, 1e-9)
}
