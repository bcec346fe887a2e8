package progression

// PrestigeStep is the width of one prestige band in points.
const PrestigeStep = 10000

// Rank is a named threshold inside a prestige band.
type Rank struct {
	Name    string `json:"name"`
	Minimum int    `json:"minimum"`
}

// Ranks is ordered by Minimum ascending and starts at 0.
var Ranks = []Rank{
	{Name: "Rookie", Minimum: 0},
	{Name: "Casual", Minimum: 500},
	{Name: "Weekend Warrior", Minimum: 1200},
	{Name: "League Regular", Minimum: 2200},
	{Name: "Tournament Player", Minimum: 3500},
	{Name: "Am Contender", Minimum: 5000},
	{Name: "Touring Am", Minimum: 6500},
	{Name: "Sponsored", Minimum: 8000},
	{Name: "Pro", Minimum: 9200},
}

// RankProgress is the position inside the current rank's band.
type RankProgress struct {
	BandStart      int     `json:"band_start"`
	BandEnd        int     `json:"band_end"`
	Ratio          float64 `json:"ratio"`
	PointsToNext   int     `json:"points_to_next"`
	NextRank       string  `json:"next_rank,omitempty"`
	NextIsPrestige bool    `json:"next_is_prestige"`
}

// RankStatus is rank and prestige derived from all-time points.
type RankStatus struct {
	Prestige         int          `json:"prestige"`
	PointsInPrestige int          `json:"points_in_prestige"`
	Rank             string       `json:"rank"`
	RankIndex        int          `json:"rank_index"`
	Progress         RankProgress `json:"progress"`
}

// GetRankAndPrestige derives rank and prestige from all-time points using
// integer arithmetic only. The top rank's band runs to the end of the
// prestige step.
func GetRankAndPrestige(allTimePoints int) RankStatus {
	if allTimePoints < 0 {
		allTimePoints = 0
	}
	st := RankStatus{
		Prestige:         allTimePoints / PrestigeStep,
		PointsInPrestige: allTimePoints % PrestigeStep,
	}
	for i, r := range Ranks {
		if r.Minimum <= st.PointsInPrestige {
			st.RankIndex = i
			st.Rank = r.Name
		}
	}

	start := Ranks[st.RankIndex].Minimum
	end := PrestigeStep
	p := RankProgress{BandStart: start, BandEnd: end, NextIsPrestige: true}
	if st.RankIndex+1 < len(Ranks) {
		next := Ranks[st.RankIndex+1]
		end = next.Minimum
		p.BandEnd = end
		p.NextRank = next.Name
		p.NextIsPrestige = false
	}
	p.PointsToNext = end - st.PointsInPrestige
	if end > start {
		p.Ratio = float64(st.PointsInPrestige-start) / float64(end-start)
	}
	st.Progress = p
	return st
}
