package progression

import (
	"math"
	"time"
)

// PointTotals are the points a user holds per leaderboard period.
type PointTotals struct {
	AllTime int `json:"all_time"`
	Week    int `json:"week"`
	Month   int `json:"month"`
	Year    int `json:"year"`
}

// TabPointTotals are all-time points split by tab.
type TabPointTotals struct {
	Skill      int `json:"skill"`
	Social     int `json:"social"`
	Collection int `json:"collection"`
}

// For returns the total for one tab.
func (t TabPointTotals) For(tab Tab) int {
	switch tab {
	case TabSkill:
		return t.Skill
	case TabSocial:
		return t.Social
	case TabCollection:
		return t.Collection
	}
	return 0
}

// ComputePointTotals sums points of completed, enabled achievements and
// buckets them by effective completion date. now must already be in the
// reference time zone; completion dates are compared in that zone. A
// completed achievement without a date is treated as completed now.
func ComputePointTotals(c *Catalog, eff map[string]EffectiveAchievement, now time.Time) PointTotals {
	loc := now.Location()
	current := KeysFor(now, loc)

	var totals PointTotals
	for _, def := range c.defs {
		if c.IsDisabled(def.ID) {
			continue
		}
		e, ok := eff[def.ID]
		if !ok || !e.Satisfied() {
			continue
		}
		totals.AllTime += def.Points

		when := now
		if e.CompletedDate != nil {
			when = *e.CompletedDate
		}
		keys := KeysFor(when, loc)
		if keys.Week == current.Week {
			totals.Week += def.Points
		}
		if keys.Month == current.Month {
			totals.Month += def.Points
		}
		if keys.Year == current.Year {
			totals.Year += def.Points
		}
	}
	return totals
}

// ComputeTabPointTotals sums all-time points per tab. Counters only count
// once progress reaches target.
func ComputeTabPointTotals(c *Catalog, eff map[string]EffectiveAchievement) TabPointTotals {
	var out TabPointTotals
	for _, def := range c.defs {
		if c.IsDisabled(def.ID) {
			continue
		}
		e, ok := eff[def.ID]
		if !ok {
			continue
		}
		done := e.IsCompleted
		if def.IsCounter() {
			done = def.Target > 0 && e.Progress >= def.Target
		}
		if !done {
			continue
		}
		switch def.Tab {
		case TabSkill:
			out.Skill += def.Points
		case TabSocial:
			out.Social += def.Points
		case TabCollection:
			out.Collection += def.Points
		}
	}
	return out
}

// CompletionPercent is the mean completion fraction of the tab's enabled
// achievements, as a percentage. Partially progressed counters contribute
// fractional credit.
func CompletionPercent(c *Catalog, tab Tab, eff map[string]EffectiveAchievement) float64 {
	var sum float64
	n := 0
	for _, def := range c.defs {
		if def.Tab != tab || c.IsDisabled(def.ID) {
			continue
		}
		n++
		e := eff[def.ID]
		if def.IsCounter() {
			if def.Target <= 0 {
				continue
			}
			sum += math.Min(1, math.Max(0, float64(e.Progress)/float64(def.Target)))
			continue
		}
		if e.IsCompleted {
			sum++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

const (
	masteryShare    = 0.8
	masteryRounding = 500
	// PatchThreshold is the tab completion percentage that earns the patch.
	PatchThreshold = 80.0
)

// Mastery is a tab's leveling curve position.
type Mastery struct {
	Tab               Tab     `json:"tab"`
	Step              int     `json:"step"`
	Level             int     `json:"level"`
	PointsIntoLevel   int     `json:"points_into_level"`
	PointsToNextLevel int     `json:"points_to_next_level"`
	LevelProgress     float64 `json:"level_progress"`
	CompletionPercent float64 `json:"completion_percent"`
	PatchEligible     bool    `json:"patch_eligible"`
}

// MasteryStep is 80% of the tab's max points rounded to the nearest 500,
// never less than 500.
func MasteryStep(tabMax int) int {
	step := int(math.Round(float64(tabMax)*masteryShare/masteryRounding)) * masteryRounding
	if step < masteryRounding {
		return masteryRounding
	}
	return step
}

// TabMastery computes mastery for tab from its all-time points.
func (c *Catalog) TabMastery(tab Tab, tabAllTimePoints int, completionPercent float64) Mastery {
	return MasteryFor(tab, MasteryStep(c.TabMaxPoints(tab)), tabAllTimePoints, completionPercent)
}

// MasteryFor is TabMastery with an explicit step.
func MasteryFor(tab Tab, step, points int, completionPercent float64) Mastery {
	if points < 0 {
		points = 0
	}
	into := points % step
	m := Mastery{
		Tab:               tab,
		Step:              step,
		Level:             points / step,
		PointsIntoLevel:   into,
		PointsToNextLevel: step - into,
		CompletionPercent: completionPercent,
		PatchEligible:     completionPercent >= PatchThreshold,
	}
	if into != 0 {
		m.LevelProgress = float64(into) / float64(step)
	}
	return m
}

// Summary bundles everything derived from one snapshot.
type Summary struct {
	Totals     PointTotals     `json:"totals"`
	TabTotals  TabPointTotals  `json:"tab_totals"`
	Rank       RankStatus      `json:"rank"`
	Mastery    map[Tab]Mastery `json:"mastery"`
	Completion map[Tab]float64 `json:"completion"`
	Periods    PeriodKeys      `json:"periods"`
	ComputedAt time.Time       `json:"computed_at"`
}

// Summarize evaluates snap at now and derives totals, rank and mastery.
func Summarize(c *Catalog, snap Snapshot, now time.Time) Summary {
	eff := EvaluateAll(c, snap.States, now.Year())
	s := Summary{
		Totals:     ComputePointTotals(c, eff, now),
		TabTotals:  ComputeTabPointTotals(c, eff),
		Mastery:    make(map[Tab]Mastery, len(Tabs)),
		Completion: make(map[Tab]float64, len(Tabs)),
		Periods:    KeysFor(now, now.Location()),
		ComputedAt: now,
	}
	s.Rank = GetRankAndPrestige(s.Totals.AllTime)
	for _, tab := range Tabs {
		pct := CompletionPercent(c, tab, eff)
		s.Completion[tab] = pct
		s.Mastery[tab] = c.TabMastery(tab, s.TabTotals.For(tab), pct)
	}
	return s
}
