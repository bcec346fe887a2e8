package progression

import "time"

// AchievementState is what is persisted per user per achievement.
type AchievementState struct {
	ID            string
	IsCompleted   bool
	Progress      int
	CompletedDate *time.Time
	CompletedYear *int
	// LegacyYear is the "year" field written by older clients. It is only
	// read as a fallback for CompletedYear and never written back.
	LegacyYear *int
}

// yearMarker returns the year a yearly achievement is anchored to.
func (s AchievementState) yearMarker() (int, bool) {
	if s.CompletedYear != nil {
		return *s.CompletedYear, true
	}
	if s.LegacyYear != nil {
		return *s.LegacyYear, true
	}
	return 0, false
}

// EffectiveAchievement is an AchievementState with reset policy and counter
// completion applied for a given year. Gating, tiering and scoring only
// ever look at effective values.
type EffectiveAchievement struct {
	ID            string
	Kind          Kind
	Target        int
	IsCompleted   bool
	Progress      int
	CompletedDate *time.Time
	CompletedYear *int
}

// Satisfied reports whether the achievement counts as done for gating and
// tier purposes.
func (e EffectiveAchievement) Satisfied() bool {
	if e.IsCompleted {
		return true
	}
	return e.Kind == KindCounter && e.Target > 0 && e.Progress >= e.Target
}

// State converts the effective value back into a storable baseline.
func (e EffectiveAchievement) State() AchievementState {
	return AchievementState{
		ID:            e.ID,
		IsCompleted:   e.IsCompleted,
		Progress:      e.Progress,
		CompletedDate: cloneTime(e.CompletedDate),
		CompletedYear: cloneInt(e.CompletedYear),
	}
}

// Evaluate resolves the effective value of one achievement for currentYear.
// stored may be nil when the user has never touched the achievement.
func Evaluate(def Definition, stored *AchievementState, currentYear int) EffectiveAchievement {
	eff := EffectiveAchievement{
		ID:     def.ID,
		Kind:   def.Kind,
		Target: def.Target,
	}
	if stored != nil {
		eff.IsCompleted = stored.IsCompleted
		eff.Progress = stored.Progress
		eff.CompletedDate = cloneTime(stored.CompletedDate)
		if y, ok := stored.yearMarker(); ok {
			eff.CompletedYear = &y
		}
	}
	if eff.Progress < 0 {
		eff.Progress = 0
	}

	// A missing year marker means "this year", not "stale".
	if def.ResetPolicy != ResetNever && eff.CompletedYear != nil && *eff.CompletedYear != currentYear {
		eff.IsCompleted = false
		eff.Progress = 0
		eff.CompletedDate = nil
		eff.CompletedYear = nil
	}

	if def.IsCounter() {
		eff.IsCompleted = def.Target > 0 && eff.Progress >= def.Target
	}
	return eff
}

// EvaluateAll evaluates every catalog definition against states. Stored
// entries for ids the catalog no longer knows are ignored.
func EvaluateAll(c *Catalog, states map[string]AchievementState, currentYear int) map[string]EffectiveAchievement {
	out := make(map[string]EffectiveAchievement, len(c.defs))
	for _, def := range c.defs {
		var stored *AchievementState
		if s, ok := states[def.ID]; ok {
			stored = &s
		}
		out[def.ID] = Evaluate(def, stored, currentYear)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
