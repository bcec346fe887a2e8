package progression

import (
	"sort"
	"time"
)

// Reason explains why a mutation was not applied. Rejections are not
// errors: they only happen when the caller's view is out of date.
type Reason string

const (
	ReasonApplied   Reason = ""
	ReasonUnknown   Reason = "unknown_achievement"
	ReasonWrongTab  Reason = "wrong_tab"
	ReasonWrongKind Reason = "wrong_kind"
	ReasonDisabled  Reason = "disabled"
	ReasonLocked    Reason = "locked"
	ReasonNoTarget  Reason = "no_target"
	ReasonNoChange  Reason = "no_change"
)

// Result is the outcome of one toggle or increment.
type Result struct {
	Snapshot      Snapshot
	Applied       bool
	Reason        Reason
	Achievement   EffectiveAchievement
	TierUp        *TierUpEvent
	NewlyUnlocked []string
}

// ApplyToggle flips a toggle achievement. snap is not modified; the next
// snapshot is returned in Result. now is the current time in the reference
// zone and supplies both the completion stamp and the current year.
func ApplyToggle(c *Catalog, snap Snapshot, tab Tab, id string, now time.Time) Result {
	return apply(c, snap, tab, id, KindToggle, now, func(def Definition, cur AchievementState) (AchievementState, Reason) {
		next := cur
		if cur.IsCompleted {
			clearCompletion(&next)
		} else {
			next.IsCompleted = true
			stampCompletion(&next, def, now)
		}
		return next, ReasonApplied
	})
}

// ApplyIncrement adds delta (possibly negative) to a counter, clamping
// progress to [0, target]. Crossing the target stamps or clears the
// completion record the same way a toggle does.
func ApplyIncrement(c *Catalog, snap Snapshot, tab Tab, id string, delta int, now time.Time) Result {
	return apply(c, snap, tab, id, KindCounter, now, func(def Definition, cur AchievementState) (AchievementState, Reason) {
		if def.Target <= 0 {
			return cur, ReasonNoTarget
		}
		// Compare against the headroom so extreme deltas cannot overflow.
		var progress int
		switch {
		case delta >= def.Target-cur.Progress:
			progress = def.Target
		case delta <= -cur.Progress:
			progress = 0
		default:
			progress = cur.Progress + delta
		}
		if progress == cur.Progress {
			return cur, ReasonNoChange
		}

		next := cur
		next.Progress = progress
		wasDone := cur.Progress >= def.Target
		isDone := progress >= def.Target
		switch {
		case !wasDone && isDone:
			next.IsCompleted = true
			stampCompletion(&next, def, now)
		case wasDone && !isDone:
			clearCompletion(&next)
		}
		return next, ReasonApplied
	})
}

type mutation func(def Definition, cur AchievementState) (AchievementState, Reason)

func apply(c *Catalog, snap Snapshot, tab Tab, id string, kind Kind, now time.Time, mutate mutation) Result {
	reject := func(r Reason) Result {
		return Result{Snapshot: snap, Reason: r}
	}

	def, ok := c.Definition(id)
	switch {
	case !ok:
		return reject(ReasonUnknown)
	case def.Tab != tab:
		return reject(ReasonWrongTab)
	case def.Kind != kind:
		return reject(ReasonWrongKind)
	case c.IsDisabled(def.ID):
		return reject(ReasonDisabled)
	}

	year := now.Year()
	before := EvaluateAll(c, snap.States, year)
	if !IsUnlocked(def, before) {
		return reject(ReasonLocked)
	}

	// Every achievement's effective value becomes its new baseline, which
	// is what persists yearly resets.
	next := Snapshot{
		States: make(map[string]AchievementState, len(before)),
		Tiers:  snap.Tiers.Clone(),
	}
	// States for ids the catalog dropped are carried along untouched.
	for sid, st := range snap.Clone().States {
		next.States[sid] = st
	}
	for _, d := range c.defs {
		next.States[d.ID] = before[d.ID].State()
	}

	// Keys come from the catalog; id may alias a caller's reusable buffer.
	updated, reason := mutate(def, next.States[def.ID])
	if reason != ReasonApplied {
		return reject(reason)
	}
	next.States[def.ID] = updated

	after := EvaluateAll(c, next.States, year)
	res := Result{
		Snapshot:      next,
		Applied:       true,
		Achievement:   after[def.ID],
		NewlyUnlocked: newlyUnlocked(c, before, after),
	}

	if def.CategoryID != "" {
		cur := next.Tiers[def.CategoryID]
		tier, event := MaybeAdvanceTier(c, def.CategoryID, cur, after)
		if event != nil {
			next.Tiers[def.CategoryID] = tier
			res.TierUp = event
		}
	}
	return res
}

func stampCompletion(s *AchievementState, def Definition, now time.Time) {
	t := now
	s.CompletedDate = &t
	s.CompletedYear = nil
	if def.ResetPolicy == ResetYearly {
		y := now.Year()
		s.CompletedYear = &y
	}
	s.LegacyYear = nil
}

func clearCompletion(s *AchievementState) {
	s.IsCompleted = false
	s.CompletedDate = nil
	s.CompletedYear = nil
	s.LegacyYear = nil
}

// newlyUnlocked lists enabled requiresId dependents that were locked in
// before and are unlocked in after, sorted for stable output.
func newlyUnlocked(c *Catalog, before, after map[string]EffectiveAchievement) []string {
	was := unlockedSet(c, before)
	var ids []string
	for id := range unlockedSet(c, after) {
		if !was[id] && !c.IsDisabled(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
