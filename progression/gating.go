package progression

// The requiresId and gateRequiresId graphs are forests: NewCatalog rejects
// requiresId cycles, and both resolvers below only ever look at the
// immediate parent, so they cannot loop regardless of catalog contents.

// IsUnlocked reports whether def may be acted on as far as its requiresId
// parent is concerned. A parent missing from eff keeps def locked.
func IsUnlocked(def Definition, eff map[string]EffectiveAchievement) bool {
	return parentSatisfied(def.RequiresID, eff)
}

// IsVisible reports whether def is shown at all, based on gateRequiresId.
func IsVisible(def Definition, eff map[string]EffectiveAchievement) bool {
	return parentSatisfied(def.GateRequiresID, eff)
}

// IsActionable is true when def is both visible and unlocked.
func IsActionable(def Definition, eff map[string]EffectiveAchievement) bool {
	return IsVisible(def, eff) && IsUnlocked(def, eff)
}

func parentSatisfied(parentID string, eff map[string]EffectiveAchievement) bool {
	if parentID == "" {
		return true
	}
	parent, ok := eff[parentID]
	if !ok {
		return false
	}
	return parent.Satisfied()
}

// unlockedSet returns the ids of every requiresId dependent that is
// currently unlocked.
func unlockedSet(c *Catalog, eff map[string]EffectiveAchievement) map[string]bool {
	out := make(map[string]bool)
	for _, def := range c.defs {
		if def.RequiresID == "" {
			continue
		}
		if IsUnlocked(def, eff) {
			out[def.ID] = true
		}
	}
	return out
}
