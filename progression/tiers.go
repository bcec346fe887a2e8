package progression

import (
	"fmt"
	"strings"
)

// UserTierState maps a category id to the user's current tier index.
// Missing categories are at tier 0.
type UserTierState map[string]int

// Clone returns an independent copy.
func (t UserTierState) Clone() UserTierState {
	out := make(UserTierState, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// TierUpEvent is emitted when a category advances.
type TierUpEvent struct {
	CategoryID    string `json:"category_id"`
	CategoryTitle string `json:"category_title"`
	TierIndex     int    `json:"tier_index"`
	TierLabel     string `json:"tier_label"`
	Message       string `json:"message"`
}

var defaultTierLabels = []string{"Beginner", "Intermediate", "Advanced", "Expert"}

// TierLabel names a tier index when the catalog does not.
func TierLabel(index int) string {
	if index >= 0 && index < len(defaultTierLabels) {
		return defaultTierLabels[index]
	}
	return fmt.Sprintf("Tier %d", index+1)
}

// TierLabelFor names a tier of a category, preferring the card's own key.
func (c *Catalog) TierLabelFor(categoryID string, index int) string {
	if card, ok := c.cards[categoryID]; ok {
		for _, t := range card.Tiers {
			if t.Index == index && strings.TrimSpace(t.Key) != "" {
				return t.Key
			}
		}
	}
	return TierLabel(index)
}

// MaybeAdvanceTier decides whether categoryID moves from currentTier to the
// next tier. It advances at most one step per call: the visible, enabled
// members of the current tier must all be satisfied, and the next tier must
// have at least one definition. Gate-hidden members never block.
func MaybeAdvanceTier(c *Catalog, categoryID string, currentTier int, eff map[string]EffectiveAchievement) (int, *TierUpEvent) {
	if categoryID == "" {
		return currentTier, nil
	}

	active := 0
	for _, def := range c.TierMembers(categoryID, currentTier) {
		if c.IsDisabled(def.ID) || !IsVisible(def, eff) {
			continue
		}
		active++
		if !eff[def.ID].Satisfied() {
			return currentTier, nil
		}
	}
	if active == 0 {
		return currentTier, nil
	}

	next := currentTier + 1
	if len(c.TierMembers(categoryID, next)) == 0 {
		return currentTier, nil
	}

	title := categoryID
	if card, ok := c.cards[categoryID]; ok && card.Title != "" {
		title = card.Title
	}
	label := c.TierLabelFor(categoryID, next)
	return next, &TierUpEvent{
		CategoryID:    categoryID,
		CategoryTitle: title,
		TierIndex:     next,
		TierLabel:     label,
		Message:       fmt.Sprintf("%s advanced to %s", title, label),
	}
}
