// progression/catalog.go - Achievement catalog model
package progression

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Tab is one of the three achievement domains shown as tabs in the app.
type Tab string

const (
	TabSkill      Tab = "skill"
	TabSocial     Tab = "social"
	TabCollection Tab = "collection"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabSkill, TabSocial, TabCollection}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	return t == TabSkill || t == TabSocial || t == TabCollection
}

type Kind string

const (
	KindToggle  Kind = "toggle"
	KindCounter Kind = "counter"
)

type ResetPolicy string

const (
	ResetNever  ResetPolicy = "never"
	ResetYearly ResetPolicy = "yearly"
)

// Definition is the immutable catalog entry for one achievement.
type Definition struct {
	ID             string
	Tab            Tab
	Kind           Kind
	Target         int
	ResetPolicy    ResetPolicy
	RequiresID     string
	GateRequiresID string
	CategoryID     string
	TierIndex      int
	Points         int

	Title       string
	Description string
}

// IsCounter reports whether the achievement is tracked by progress.
func (d Definition) IsCounter() bool {
	return d.Kind == KindCounter
}

// Tier is one rung of a category card.
type Tier struct {
	Index int
	Key   string
}

// CategoryCard groups definitions into an ordered tier ladder.
type CategoryCard struct {
	ID    string
	Tab   Tab
	Title string
	Tiers []Tier
}

// Catalog is the validated, read-only set of definitions and category
// cards. It is built once at process start and never mutated.
type Catalog struct {
	defs     []Definition
	byID     map[string]int
	cards    map[string]CategoryCard
	members  map[string]map[int][]string // category -> tier -> ids
	disabled map[string]struct{}
	tabMax   map[Tab]int
}

// Issue is a catalog integrity finding. Warnings do not prevent the
// catalog from loading; the runtime treats dangling references as locked.
type Issue struct {
	ID      string
	Warning bool
	Message string
}

func (i Issue) String() string {
	level := "error"
	if i.Warning {
		level = "warning"
	}
	return fmt.Sprintf("%s: %s: %s", level, i.ID, i.Message)
}

var ErrInvalidCatalog = errors.New("invalid catalog")

// NewCatalog validates the definitions and builds lookup tables.
//
// Duplicate ids and cycles in the requiresId graph are fatal. Dangling
// requiresId/gateRequiresId references, counters without a positive target
// and unknown tabs are returned as warnings.
func NewCatalog(defs []Definition, cards []CategoryCard, disabled []string) (*Catalog, []Issue, error) {
	c := &Catalog{
		defs:     make([]Definition, 0, len(defs)),
		byID:     make(map[string]int, len(defs)),
		cards:    make(map[string]CategoryCard, len(cards)),
		members:  make(map[string]map[int][]string),
		disabled: make(map[string]struct{}, len(disabled)),
		tabMax:   make(map[Tab]int, len(Tabs)),
	}

	var issues []Issue
	var fatal []string

	for _, id := range disabled {
		if id = strings.TrimSpace(id); id != "" {
			c.disabled[id] = struct{}{}
		}
	}

	for _, d := range defs {
		if d.ID == "" {
			fatal = append(fatal, "definition with empty id")
			continue
		}
		if _, dup := c.byID[d.ID]; dup {
			issues = append(issues, Issue{ID: d.ID, Message: "duplicate id"})
			fatal = append(fatal, d.ID+": duplicate id")
			continue
		}
		if d.ResetPolicy == "" {
			d.ResetPolicy = ResetYearly
		}
		if d.Kind == "" {
			d.Kind = KindToggle
		}
		if !d.Tab.Valid() {
			issues = append(issues, Issue{ID: d.ID, Warning: true, Message: fmt.Sprintf("unknown tab %q", d.Tab)})
		}
		if d.IsCounter() && d.Target < 1 {
			issues = append(issues, Issue{ID: d.ID, Warning: true, Message: "counter has no positive target and can never complete"})
		}
		c.byID[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}

	for _, card := range cards {
		sort.Slice(card.Tiers, func(i, j int) bool { return card.Tiers[i].Index < card.Tiers[j].Index })
		c.cards[card.ID] = card
	}

	for _, d := range c.defs {
		if d.RequiresID != "" {
			if _, ok := c.byID[d.RequiresID]; !ok {
				issues = append(issues, Issue{ID: d.ID, Warning: true, Message: fmt.Sprintf("requiresId %q does not exist", d.RequiresID)})
			}
		}
		if d.GateRequiresID != "" {
			if _, ok := c.byID[d.GateRequiresID]; !ok {
				issues = append(issues, Issue{ID: d.ID, Warning: true, Message: fmt.Sprintf("gateRequiresId %q does not exist", d.GateRequiresID)})
			}
		}
		if d.CategoryID != "" {
			if _, ok := c.cards[d.CategoryID]; !ok {
				issues = append(issues, Issue{ID: d.ID, Warning: true, Message: fmt.Sprintf("category %q has no card", d.CategoryID)})
			}
			tiers := c.members[d.CategoryID]
			if tiers == nil {
				tiers = make(map[int][]string)
				c.members[d.CategoryID] = tiers
			}
			tiers[d.TierIndex] = append(tiers[d.TierIndex], d.ID)
		}
		if _, off := c.disabled[d.ID]; !off {
			c.tabMax[d.Tab] += d.Points
		}
	}

	for _, id := range c.requiresCycles() {
		issues = append(issues, Issue{ID: id, Message: "requiresId chain forms a cycle"})
		fatal = append(fatal, id+": requiresId cycle")
	}

	if len(fatal) > 0 {
		return nil, issues, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(fatal, "; "))
	}
	return c, issues, nil
}

// requiresCycles walks each requiresId chain and returns the ids that sit
// on a cycle. Chains are followed at most len(defs) steps.
func (c *Catalog) requiresCycles() []string {
	onCycle := make(map[string]struct{})
	for _, start := range c.defs {
		seen := map[string]struct{}{start.ID: {}}
		cur := start
		for cur.RequiresID != "" {
			idx, ok := c.byID[cur.RequiresID]
			if !ok {
				break
			}
			if _, loop := seen[cur.RequiresID]; loop {
				if cur.RequiresID == start.ID {
					onCycle[start.ID] = struct{}{}
				}
				break
			}
			seen[cur.RequiresID] = struct{}{}
			cur = c.defs[idx]
		}
	}
	ids := lo.Keys(onCycle)
	sort.Strings(ids)
	return ids
}

// Definitions returns every definition in catalog order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Definition looks up a definition by id.
func (c *Catalog) Definition(id string) (Definition, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[idx], true
}

// TabDefinitions returns the definitions of one tab in catalog order,
// disabled ones included.
func (c *Catalog) TabDefinitions(tab Tab) []Definition {
	return lo.Filter(c.defs, func(d Definition, _ int) bool { return d.Tab == tab })
}

// IsDisabled reports whether id is on the denylist.
func (c *Catalog) IsDisabled(id string) bool {
	_, ok := c.disabled[id]
	return ok
}

// DisabledIDs returns the denylist, sorted.
func (c *Catalog) DisabledIDs() []string {
	ids := lo.Keys(c.disabled)
	sort.Strings(ids)
	return ids
}

// Card returns a category card by id.
func (c *Catalog) Card(categoryID string) (CategoryCard, bool) {
	card, ok := c.cards[categoryID]
	return card, ok
}

// Cards returns all category cards sorted by tab then id.
func (c *Catalog) Cards() []CategoryCard {
	cards := lo.Values(c.cards)
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Tab != cards[j].Tab {
			return cards[i].Tab < cards[j].Tab
		}
		return cards[i].ID < cards[j].ID
	})
	return cards
}

// TierMembers returns the definitions of categoryID at tierIndex.
func (c *Catalog) TierMembers(categoryID string, tierIndex int) []Definition {
	ids := c.members[categoryID][tierIndex]
	out := make([]Definition, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.defs[c.byID[id]])
	}
	return out
}

// TabMaxPoints is the sum of points of every non-disabled definition in tab.
func (c *Catalog) TabMaxPoints(tab Tab) int {
	return c.tabMax[tab]
}
