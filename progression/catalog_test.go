package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogDefaults(t *testing.T) {
	c := mustCatalog(t, []Definition{{ID: "a", Tab: TabSkill, Points: 5}}, nil)
	def, ok := c.Definition("a")
	require.True(t, ok)
	assert.Equal(t, ResetYearly, def.ResetPolicy)
	assert.Equal(t, KindToggle, def.Kind)

	_, ok = c.Definition("missing")
	assert.False(t, ok)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, issues, err := NewCatalog([]Definition{{ID: "a", Tab: TabSkill}, {ID: "a", Tab: TabSocial}}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidCatalog)
	require.Len(t, issues, 1)
	assert.False(t, issues[0].Warning)
	assert.Equal(t, "error: a: duplicate id", issues[0].String())
}

func TestNewCatalogRejectsEmptyID(t *testing.T) {
	_, _, err := NewCatalog([]Definition{{Tab: TabSkill}}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestNewCatalogRejectsRequiresCycle(t *testing.T) {
	defs := []Definition{
		{ID: "a", Tab: TabSkill, RequiresID: "c"},
		{ID: "b", Tab: TabSkill, RequiresID: "a"},
		{ID: "c", Tab: TabSkill, RequiresID: "b"},
		{ID: "tail", Tab: TabSkill, RequiresID: "a"},
	}
	_, issues, err := NewCatalog(defs, nil, nil)
	require.ErrorIs(t, err, ErrInvalidCatalog)

	var cyclic []string
	for _, issue := range issues {
		cyclic = append(cyclic, issue.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, cyclic)
}

func TestNewCatalogSelfRequireIsACycle(t *testing.T) {
	_, _, err := NewCatalog([]Definition{{ID: "a", Tab: TabSkill, RequiresID: "a"}}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestNewCatalogWarnings(t *testing.T) {
	defs := []Definition{
		{ID: "a", Tab: "putting"},
		{ID: "b", Tab: TabSkill, Kind: KindCounter},
		{ID: "c", Tab: TabSkill, RequiresID: "ghost", GateRequiresID: "phantom"},
		{ID: "d", Tab: TabSkill, CategoryID: "nocard"},
	}
	c, issues, err := NewCatalog(defs, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, issues, 5)
	for _, issue := range issues {
		assert.True(t, issue.Warning, issue.String())
	}
}

func TestCatalogLookups(t *testing.T) {
	defs := []Definition{
		{ID: "s1", Tab: TabSkill, Points: 10, CategoryID: "cat", TierIndex: 0},
		{ID: "s2", Tab: TabSkill, Points: 20, CategoryID: "cat", TierIndex: 0},
		{ID: "s3", Tab: TabSkill, Points: 30, CategoryID: "cat", TierIndex: 1},
		{ID: "p1", Tab: TabSocial, Points: 5},
	}
	cards := []CategoryCard{
		{ID: "cat", Tab: TabSkill, Title: "Cat", Tiers: []Tier{{Index: 1}, {Index: 0}}},
		{ID: "bag", Tab: TabCollection, Title: "Bag"},
	}
	c := mustCatalog(t, defs, cards, "s2", " ")

	assert.Equal(t, 40, c.TabMaxPoints(TabSkill))
	assert.Equal(t, 5, c.TabMaxPoints(TabSocial))
	assert.Equal(t, []string{"s2"}, c.DisabledIDs())
	assert.Len(t, c.TabDefinitions(TabSkill), 3)

	members := c.TierMembers("cat", 0)
	require.Len(t, members, 2)
	assert.Equal(t, "s1", members[0].ID)
	assert.Empty(t, c.TierMembers("cat", 5))

	card, ok := c.Card("cat")
	require.True(t, ok)
	assert.Equal(t, 0, card.Tiers[0].Index, "tiers are sorted")

	all := c.Cards()
	require.Len(t, all, 2)
	assert.Equal(t, "bag", all[0].ID)
}
