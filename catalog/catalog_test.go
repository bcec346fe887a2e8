package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"discjourney/progression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogLoadsCleanly(t *testing.T) {
	c, issues, err := Load(Options{})
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Len(t, c.Definitions(), 36)
	assert.True(t, c.IsDisabled("social-stream-round"))

	assert.Equal(t, 2255, c.TabMaxPoints(progression.TabSkill))
	assert.Equal(t, 800, c.TabMaxPoints(progression.TabSocial))
	assert.Equal(t, 640, c.TabMaxPoints(progression.TabCollection))

	def, ok := c.Definition("skill-drive-300")
	require.True(t, ok)
	assert.Equal(t, progression.ResetNever, def.ResetPolicy)
	assert.Equal(t, progression.KindToggle, def.Kind)
	assert.Equal(t, "skill-drive-250", def.RequiresID)

	def, ok = c.Definition("skill-circle1-putt")
	require.True(t, ok)
	assert.Equal(t, progression.ResetYearly, def.ResetPolicy, "reset policy defaults to yearly")

	card, ok := c.Card("competition")
	require.True(t, ok)
	require.Len(t, card.Tiers, 3)
	assert.Equal(t, "Regional", card.Tiers[1].Key)
}

func TestLoadExtraDisabled(t *testing.T) {
	c, _, err := Load(Options{ExtraDisabled: []string{"skill-ace", "social-stream-round"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"skill-ace", "social-stream-round"}, c.DisabledIDs())
	assert.Equal(t, 2255-500, c.TabMaxPoints(progression.TabSkill))
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
achievements:
  - id: a
    tab: skill
    points: 10
  - id: b
    tab: skill
    kind: counter
    target: 0
    points: 5
    requiresId: missing
`), 0o644))

	c, issues, err := Load(Options{Path: path})
	require.NoError(t, err)
	assert.Len(t, c.Definitions(), 2)
	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.True(t, issue.Warning)
		assert.Equal(t, "b", issue.ID)
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, _, err := Load(Options{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestParseRejectsCycles(t *testing.T) {
	_, issues, err := Parse([]byte(`
achievements:
  - { id: a, tab: skill, requiresId: b }
  - { id: b, tab: skill, requiresId: a }
`), nil)
	require.ErrorIs(t, err, progression.ErrInvalidCatalog)
	assert.NotEmpty(t, issues)
}

func TestParseInvalidYAML(t *testing.T) {
	_, _, err := Parse([]byte("achievements: [oops"), nil)
	assert.Error(t, err)
}

func TestParseDisabledList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseDisabledList(" a, ,b,"))
	assert.Empty(t, ParseDisabledList(""))
}
