// catalog/catalog.go - Achievement catalog supplier
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"discjourney/progression"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

type fileTier struct {
	Index int    `yaml:"index"`
	Key   string `yaml:"key"`
}

type fileCategory struct {
	ID    string     `yaml:"id"`
	Tab   string     `yaml:"tab"`
	Title string     `yaml:"title"`
	Tiers []fileTier `yaml:"tiers"`
}

type fileAchievement struct {
	ID             string `yaml:"id"`
	Tab            string `yaml:"tab"`
	Kind           string `yaml:"kind"`
	Target         int    `yaml:"target"`
	ResetPolicy    string `yaml:"resetPolicy"`
	RequiresID     string `yaml:"requiresId"`
	GateRequiresID string `yaml:"gateRequiresId"`
	Category       string `yaml:"category"`
	Tier           int    `yaml:"tier"`
	Points         int    `yaml:"points"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
}

type file struct {
	Disabled     []string          `yaml:"disabled"`
	Categories   []fileCategory    `yaml:"categories"`
	Achievements []fileAchievement `yaml:"achievements"`
}

// Options controls where the catalog comes from.
type Options struct {
	// Path overrides the embedded catalog when set.
	Path string
	// ExtraDisabled is appended to the file's disabled list.
	ExtraDisabled []string
}

// Load reads the catalog named by opts and validates it. Warnings are
// returned alongside a usable catalog; errors mean no catalog.
func Load(opts Options) (*progression.Catalog, []progression.Issue, error) {
	raw := embedded
	if opts.Path != "" {
		content, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read catalog %s: %w", opts.Path, err)
		}
		raw = content
	}
	return Parse(raw, opts.ExtraDisabled)
}

// Parse builds a catalog from YAML bytes.
func Parse(raw []byte, extraDisabled []string) (*progression.Catalog, []progression.Issue, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	defs := lo.Map(f.Achievements, func(a fileAchievement, _ int) progression.Definition {
		return progression.Definition{
			ID:             strings.TrimSpace(a.ID),
			Tab:            progression.Tab(a.Tab),
			Kind:           progression.Kind(a.Kind),
			Target:         a.Target,
			ResetPolicy:    progression.ResetPolicy(a.ResetPolicy),
			RequiresID:     a.RequiresID,
			GateRequiresID: a.GateRequiresID,
			CategoryID:     a.Category,
			TierIndex:      a.Tier,
			Points:         a.Points,
			Title:          a.Title,
			Description:    a.Description,
		}
	})

	cards := lo.Map(f.Categories, func(c fileCategory, _ int) progression.CategoryCard {
		return progression.CategoryCard{
			ID:    c.ID,
			Tab:   progression.Tab(c.Tab),
			Title: c.Title,
			Tiers: lo.Map(c.Tiers, func(t fileTier, _ int) progression.Tier {
				return progression.Tier{Index: t.Index, Key: t.Key}
			}),
		}
	})

	disabled := lo.Uniq(append(append([]string{}, f.Disabled...), extraDisabled...))
	return progression.NewCatalog(defs, cards, disabled)
}

// ParseDisabledList splits a comma separated id list, dropping blanks.
func ParseDisabledList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Compact(parts)
}
