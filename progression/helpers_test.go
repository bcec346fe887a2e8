package progression

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func mustCatalog(t *testing.T, defs []Definition, cards []CategoryCard, disabled ...string) *Catalog {
	t.Helper()
	c, _, err := NewCatalog(defs, cards, disabled)
	require.NoError(t, err)
	return c
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultReferenceZone)
	require.NoError(t, err)
	return loc
}

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }
