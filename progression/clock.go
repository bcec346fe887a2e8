package progression

import (
	"fmt"
	"time"
)

// DefaultReferenceZone is the zone period keys are computed in when none is
// configured. Leaderboard weeks roll over at the same instant for everyone.
const DefaultReferenceZone = "America/New_York"

// Clock supplies the current time in the reference time zone. The engine
// never reads the system clock itself.
type Clock interface {
	Now() time.Time
}

// ZoneClock is the production Clock: wall time converted into loc.
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock loads the named zone. An empty name uses DefaultReferenceZone.
func NewZoneClock(name string) (*ZoneClock, error) {
	if name == "" {
		name = DefaultReferenceZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load reference zone %q: %w", name, err)
	}
	return &ZoneClock{loc: loc}, nil
}

func (z *ZoneClock) Now() time.Time {
	return time.Now().In(z.loc)
}

// FixedClock always returns the same instant. Used by tests and imports.
type FixedClock struct {
	T time.Time
}

func (f FixedClock) Now() time.Time {
	return f.T
}

// PeriodKeys identifies the leaderboard periods an instant falls in.
type PeriodKeys struct {
	Week  string `json:"week"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// KeysFor computes period keys for t in loc. Weeks are ISO weeks (Monday
// start), so the first days of January can belong to the previous year's
// last week.
func KeysFor(t time.Time, loc *time.Location) PeriodKeys {
	if loc != nil {
		t = t.In(loc)
	}
	isoYear, isoWeek := t.ISOWeek()
	return PeriodKeys{
		Week:  fmt.Sprintf("%04d-W%02d", isoYear, isoWeek),
		Month: fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())),
		Year:  fmt.Sprintf("%04d", t.Year()),
	}
}
