package progression

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DocumentVersion is the schema version EncodeDocument writes.
const DocumentVersion = 2

// Snapshot is one user's complete achievement document held in memory.
type Snapshot struct {
	States map[string]AchievementState
	Tiers  UserTierState
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{
		States: make(map[string]AchievementState),
		Tiers:  make(UserTierState),
	}
}

// Clone deep-copies the snapshot so callers can keep the original.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		States: make(map[string]AchievementState, len(s.States)),
		Tiers:  s.Tiers.Clone(),
	}
	for id, st := range s.States {
		st.CompletedDate = cloneTime(st.CompletedDate)
		st.CompletedYear = cloneInt(st.CompletedYear)
		st.LegacyYear = cloneInt(st.LegacyYear)
		out.States[id] = st
	}
	return out
}

// MergeWithCatalog adds default states for catalog definitions the
// snapshot has never seen. Existing states are kept untouched.
func MergeWithCatalog(c *Catalog, s Snapshot) Snapshot {
	out := s.Clone()
	for _, def := range c.defs {
		if _, ok := out.States[def.ID]; !ok {
			out.States[def.ID] = AchievementState{ID: def.ID}
		}
	}
	return out
}

type storedAchievement struct {
	IsCompleted   bool       `json:"isCompleted"`
	Progress      int        `json:"progress"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	CompletedYear *int       `json:"completedYear,omitempty"`
}

type storedDocument struct {
	Version      int                          `json:"version"`
	Achievements map[string]storedAchievement `json:"achievements"`
	Tiers        map[string]int               `json:"tiers"`
}

// EncodeDocument serializes s in the current schema version.
func EncodeDocument(s Snapshot) ([]byte, error) {
	doc := storedDocument{
		Version:      DocumentVersion,
		Achievements: make(map[string]storedAchievement, len(s.States)),
		Tiers:        make(map[string]int, len(s.Tiers)),
	}
	for id, st := range s.States {
		year := st.CompletedYear
		if year == nil {
			year = st.LegacyYear
		}
		doc.Achievements[id] = storedAchievement{
			IsCompleted:   st.IsCompleted,
			Progress:      st.Progress,
			CompletedDate: st.CompletedDate,
			CompletedYear: year,
		}
	}
	for k, v := range s.Tiers {
		doc.Tiers[k] = v
	}
	return json.Marshal(doc)
}

// DecodeDocument parses a stored document of any known version. It never
// fails on field-level problems: anything malformed is coerced to a safe
// default and reported in warnings. Only bytes that are not a JSON object
// at all produce an empty snapshot plus a warning.
func DecodeDocument(raw []byte) (Snapshot, []string) {
	snap := NewSnapshot()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return snap, nil
	}

	var top map[string]any
	if err := json.Unmarshal(raw, &top); err != nil {
		return snap, []string{fmt.Sprintf("document is not a JSON object: %v", err)}
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if tiers, ok := top["tiers"].(map[string]any); ok {
		for cat, v := range tiers {
			idx, ok := coerceInt(v)
			if !ok || idx < 0 {
				warn("tiers.%s: invalid tier index %v", cat, v)
				continue
			}
			snap.Tiers[cat] = idx
		}
	}

	if _, versioned := top["version"]; versioned {
		achievements, _ := top["achievements"].(map[string]any)
		ids := sortedKeys(achievements)
		for _, id := range ids {
			rec, ok := achievements[id].(map[string]any)
			if !ok {
				warn("achievements.%s: not an object", id)
				continue
			}
			snap.States[id] = coerceState(id, rec, warn)
		}
		return snap, warnings
	}

	// Legacy layout: one list of loosely typed records per tab.
	for _, tab := range Tabs {
		list, present := top[string(tab)]
		if !present {
			continue
		}
		items, ok := list.([]any)
		if !ok {
			warn("%s: expected a list", tab)
			continue
		}
		for i, item := range items {
			rec, ok := item.(map[string]any)
			if !ok {
				warn("%s[%d]: not an object", tab, i)
				continue
			}
			id, _ := rec["id"].(string)
			if id == "" {
				warn("%s[%d]: missing id", tab, i)
				continue
			}
			snap.States[id] = coerceState(id, rec, warn)
		}
	}
	return snap, warnings
}

func coerceState(id string, rec map[string]any, warn func(string, ...any)) AchievementState {
	st := AchievementState{ID: id}

	if v, ok := rec["isCompleted"]; ok && v != nil {
		b, ok := coerceBool(v)
		if !ok {
			warn("%s.isCompleted: invalid value %v", id, v)
		}
		st.IsCompleted = b
	}
	if v, ok := rec["progress"]; ok && v != nil {
		n, ok := coerceInt(v)
		if !ok || n < 0 {
			warn("%s.progress: invalid value %v", id, v)
			n = 0
		}
		st.Progress = n
	}
	if v, ok := rec["completedDate"]; ok && v != nil {
		t, ok := coerceTime(v)
		if ok {
			st.CompletedDate = &t
		} else {
			warn("%s.completedDate: invalid value %v", id, v)
		}
	}
	if v, ok := rec["completedYear"]; ok && v != nil {
		if y, ok := coerceInt(v); ok {
			st.CompletedYear = &y
		} else {
			warn("%s.completedYear: invalid value %v", id, v)
		}
	}
	if v, ok := rec["year"]; ok && v != nil {
		if y, ok := coerceInt(v); ok {
			st.LegacyYear = &y
		} else {
			warn("%s.year: invalid value %v", id, v)
		}
	}
	return st
}

func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		return parsed, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// coerceTime accepts RFC3339 strings, unix milliseconds and the
// {"seconds": n, "nanoseconds": m} timestamp objects older clients stored.
func coerceTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
	case float64:
		if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case map[string]any:
		secs, ok := coerceInt(firstOf(t, "seconds", "_seconds"))
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := coerceInt(firstOf(t, "nanoseconds", "_nanoseconds"))
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	}
	return time.Time{}, false
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
