package transit

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortGroups orders the groups of a column: rail lines first, then by line id using
// numeric-aware French collation ("77" before "101"), then by direction. Groups comparing
// equal keep their registry order.
func SortGroups(groups []BoardGroup) {
	// Collators keep internal buffers and are not safe for concurrent use.
	c := collate.New(language.French, collate.Numeric)

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if ar, br := a.Mode == ModeRail, b.Mode == ModeRail; ar != br {
			return ar
		}
		if cmp := c.CompareString(string(a.LineID), string(b.LineID)); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(a.Direction, b.Direction) < 0
	})
}

func sortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].Before(ts[j])
	})
}
