package transit

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultMaxTrips = 3

// Merger reconciles the live visits of a stop with the lines a column is expected to show.
type Merger struct {
	logger   *zap.Logger
	registry *Registry
	fallback Fallback
	loc      *time.Location
	maxTrips int
}

// NewMerger creates a merger. A nil fallback leaves groups without live data empty.
func NewMerger(logger *zap.Logger, registry *Registry, fallback Fallback, loc *time.Location, maxTrips int) *Merger {
	if loc == nil {
		loc = time.Local
	}
	if maxTrips <= 0 {
		maxTrips = defaultMaxTrips
	}
	return &Merger{
		logger:   logger,
		registry: registry,
		fallback: fallback,
		loc:      loc,
		maxTrips: maxTrips,
	}
}

// MergeColumn builds one group per expected line of the column, in display order.
// Groups with at least one timed live visit use those visits; the others are filled by the fallback.
func (m *Merger) MergeColumn(ctx context.Context, col Column, visits []Visit, now time.Time) []BoardGroup {
	assigned := m.assign(col, visits)

	groups := make([]BoardGroup, len(col.Lines))
	var wg sync.WaitGroup
	for idx, line := range col.Lines {
		groups[idx] = BoardGroup{
			LineID:    line.LineID,
			Mode:      line.Mode,
			Direction: line.Direction,
		}

		if live := assigned[idx]; len(live) > 0 {
			groups[idx].Trips = m.liveTrips(live, now)
			groups[idx].HasRealTimeData = true
			continue
		}
		if m.fallback == nil {
			continue
		}

		wg.Add(1)
		go func(idx int, line ExpectedLine) {
			defer wg.Done()

			code, _ := m.registry.Code(line.LineID)
			trips := m.fallback.Predict(ctx, FallbackRequest{
				Stop:      col.Stop,
				Line:      line.LineID,
				Code:      code,
				Direction: line.Direction,
			}, now)
			groups[idx].Trips = sanitizeFallback(trips, m.maxTrips)
		}(idx, line)
	}
	wg.Wait()

	SortGroups(groups)
	return groups
}

// assign distributes timed visits over the expected lines of the column, keyed by line index.
func (m *Merger) assign(col Column, visits []Visit) map[int][]Visit {
	candidates := map[string][]int{}
	for idx, line := range col.Lines {
		code, ok := m.registry.Code(line.LineID)
		if !ok {
			continue
		}
		candidates[code] = append(candidates[code], idx)
	}

	assigned := map[int][]Visit{}
	for _, v := range visits {
		if v.LineCode == "" {
			m.logger.Debug("visit without a line code",
				zap.String("column", col.ID),
				zap.String("destination", v.Destination),
			)
			continue
		}
		if v.Expected == nil {
			continue
		}
		idxs := candidates[v.LineCode]
		if len(idxs) < 1 {
			continue
		}

		idx, ok := m.direction(col, idxs, v)
		if !ok {
			m.logger.Debug("visit belongs to a direction not shown in this column",
				zap.String("column", col.ID),
				zap.String("line_code", v.LineCode),
				zap.String("destination", v.Destination),
			)
			continue
		}
		assigned[idx] = append(assigned[idx], v)
	}
	return assigned
}

// direction picks the group of the column a visit belongs to among the groups of its line.
func (m *Merger) direction(col Column, idxs []int, v Visit) (int, bool) {
	line := col.Lines[idxs[0]].LineID
	for _, idx := range idxs {
		if m.registry.matchesDirection(line, col.Lines[idx].Direction, v.Destination) {
			return idx, true
		}
	}

	shown := map[string]bool{}
	for _, idx := range idxs {
		// A group without a direction shows the line both ways.
		if col.Lines[idx].Direction == "" {
			return idx, true
		}
		shown[col.Lines[idx].Direction] = true
	}
	for direction := range m.registry.Directions[line] {
		if shown[direction] {
			continue
		}
		if m.registry.matchesDirection(line, direction, v.Destination) {
			return 0, false
		}
	}
	return idxs[0], true
}

func (m *Merger) liveTrips(visits []Visit, now time.Time) []TripDisplay {
	sorted := make([]Visit, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return *sorted[i].WaitMinutes(now) < *sorted[j].WaitMinutes(now)
	})
	if len(sorted) > m.maxTrips {
		sorted = sorted[:m.maxTrips]
	}

	trips := make([]TripDisplay, 0, len(sorted))
	for _, v := range sorted {
		trips = append(trips, liveTrip(v, now, m.loc))
	}
	return trips
}

func sanitizeFallback(trips []TripDisplay, limit int) []TripDisplay {
	if len(trips) > limit {
		trips = trips[:limit]
	}
	out := make([]TripDisplay, 0, len(trips))
	for _, t := range trips {
		t.Cancelled = false
		t.DelayMinutes = nil
		t.AimedTime = ""
		t.Status = StatusNone
		out = append(out, t)
	}
	return out
}
