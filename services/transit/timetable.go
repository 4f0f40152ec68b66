package transit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultTimetableCount = 3

type stopSchedulesResponse struct {
	StopSchedules []struct {
		DateTimes []struct {
			DateTime string `json:"date_time"`
		} `json:"date_times"`
	} `json:"stop_schedules"`
}

// TimetableFallback derives departures from the planned timetable of the journey planner.
type TimetableFallback struct {
	logger    *zap.Logger
	fetcher   Fetcher
	endpoints Endpoints
	loc       *time.Location
	count     int
}

// NewTimetableFallback creates a timetable fallback returning up to count upcoming departures.
func NewTimetableFallback(logger *zap.Logger, fetcher Fetcher, endpoints Endpoints, loc *time.Location, count int) *TimetableFallback {
	if loc == nil {
		loc = time.Local
	}
	if count <= 0 {
		count = defaultTimetableCount
	}
	return &TimetableFallback{
		logger:    logger,
		fetcher:   fetcher,
		endpoints: endpoints,
		loc:       loc,
		count:     count,
	}
}

// Predict implements Fallback.
// Before the first departure of the day that departure is returned. While service runs the
// next planned departures are returned, and once it has ended the first one of the next day.
func (t *TimetableFallback) Predict(ctx context.Context, req FallbackRequest, now time.Time) []TripDisplay {
	if req.Code == "" || t.endpoints.Navitia == "" {
		return nil
	}
	stopArea := stopAreaFor(req.Stop)
	now = now.In(t.loc)
	today := startOfDay(now)

	if first := t.departures(ctx, req.Code, stopArea, today, 1); len(first) > 0 && sameDay(first[0], now) && first[0].After(now) {
		return []TripDisplay{t.trip(first[0], now, req.Direction, ScheduleFirst)}
	}

	if next := t.departures(ctx, req.Code, stopArea, now, t.count); len(next) > 0 && sameDay(next[0], now) {
		var trips []TripDisplay
		for _, dep := range next {
			trips = append(trips, t.trip(dep, now, req.Direction, ScheduleNext))
		}
		return trips
	}

	tomorrow := today.AddDate(0, 0, 1)
	if first := t.departures(ctx, req.Code, stopArea, tomorrow, 1); len(first) > 0 {
		return []TripDisplay{t.trip(first[0], now, req.Direction, ScheduleEnded)}
	}
	return nil
}

// DailyWindow returns the first and last planned departures of the service day containing day.
// Either value is nil when the timetable is unavailable.
func (t *TimetableFallback) DailyWindow(ctx context.Context, req FallbackRequest, day time.Time) (first, last *time.Time) {
	if req.Code == "" || t.endpoints.Navitia == "" {
		return nil, nil
	}
	start := startOfDay(day.In(t.loc))

	// The journey planner has no "last departure" query; ask for the whole day and keep the ends.
	deps := t.departures(ctx, req.Code, stopAreaFor(req.Stop), start, 500)
	var inDay []time.Time
	for _, dep := range deps {
		if sameDay(dep, start) {
			inDay = append(inDay, dep)
		}
	}
	if len(inDay) < 1 {
		return nil, nil
	}
	f, l := inDay[0], inDay[len(inDay)-1]
	return &f, &l
}

func (t *TimetableFallback) departures(ctx context.Context, code, stopArea string, from time.Time, count int) []time.Time {
	resp := t.fetcher.Fetch(ctx, t.endpoints.scheduleURL(code, stopArea, from, count))
	if resp == nil {
		return nil
	}

	var ssr stopSchedulesResponse
	if err := resp.Decode(&ssr); err != nil {
		t.logger.Info("unable to decode stop schedules",
			zap.String("line_code", code),
			zap.String("stop_area", stopArea),
			zap.Error(err),
		)
		return nil
	}

	var deps []time.Time
	for _, schedule := range ssr.StopSchedules {
		for _, dt := range schedule.DateTimes {
			ts, err := time.ParseInLocation(navitiaTimeFormat, dt.DateTime, t.loc)
			if err != nil {
				continue
			}
			if ts.Before(from) {
				continue
			}
			deps = append(deps, ts)
		}
	}
	sortTimes(deps)
	if len(deps) > count {
		deps = deps[:count]
	}
	return deps
}

func (t *TimetableFallback) trip(dep, now time.Time, direction string, state ScheduleState) TripDisplay {
	wait := int(dep.Sub(now).Round(time.Minute).Minutes())
	if wait < 0 {
		wait = 0
	}
	return TripDisplay{
		WaitMinutes:   &wait,
		DisplayTime:   dep.In(t.loc).Format(clockFormat),
		Destination:   direction,
		Source:        SourceTimetable,
		ScheduleState: state,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
