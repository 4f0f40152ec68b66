package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Window is a daily time range expressed as offsets from local midnight.
// End may be before Start, in which case the window wraps past midnight.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// ParseWindow parses a "HH:MM-HH:MM" range.
func ParseWindow(s string) (Window, error) {
	var h1, m1, h2, m2 int
	if _, err := fmt.Sscanf(s, "%d:%d-%d:%d", &h1, &m1, &h2, &m2); err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	if h1 < 0 || h1 > 24 || h2 < 0 || h2 > 24 || m1 < 0 || m1 > 59 || m2 < 0 || m2 > 59 {
		return Window{}, fmt.Errorf("invalid window %q", s)
	}

	return Window{
		Start: time.Duration(h1)*time.Hour + time.Duration(m1)*time.Minute,
		End:   time.Duration(h2)*time.Hour + time.Duration(m2)*time.Minute,
	}, nil
}

// Contains reports whether the time of day of t is inside the window.
func (w Window) Contains(t time.Time) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)

	if w.Start <= w.End {
		return offset >= w.Start && offset < w.End
	}
	return offset >= w.Start || offset < w.End
}

// AdaptiveInterval is a cron.Schedule whose delay depends on the time of day:
// short during peak windows, long at night, and the off-peak delay otherwise.
type AdaptiveInterval struct {
	Peak    time.Duration
	OffPeak time.Duration
	Night   time.Duration

	PeakWindows []Window
	NightWindow *Window
}

var _ cron.Schedule = AdaptiveInterval{}

// IntervalAt returns the delay that applies at t.
func (a AdaptiveInterval) IntervalAt(t time.Time) time.Duration {
	if a.NightWindow != nil && a.Night > 0 && a.NightWindow.Contains(t) {
		return a.Night
	}
	for _, w := range a.PeakWindows {
		if a.Peak > 0 && w.Contains(t) {
			return a.Peak
		}
	}
	return a.OffPeak
}

// Next implements cron.Schedule.
func (a AdaptiveInterval) Next(t time.Time) time.Time {
	d := a.IntervalAt(t)
	if d < time.Second {
		d = time.Second
	}
	return t.Add(d)
}
