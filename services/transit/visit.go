package transit

import (
	"math"
	"time"
)

// Visit is one real-time prediction of a vehicle calling at a monitored stop.
type Visit struct {
	// LineCode is the internal upstream line code, empty when the line reference could not be parsed.
	LineCode    string
	Destination string
	Expected    *time.Time
	Aimed       *time.Time
	Cancelled   bool
	AtStop      bool
}

// WaitMinutes returns the rounded number of minutes until the expected time, floored at zero.
// It is nil when the visit has no expected time.
func (v *Visit) WaitMinutes(now time.Time) *int {
	if v.Expected == nil {
		return nil
	}

	m := int(math.Round(v.Expected.Sub(now).Minutes()))
	if m < 0 {
		m = 0
	}
	return &m
}

// DelayMinutes returns the rounded positive difference between the expected and aimed times.
// Missing timestamps, early running and on-time running all yield nil.
func (v *Visit) DelayMinutes() *int {
	if v.Expected == nil || v.Aimed == nil {
		return nil
	}

	d := int(math.Round(v.Expected.Sub(*v.Aimed).Minutes()))
	if d <= 0 {
		return nil
	}
	return &d
}

func deriveStatus(cancelled bool, delay *int) TripStatus {
	if cancelled {
		return StatusCancelled
	}
	if delay != nil && *delay > 0 {
		return StatusDelayed
	}
	return StatusNone
}

// liveTrip converts a visit into a displayable row. The visit must have a wait time.
func liveTrip(v Visit, now time.Time, loc *time.Location) TripDisplay {
	delay := v.DelayMinutes()
	trip := TripDisplay{
		WaitMinutes:  v.WaitMinutes(now),
		Destination:  v.Destination,
		DelayMinutes: delay,
		Cancelled:    v.Cancelled,
		AtStop:       v.AtStop,
		Status:       deriveStatus(v.Cancelled, delay),
		Source:       SourceLive,
	}
	if v.Expected != nil {
		trip.DisplayTime = v.Expected.In(loc).Format(clockFormat)
	}
	if delay != nil && v.Aimed != nil {
		trip.AimedTime = v.Aimed.In(loc).Format(clockFormat)
	}
	return trip
}

const clockFormat = "15:04"
