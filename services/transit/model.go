package transit

import (
	"time"
)

// StopID identifies a physical stop or platform group in the upstream real-time system,
// for example "STIF:StopArea:SP:43135:".
type StopID string

// LineID is the short line code shown to riders, such as "A" or "77".
type LineID string

// Mode is the transport mode of a line.
type Mode string

// The supported modes. Rail lines are pinned to the top of a board column.
const (
	ModeRail Mode = "rail"
	ModeTram Mode = "tram"
	ModeBus  Mode = "bus"
)

// TripStatus is the status asserted for a single trip. The empty status is the normal case.
type TripStatus string

// The trip statuses.
const (
	StatusNone      TripStatus = ""
	StatusDelayed   TripStatus = "delayed"
	StatusCancelled TripStatus = "cancelled"
)

// TripSource records where a displayed trip came from.
type TripSource string

// The trip sources.
const (
	SourceLive      TripSource = "live"
	SourceTimetable TripSource = "timetable"
	SourceSynthetic TripSource = "synthetic"
)

// ScheduleState is the presentation state of a timetable-derived trip.
type ScheduleState string

// The timetable states.
const (
	// ScheduleNext is the next planned departure at or after now.
	ScheduleNext ScheduleState = "next"
	// ScheduleFirst is the first departure of a service day that has not started yet.
	ScheduleFirst ScheduleState = "first"
	// ScheduleEnded means service has finished for the day and resumes at the trip time.
	ScheduleEnded ScheduleState = "ended"
)

// TripDisplay is a single row rendered under an expected line.
type TripDisplay struct {
	WaitMinutes   *int          `json:"wait_minutes"`
	DisplayTime   string        `json:"display_time"`
	AimedTime     string        `json:"aimed_time,omitempty"`
	Destination   string        `json:"destination"`
	DelayMinutes  *int          `json:"delay_minutes"`
	Cancelled     bool          `json:"cancelled"`
	AtStop        bool          `json:"at_stop,omitempty"`
	Status        TripStatus    `json:"status,omitempty"`
	Source        TripSource    `json:"source"`
	ScheduleState ScheduleState `json:"schedule_state,omitempty"`
}

// BoardGroup is the set of upcoming trips for one expected line and direction.
type BoardGroup struct {
	LineID          LineID        `json:"line_id"`
	Mode            Mode          `json:"mode"`
	Direction       string        `json:"direction"`
	Meta            LineMeta      `json:"meta"`
	Trips           []TripDisplay `json:"trips"`
	HasRealTimeData bool          `json:"has_real_time_data"`
	FirstService    string        `json:"first_service,omitempty"`
	LastService     string        `json:"last_service,omitempty"`
}

// NoService reports whether neither live nor fallback data produced a trip.
func (g *BoardGroup) NoService() bool {
	return len(g.Trips) == 0
}

// BoardModel is the full board as produced by one refresh cycle. It is never modified
// once published; every cycle builds a new one.
type BoardModel struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Columns     map[string][]BoardGroup `json:"columns"`
	// Errors lists upstream fetches that degraded during the cycle, for an optional banner.
	Errors []string `json:"errors,omitempty"`
}

// LineMeta holds the display branding of a line.
type LineMeta struct {
	Code         string `json:"code"`
	PrimaryColor string `json:"primary_color"`
	TextColor    string `json:"text_color"`
}

// Severity classifies a traffic message.
type Severity string

// The traffic message severities.
const (
	SeverityOK      Severity = "ok"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// TrafficMessage is a flattened service disruption message for a line.
type TrafficMessage struct {
	LineLabel string   `json:"line_label"`
	Text      string   `json:"text"`
	Severity  Severity `json:"severity"`
}
