package widget

import (
	"strings"
	"testing"

	"github.com/rmrobinson/kiosk/services/transit"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func TestTripTimeText(t *testing.T) {
	tests := []struct {
		name string
		trip transit.TripDisplay
		want string
	}{
		{
			"live",
			transit.TripDisplay{WaitMinutes: intPtr(4), DisplayTime: "10:04", Source: transit.SourceLive},
			"4 min",
		},
		{
			"live-delayed",
			transit.TripDisplay{WaitMinutes: intPtr(4), DelayMinutes: intPtr(2), Source: transit.SourceLive},
			"4 min [orange]+2[-]",
		},
		{
			"imminent",
			transit.TripDisplay{WaitMinutes: intPtr(0), Source: transit.SourceLive},
			"[green]Proche[-]",
		},
		{
			"cancelled",
			transit.TripDisplay{WaitMinutes: intPtr(3), Cancelled: true, Source: transit.SourceLive},
			"[red]Supprimé[-]",
		},
		{
			"synthetic",
			transit.TripDisplay{WaitMinutes: intPtr(12), Source: transit.SourceSynthetic},
			"~12 min",
		},
		{
			"first-departure",
			transit.TripDisplay{WaitMinutes: intPtr(300), DisplayTime: "05:31", Source: transit.SourceTimetable, ScheduleState: transit.ScheduleFirst},
			"1er 05:31",
		},
		{
			"service-ended",
			transit.TripDisplay{DisplayTime: "05:31", Source: transit.SourceTimetable, ScheduleState: transit.ScheduleEnded},
			"demain 05:31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tripTimeText(tt.trip))
		})
	}
}

func TestRenderGroups(t *testing.T) {
	groups := []transit.BoardGroup{
		{
			LineID:          "A",
			Direction:       "Paris",
			Meta:            transit.LineMeta{Code: "A", PrimaryColor: "#eb2132", TextColor: "#ffffff"},
			HasRealTimeData: true,
			Trips: []transit.TripDisplay{
				{WaitMinutes: intPtr(2), Destination: "Cergy le Haut", Source: transit.SourceLive},
				{WaitMinutes: intPtr(9), Destination: "Poissy", Source: transit.SourceLive},
				{WaitMinutes: intPtr(15), Destination: "Saint-Germain-en-Laye", Source: transit.SourceLive},
			},
			FirstService: "05:12",
			LastService:  "00:48",
		},
		{
			LineID: "77",
		},
	}

	out := renderGroups(groups, 2)
	assert.Contains(t, out, "[#ffffff:#eb2132:b] A [-:-:-] Paris")
	assert.Contains(t, out, "Cergy le Haut")
	assert.Contains(t, out, "Poissy")
	assert.NotContains(t, out, "Saint-Germain-en-Laye")
	assert.Contains(t, out, "1er 05:12  dernier 00:48")
	assert.Contains(t, out, "[::b]77[::-]\n  [gray]Pas de service[-]")
	assert.NotContains(t, out, "(horaires)")
}

func TestRenderGroupsScheduledMarker(t *testing.T) {
	groups := []transit.BoardGroup{
		{
			LineID: "201",
			Trips: []transit.TripDisplay{
				{WaitMinutes: intPtr(7), Destination: "Porte Dorée", Source: transit.SourceSynthetic},
			},
		},
	}

	out := renderGroups(groups, 3)
	assert.True(t, strings.HasPrefix(out, "[::b]201[::-] [gray](horaires)[-]\n"))
}

func TestRenderMessages(t *testing.T) {
	out := renderMessages([]transit.TrafficMessage{
		{LineLabel: "RER A", Text: "Travaux entre Vincennes et Nation", Severity: transit.SeverityWarning},
		{LineLabel: "", Text: transit.NoDisruptionText, Severity: transit.SeverityOK},
	})

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "[::b]RER A[::-] [orange]Travaux entre Vincennes et Nation[-]", lines[0])
	assert.Equal(t, "[green]"+transit.NoDisruptionText+"[-]", lines[1])
}

func TestSplitTitle(t *testing.T) {
	head, tail := splitTitle("Le RER A fermé ce week-end entre La Défense et Nation", 20)
	assert.Equal(t, "Le RER A fermé ce", head)
	assert.Equal(t, "week-end entre La Défense et Nation", tail)

	head, tail = splitTitle("Court", 20)
	assert.Equal(t, "Court", head)
	assert.Empty(t, tail)
}
