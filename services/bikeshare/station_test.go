package bikeshare

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mapFetcher map[string]string

func (f mapFetcher) Fetch(ctx context.Context, target string) *relay.Response {
	for code, body := range f {
		if strings.Contains(target, "stationcode%3D"+code+"&") {
			return &relay.Response{ContentType: "application/json", Body: []byte(body)}
		}
	}
	return nil
}

const stationPayload = `{"total_count": 1, "results": [{
	"stationcode": "12104",
	"name": "Hippodrome de Vincennes",
	"is_installed": "OUI",
	"capacity": 30,
	"numdocksavailable": 18,
	"numbikesavailable": 12,
	"mechanical": 7,
	"ebike": 5,
	"is_renting": "OUI",
	"duedate": "2024-03-12T09:58:12+00:00"
}]}`

func TestTrackerRefresh(t *testing.T) {
	f := mapFetcher{
		"12104": stationPayload,
		"12115": `{"total_count": 0, "results": []}`,
	}
	tracker := NewTracker(zaptest.NewLogger(t), f, "https://opendata.paris.fr/records", []string{"12104", "12115", "99999"})

	tracker.Refresh(context.Background())
	stations := tracker.Stations()

	assert.Len(t, stations, 1)
	station := stations[0]
	assert.True(t, station.UpdatedAt.Equal(time.Date(2024, time.March, 12, 9, 58, 12, 0, time.UTC)))

	station.UpdatedAt = time.Time{}
	assert.Equal(t, &Station{
		Code:       "12104",
		Name:       "Hippodrome de Vincennes",
		Mechanical: 7,
		Electric:   5,
		FreeDocks:  18,
		Renting:    true,
	}, station)
}

func TestTrackerKeepsPreviousState(t *testing.T) {
	f := mapFetcher{"12104": stationPayload}
	tracker := NewTracker(zaptest.NewLogger(t), f, "", []string{"12104"})
	tracker.Refresh(context.Background())

	delete(f, "12104")
	tracker.Refresh(context.Background())
	assert.Len(t, tracker.Stations(), 1)
}

type staticFetcher string

func (f staticFetcher) Fetch(ctx context.Context, target string) *relay.Response {
	return &relay.Response{ContentType: "application/json", Body: []byte(f)}
}

func TestTrackerRejectsMismatchedStation(t *testing.T) {
	tracker := NewTracker(zaptest.NewLogger(t), staticFetcher(stationPayload), "", []string{"12104", "12115"})

	_, err := tracker.station(context.Background(), "12115")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStationMismatch)

	tracker.Refresh(context.Background())
	stations := tracker.Stations()
	require.Len(t, stations, 1)
	assert.Equal(t, "12104", stations[0].Code)
}
