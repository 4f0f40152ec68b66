package board

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
	"github.com/rmrobinson/kiosk/lib/schedule"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

const (
	stopMonitoringBody = `{"Siri": {"ServiceDelivery": {"StopMonitoringDelivery": [{"MonitoredStopVisit": [
		{"MonitoredVehicleJourney": {"LineRef": {"value": "STIF:Line::C01742:"}, "MonitoredCall": {
			"DestinationDisplay": [{"value": "Boissy-Saint-Léger"}],
			"ExpectedDepartureTime": "2099-01-01T10:08:00Z",
			"AimedDepartureTime": "2099-01-01T10:05:00Z"
		}}}
	]}]}}}`
	generalMessageBody = `{"Siri": {"ServiceDelivery": {"GeneralMessageDelivery": [{"InfoMessage": [
		{"InfoChannelRef": {"value": "Perturbation"}, "Content": {"Message": [{"MessageText": {"value": "Trafic perturbé"}}]}}
	]}]}}}`
	weatherBody   = `{"current_weather": {"temperature": 11.5, "weathercode": 3, "time": "2024-03-12T10:00"}}`
	newsBody      = `<rss version="2.0"><channel><item><title>Une</title><guid>1</guid><description>Texte</description></item></channel></rss>`
	bikeshareBody = `{"results": [{"stationcode": "12104", "name": "Hippodrome", "mechanical": 3, "ebike": 2, "numdocksavailable": 10}]}`
	racingBody    = `{"programme": {"reunions": [{"numOfficiel": 1, "hippodrome": {"code": "VIN"}, "courses": [{"numOrdre": 1, "libelle": "PRIX", "heureDepart": 4102444800000}]}]}}`
)

type routeFetcher struct {
	calls int64
}

func (f *routeFetcher) Fetch(ctx context.Context, target string) *relay.Response {
	atomic.AddInt64(&f.calls, 1)

	body := ""
	switch {
	case strings.Contains(target, "stop-monitoring") && strings.Contains(target, "43135"):
		body = stopMonitoringBody
	case strings.Contains(target, "general-message") && strings.Contains(target, "C01742"):
		body = generalMessageBody
	case strings.Contains(target, "open-meteo"):
		body = weatherBody
	case strings.Contains(target, "lemonde"):
		return &relay.Response{ContentType: "application/rss+xml", Body: []byte(newsBody)}
	case strings.Contains(target, "velib"):
		body = bikeshareBody
	case strings.Contains(target, "turfinfo"):
		body = racingBody
	default:
		return nil
	}
	return &relay.Response{ContentType: "application/json", Body: []byte(body)}
}

func newTestApp(t *testing.T) (*App, *routeFetcher) {
	t.Helper()

	cfg, err := LoadConfig("")
	assert.Nil(t, err)
	cfg.Timetable = false

	f := &routeFetcher{}
	app, err := NewApp(zaptest.NewLogger(t), cfg, f)
	assert.Nil(t, err)
	return app, f
}

func TestAppRefreshAll(t *testing.T) {
	app, _ := newTestApp(t)
	app.RefreshAll(context.Background())

	model := app.Board.Current()
	assert.NotNil(t, model)
	assert.Len(t, model.Columns, 3)
	assert.Len(t, model.Errors, 2)

	msgs := app.Traffic.Current()
	assert.Len(t, msgs, 1)
	assert.Equal(t, "Trafic perturbé", msgs[0].Text)

	assert.Equal(t, 11.5, app.Weather.Current().Temperature)
	assert.Len(t, app.News.List(), 1)
	assert.Len(t, app.Bikeshare.Stations(), 1)
	assert.Len(t, app.Racing.Races("VIN"), 1)
}

func TestAppSchedule(t *testing.T) {
	app, f := newTestApp(t)

	s := schedule.NewScheduler(zaptest.NewLogger(t))
	assert.Nil(t, app.Schedule(s))
	defer s.Stop()

	for _, name := range []string{TaskTransit, TaskTraffic, TaskWeather, TaskNews, TaskBikeshare, TaskRacing} {
		assert.Nil(t, s.RunNow(name), name)
	}
	assert.NotNil(t, app.Board.Current())
	assert.Greater(t, atomic.LoadInt64(&f.calls), int64(0))

	// Registering twice is refused.
	assert.NotNil(t, app.Schedule(s))
}

func TestAppOptionalPanels(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Nil(t, err)
	cfg.Weather.URL = ""
	cfg.News.URL = ""
	cfg.Bikeshare.Stations = nil
	cfg.Racing.Hippodromes = nil

	app, err := NewApp(zaptest.NewLogger(t), cfg, &routeFetcher{})
	assert.Nil(t, err)
	assert.Nil(t, app.Weather)
	assert.Nil(t, app.News)
	assert.Nil(t, app.Bikeshare)
	assert.Nil(t, app.Racing)
	assert.Len(t, app.tasks(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.RefreshAll(ctx)
	assert.NotNil(t, app.Board.Current())
}
