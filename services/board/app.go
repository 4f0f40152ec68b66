// Package board assembles the kiosk: the transit board engine, the traffic messages and the
// side panels, refreshed on their own schedules and exposed over HTTP.
package board

import (
	"context"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
	"github.com/rmrobinson/kiosk/lib/schedule"
	"github.com/rmrobinson/kiosk/services/bikeshare"
	"github.com/rmrobinson/kiosk/services/news"
	"github.com/rmrobinson/kiosk/services/racing"
	"github.com/rmrobinson/kiosk/services/transit"
	"github.com/rmrobinson/kiosk/services/weather"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// The names of the scheduled tasks.
const (
	TaskTransit   = "transit"
	TaskTraffic   = "traffic"
	TaskWeather   = "weather"
	TaskNews      = "news"
	TaskBikeshare = "bikeshare"
	TaskRacing    = "racing"
)

// App holds every component of a running kiosk.
type App struct {
	logger *zap.Logger
	cfg    *Config

	Board     *transit.Board
	Traffic   *transit.TrafficAggregator
	Weather   *weather.Service
	News      *news.Store
	Bikeshare *bikeshare.Tracker
	Racing    *racing.Programme

	feed *news.RSSFeed
}

// NewApp wires the components described by the configuration. Nothing is fetched yet.
func NewApp(logger *zap.Logger, cfg *Config, fetcher transit.Fetcher) (*App, error) {
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return nil, err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	linePattern, err := regexp.Compile(cfg.LineCodePattern)
	if err != nil {
		return nil, err
	}

	parser := transit.NewStopMonitoringParser(logger.Named("parser"), linePattern, transit.NewStatusClassifier(cfg.CancelKeywords))
	synthetic := transit.NewSyntheticFallback(cfg.SyntheticFallbackConfig(loc), rand.New(rand.NewSource(time.Now().UnixNano())))

	var fallback transit.Fallback = synthetic
	var opts []transit.BoardOption
	opts = append(opts, transit.WithLocation(loc))
	if cfg.Timetable {
		timetable := transit.NewTimetableFallback(logger.Named("timetable"), fetcher, cfg.Endpoints, loc, cfg.MaxTrips)
		fallback = transit.ChainFallback{timetable, synthetic}
		opts = append(opts, transit.WithServiceWindows(timetable))
	}

	app := &App{
		logger: logger,
		cfg:    cfg,
		Board: transit.NewBoard(logger.Named("board"), fetcher, cfg.Endpoints, registry, parser,
			transit.NewMerger(logger.Named("merger"), registry, fallback, loc, cfg.MaxTrips),
			transit.NewMetaResolver(logger.Named("meta"), fetcher, cfg.Endpoints, registry.Codes, nil),
			opts...,
		),
		Traffic: transit.NewTrafficAggregator(logger.Named("traffic"), fetcher, cfg.Endpoints, cfg.MonitoredLines()),
	}

	if cfg.Weather.URL != "" {
		app.Weather = weather.NewService(logger.Named("weather"),
			weather.NewOpenMeteoFeed(logger.Named("open_meteo"), fetcher, cfg.Weather.URL),
			cfg.Weather.Latitude, cfg.Weather.Longitude)
	}
	if cfg.News.URL != "" {
		app.News = news.NewStore(cfg.News.Limit)
		app.feed = news.NewRSSFeed(logger.Named("news"), fetcher, cfg.News.Source, cfg.News.URL, cfg.News.Limit, app.News)
	}
	if cfg.Bikeshare.URL != "" && len(cfg.Bikeshare.Stations) > 0 {
		app.Bikeshare = bikeshare.NewTracker(logger.Named("bikeshare"), fetcher, cfg.Bikeshare.URL, cfg.Bikeshare.Stations)
	}
	if cfg.Racing.URL != "" && len(cfg.Racing.Hippodromes) > 0 {
		app.Racing = racing.NewProgramme(logger.Named("racing"), fetcher, cfg.Racing.URL, cfg.Racing.Hippodromes, func() time.Time {
			return time.Now().In(loc)
		})
	}
	return app, nil
}

// NewRelayApp wires the components behind a relay fetch client built from the configuration.
func NewRelayApp(logger *zap.Logger, cfg *Config) (*App, error) {
	return NewApp(logger, cfg, relay.NewClient(logger.Named("relay"), cfg.RelayClientConfig()))
}

func (a *App) tasks() map[string]schedule.Task {
	tasks := map[string]schedule.Task{
		TaskTransit: func(ctx context.Context) { a.Board.Refresh(ctx) },
		TaskTraffic: func(ctx context.Context) { a.Traffic.Refresh(ctx) },
	}
	if a.Weather != nil {
		tasks[TaskWeather] = a.Weather.Refresh
	}
	if a.feed != nil {
		tasks[TaskNews] = a.feed.Refresh
	}
	if a.Bikeshare != nil {
		tasks[TaskBikeshare] = a.Bikeshare.Refresh
	}
	if a.Racing != nil {
		tasks[TaskRacing] = a.Racing.Refresh
	}
	return tasks
}

// RefreshAll runs every refresh once, concurrently, and waits for all of them.
func (a *App) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for name, task := range a.tasks() {
		wg.Add(1)
		go func(name string, task schedule.Task) {
			defer wg.Done()
			start := time.Now()
			task(ctx)
			a.logger.Debug("refresh completed",
				zap.String("task", name),
				zap.Duration("elapsed", time.Since(start)),
			)
		}(name, task)
	}
	wg.Wait()
}

// Schedule registers every refresh with the scheduler at its configured cadence.
func (a *App) Schedule(s *schedule.Scheduler) error {
	transitInterval, err := a.cfg.AdaptiveInterval()
	if err != nil {
		return err
	}

	cadence := map[string]cron.Schedule{
		TaskTransit:   transitInterval,
		TaskTraffic:   cron.Every(a.cfg.Refresh.Traffic),
		TaskWeather:   cron.Every(a.cfg.Refresh.Weather),
		TaskNews:      cron.Every(a.cfg.Refresh.News),
		TaskBikeshare: cron.Every(a.cfg.Refresh.Bikeshare),
		TaskRacing:    cron.Every(a.cfg.Refresh.Racing),
	}
	for name, task := range a.tasks() {
		if err := s.Add(name, cadence[name], task); err != nil {
			return err
		}
	}
	return nil
}
