package main

import (
	"context"
	"flag"
	"net/url"
	"sort"
	"time"

	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/lib/schedule"
	"github.com/rmrobinson/kiosk/services/board"
	"github.com/rmrobinson/kiosk/services/transit"
	"github.com/rmrobinson/kiosk/services/ui/tboard/widget"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "The path to the config file")
		panelEvery = flag.Duration("panel-refresh", 10*time.Second, "How often the side panels are redrawn")
	)
	flag.Parse()

	app := tview.NewApplication()
	debugView := widget.NewDebug(app, 50)

	sink := NewWidgetSink(debugView)
	if err := zap.RegisterSink("widget", func(*url.URL) (zap.Sink, error) { return sink, nil }); err != nil {
		panic(err)
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{"widget://debug"}
	logCfg.ErrorOutputPaths = []string{"widget://debug"}
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}

	cfg, err := board.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	kiosk, err := board.NewRelayApp(logger, cfg)
	if err != nil {
		panic(err)
	}
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := widget.NewTime(app, loc)
	go clock.Run(ctx)

	var columnIDs []string
	columnViews := map[string]*widget.Transit{}
	columns := tview.NewFlex()
	for _, col := range cfg.Columns {
		view := widget.NewTransit(app, col.ID, cfg.MaxTrips)
		columnIDs = append(columnIDs, col.ID)
		columnViews[col.ID] = view
		columns.AddItem(view, 0, 1, false)
	}

	messagesView := widget.NewMessages(app)
	weatherView := widget.NewWeatherCondition(app)
	articlesView := widget.NewArticles(app)
	bikeshareView := widget.NewBikeshare(app)
	racingView := widget.NewRacing(app)

	sub := kiosk.Board.Subscribe()
	defer sub.Close()
	go func() {
		for model := range sub.Messages() {
			refreshColumns(app, columns, columnViews, &columnIDs, model, cfg.MaxTrips)
		}
	}()

	refreshPanels := func() {
		messagesView.Refresh(kiosk.Traffic.Current())
		if kiosk.Weather != nil {
			weatherView.Refresh(kiosk.Weather.Current())
		}
		if kiosk.News != nil {
			articlesView.Refresh(kiosk.News.List())
		}
		if kiosk.Bikeshare != nil {
			bikeshareView.Refresh(kiosk.Bikeshare.Stations())
		}
		if kiosk.Racing != nil {
			racingView.Refresh(kiosk.Racing.Upcoming(time.Now()))
		}
	}
	go func() {
		ticker := time.NewTicker(*panelEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshPanels()
			}
		}
	}()

	scheduler := schedule.NewScheduler(logger.Named("scheduler"))
	if err := kiosk.Schedule(scheduler); err != nil {
		panic(err)
	}
	go func() {
		kiosk.RefreshAll(ctx)
		refreshPanels()
		scheduler.Start()
	}()
	defer scheduler.Stop()

	sidebar := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(clock, 4, 1, false).
		AddItem(weatherView, 9, 1, false).
		AddItem(bikeshareView, 0, 1, false).
		AddItem(racingView, 0, 1, false)

	centre := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(columns, 0, 3, false).
		AddItem(messagesView, 6, 1, false).
		AddItem(debugView, 8, 1, false)

	layout := tview.NewFlex().
		AddItem(centre, 0, 3, false).
		AddItem(articlesView, 50, 1, true).
		AddItem(sidebar, 26, 1, false)
	articlesView.SetNextWidget(layout)

	if err := app.SetRoot(layout, true).SetFocus(articlesView).Run(); err != nil {
		panic(err)
	}
}

// refreshColumns pushes a board model into the column widgets. Columns that were not
// configured explicitly come from the default registry and get a widget on first sight.
func refreshColumns(app *tview.Application, columns *tview.Flex, views map[string]*widget.Transit, ids *[]string, model *transit.BoardModel, maxTrips int) {
	var added []string
	for id := range model.Columns {
		if _, ok := views[id]; !ok {
			added = append(added, id)
		}
	}
	sort.Strings(added)
	if len(added) > 0 {
		var created []tview.Primitive
		for _, id := range added {
			views[id] = widget.NewTransit(app, id, maxTrips)
			created = append(created, views[id])
			*ids = append(*ids, id)
		}
		app.QueueUpdate(func() {
			for _, view := range created {
				columns.AddItem(view, 0, 1, false)
			}
		})
	}

	for _, id := range *ids {
		views[id].Refresh(model.Columns[id])
	}
}
