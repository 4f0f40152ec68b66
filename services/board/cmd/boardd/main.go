package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmrobinson/kiosk/lib/schedule"
	"github.com/rmrobinson/kiosk/services/board"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "The path to the config file")
		debug      = flag.Bool("debug", false, "Enable development logging")
	)
	flag.Parse()

	var logger *zap.Logger
	if *debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	cfg, err := board.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("unable to load config",
			zap.Error(err),
		)
	}

	app, err := board.NewRelayApp(logger, cfg)
	if err != nil {
		logger.Fatal("unable to create app",
			zap.Error(err),
		)
	}

	scheduler := schedule.NewScheduler(logger.Named("scheduler"))
	if err := app.Schedule(scheduler); err != nil {
		logger.Fatal("unable to schedule refreshes",
			zap.Error(err),
		)
	}

	// Populate everything once so the API has data before the first scheduled run.
	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	app.RefreshAll(initCtx)
	initCancel()

	scheduler.Start()

	server := board.NewServer(logger.Named("server"), app, cfg.Listen)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			logger.Fatal("failed to serve",
				zap.Error(err),
			)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown error",
			zap.Error(err),
		)
	}
	scheduler.Stop()
}
