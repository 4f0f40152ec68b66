package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rmrobinson/kiosk/services/board"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type snapshot struct {
	Board    interface{} `json:"board" yaml:"board"`
	Messages interface{} `json:"messages" yaml:"messages"`
}

func main() {
	var (
		configPath = flag.String("config", "", "The path to the config file")
		mode       = flag.String("mode", "json", "The output format: json, yaml or spew")
		column     = flag.String("column", "", "Only dump the named column")
		timeout    = flag.Duration("timeout", time.Minute, "The maximum time to wait for the upstream feeds")
		verbose    = flag.Bool("verbose", false, "Log upstream activity to stderr")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}

	cfg, err := board.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load config: %s\n", err.Error())
		os.Exit(1)
	}

	app, err := board.NewRelayApp(logger, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create app: %s\n", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	model := app.Board.Refresh(ctx)
	snap := snapshot{
		Board:    model,
		Messages: app.Traffic.Refresh(ctx),
	}
	if *column != "" {
		groups, ok := model.Columns[*column]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown column %s\n", *column)
			os.Exit(1)
		}
		snap.Board = groups
	}

	switch *mode {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		err = enc.Encode(snap)
		enc.Close()
	case "spew":
		spew.Dump(snap)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %s\n", *mode)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to write snapshot: %s\n", err.Error())
		os.Exit(1)
	}
}
