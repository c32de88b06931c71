package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dharmasatrya/trainsearch/internal/app"
	"github.com/dharmasatrya/trainsearch/internal/cli"
	"github.com/dharmasatrya/trainsearch/internal/config"
	"github.com/dharmasatrya/trainsearch/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	// start and help still work without provider credentials.
	application, err := app.New(cfg, logger)
	if err != nil {
		cli.SetService(nil, err)
	} else {
		defer logging.SafeClose(application, logger, "shutdown")
		cli.SetService(application.Service, nil)
	}

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
