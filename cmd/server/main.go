package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/trainsearch/internal/app"
	"github.com/dharmasatrya/trainsearch/internal/config"
	"github.com/dharmasatrya/trainsearch/internal/handler"
	"github.com/dharmasatrya/trainsearch/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		logging.LogError(logger, "failed to initialize", err)
		os.Exit(1)
	}
	defer logging.SafeClose(application, logger, "shutdown")

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(handler.RequestID())
	e.Use(handler.RequestLogger(logger))

	handler.NewSearchHandler(application.Service, logger).Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting train search server", slog.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.LogError(logger, "server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "shutdown failed", err)
	}
}
