package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/app"
	"github.com/dharmasatrya/faresweep/internal/config"
	"github.com/dharmasatrya/faresweep/internal/handler"
	"github.com/dharmasatrya/faresweep/internal/logger"
	"github.com/dharmasatrya/faresweep/internal/storage"
)

func main() {
	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	config.ServerFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags, config.WithDefault("workers", 4))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	sweeper, err := app.NewSweeper(cfg, log, nil)
	if err != nil {
		log.Fatal("failed to initialize sweeper", zap.Error(err))
	}
	defer func() { _ = sweeper.Close() }()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	fareHandler := handler.NewFareHandler(sweeper.Orchestrator, storage.New(cfg.Output.Dir, log), log)

	api := e.Group("/api/v1")
	api.POST("/fares/sweep", fareHandler.Sweep)
	api.POST("/fares/consolidate", fareHandler.Consolidate)
	api.GET("/fares/report", fareHandler.Report)
	e.GET("/health", handler.HealthHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting fare sweep server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
