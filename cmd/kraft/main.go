package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kraftworks/kraft/internal/api"
	"github.com/kraftworks/kraft/internal/config"
	"github.com/kraftworks/kraft/internal/engine"
	"github.com/kraftworks/kraft/internal/events"
	"github.com/kraftworks/kraft/internal/scoring"
	"github.com/kraftworks/kraft/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Events (optional)
	var eventsClient events.Client = events.NoopClient{}
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// Allocation engine
	weights := scoring.WeightSet{
		WorkloadFairness:     cfg.Scoring.Weights.WorkloadFairness,
		Experience:           cfg.Scoring.Weights.Experience,
		AvailabilityRichness: cfg.Scoring.Weights.AvailabilityRichness,
		SkillBreadth:         cfg.Scoring.Weights.SkillBreadth,
		DeliverySpeed:        cfg.Scoring.Weights.DeliverySpeed,
	}
	eng, err := engine.New(weights, logger)
	if err != nil {
		logger.Error("invalid scoring configuration", "error", err)
		os.Exit(1)
	}

	defaultStrategy := scoring.Strategy(cfg.Allocation.DefaultStrategy)
	if !defaultStrategy.Valid() {
		logger.Error("unknown default strategy", "strategy", cfg.Allocation.DefaultStrategy)
		os.Exit(1)
	}

	// API server
	router := api.NewRouter(db, eng, eventsClient, defaultStrategy,
		cfg.Allocation.MaxCandidatePairs, cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
