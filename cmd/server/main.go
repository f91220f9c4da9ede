// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

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

	"github.com/tomtom215/societyrec/internal/api"
	"github.com/tomtom215/societyrec/internal/app"
	"github.com/tomtom215/societyrec/internal/config"
	"github.com/tomtom215/societyrec/internal/database"
	"github.com/tomtom215/societyrec/internal/events"
	"github.com/tomtom215/societyrec/internal/logging"
	"github.com/tomtom215/societyrec/internal/supervisor"
	"github.com/tomtom215/societyrec/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

//nolint:gocyclo // sequential startup steps
func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()

	logger.Info().
		Str("db_path", cfg.Database.Path).
		Str("feedback_store", cfg.Feedback.Store).
		Bool("embedding_enabled", cfg.Recommend.Embedding.Enabled).
		Str("environment", cfg.Server.Environment).
		Msg("Starting societyrec with supervisor tree")

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.SeedDemoData {
		seeded, err := db.SeedDemoData(ctx)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info().Bool("seeded", seeded).Msg("Demo data seeding checked (SEED_DEMO_DATA=true)")
	}

	engine, err := app.NewEngine(cfg, db, logger)
	if err != nil {
		return fmt.Errorf("initialize recommendation engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing recommendation engine")
		}
	}()
	restored := engine.RestoreCorpus(ctx)

	// Feedback events invalidate cached recommendations through the bus.
	bus := events.NewBus(events.DefaultConfig(), logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	engine.Feedback.SetPublisher(events.NewFeedbackPublisher(bus.Publisher()))
	events.RegisterInvalidation(bus, engine.Recommender, logger)

	tree := supervisor.NewTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})

	if cfg.Recommend.RefitInterval > 0 {
		tree.AddModelService(services.NewCorpusRefitService(engine.Recommender, services.CorpusRefitConfig{
			RefitOnStartup: !restored,
			Interval:       cfg.Recommend.RefitInterval,
			Timeout:        cfg.Recommend.RefitTimeout,
		}, logger))
	} else if !restored {
		// Periodic refits are disabled; fit once so similarity has a model.
		if err := engine.Recommender.UpdateSimilarityModel(ctx); err != nil {
			logger.Warn().Err(err).Msg("Initial corpus fit failed, similarity falls back to token overlap")
		}
	}

	tree.AddMessagingService(bus)

	handler := api.NewHandler(engine.Recommender, engine.ColdStart, engine.Feedback, db, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, api.MiddlewareConfigFrom(&cfg.Server, &cfg.Security)),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	httpService := services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout)
	httpService.SetLogger(logger)
	tree.AddAPIService(httpService)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logger.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logger.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err := db.Checkpoint(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Final checkpoint failed")
	}
	logger.Info().Msg("Application stopped gracefully")
	return nil
}
