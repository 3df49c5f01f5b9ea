package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JoannaMikul/10x-cards-sub002/internal/config"
	"github.com/JoannaMikul/10x-cards-sub002/internal/domain/srs"
	"github.com/JoannaMikul/10x-cards-sub002/internal/platform/postgres"
	"github.com/JoannaMikul/10x-cards-sub002/internal/service/auth"
	"github.com/JoannaMikul/10x-cards-sub002/internal/service/review"
	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	cardStore  store.CardStore
	eventStore store.ReviewEventStore
	statsStore store.ReviewStatsStore

	// Service interfaces
	jwtService    auth.JWTService
	srsService    srs.Service
	reviewService review.ReviewService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize SRS service with any configured parameter overrides
	app.srsService = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:            cfg.SRS.MinEaseFactor,
		AgainRelearnIntervalDays: cfg.SRS.AgainRelearnIntervalDays,
		FailRelearnIntervalDays:  cfg.SRS.FailRelearnIntervalDays,
		HardRelearnIntervalDays:  cfg.SRS.HardRelearnIntervalDays,
	}))

	// Initialize stores. The event store shares the SRS service so stats
	// derivation replays schedules exactly as the submission path computed
	// them.
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.eventStore = postgres.NewPostgresReviewEventStore(db, app.srsService, logger)
	app.statsStore = postgres.NewPostgresReviewStatsStore(db, logger)

	// Initialize the review service
	app.reviewService, err = review.NewReviewService(
		db,
		app.cardStore,
		app.eventStore,
		app.statsStore,
		app.srsService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
