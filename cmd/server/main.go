// Package main implements the entry point for the englishlearn API server,
// which generates dictation worksheets, grades photographed corrections,
// and tracks per-item mastery.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ssl2010/englishlearn-api/internal/config"
	"github.com/ssl2010/englishlearn-api/internal/grading"
	"github.com/ssl2010/englishlearn-api/internal/platform/gemini"
	"github.com/ssl2010/englishlearn-api/internal/platform/inkmark"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
	"github.com/ssl2010/englishlearn-api/internal/platform/postgres"
	"github.com/ssl2010/englishlearn-api/internal/service"
	gradingsvc "github.com/ssl2010/englishlearn-api/internal/service/grading"
	"github.com/ssl2010/englishlearn-api/internal/store"
	"github.com/ssl2010/englishlearn-api/internal/task"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// application holds the wired dependencies the router and background jobs
// draw from.
type application struct {
	config          *config.Config
	logger          *slog.Logger
	db              *sql.DB
	studentStore    store.StudentStore
	itemStore       store.ItemStore
	sessionStore    store.SessionStore
	settingsStore   store.SettingsStore
	practiceService service.PracticeService
	gradingService  gradingsvc.Service
	renderer        service.WorksheetRenderer
	sweeper         *task.RetentionSweeper
}

// run wires the application and serves until a shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"grading_mode", cfg.Grading.Mode,
		"vision_configured", cfg.LLM.GeminiAPIKey != "")

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("failed to close database", "error", closeErr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	app, err := buildApplication(cfg, appLogger, db)
	if err != nil {
		return err
	}

	app.sweeper.Start()
	defer app.sweeper.Stop()

	return app.serve()
}

// buildApplication constructs the store, service, and job graph.
func buildApplication(cfg *config.Config, appLogger *slog.Logger, db *sql.DB) (*application, error) {
	studentStore := postgres.NewPostgresStudentStore(db, appLogger)
	itemStore := postgres.NewPostgresItemStore(db, appLogger)
	sessionStore := postgres.NewPostgresSessionStore(db, appLogger)
	submissionStore := postgres.NewPostgresSubmissionStore(db, appLogger)
	statsStore := postgres.NewPostgresStatsStore(db, appLogger)
	settingsStore := postgres.NewPostgresSettingsStore(db, appLogger)

	practiceService, err := service.NewPracticeService(db, itemStore, sessionStore, studentStore, appLogger)
	if err != nil {
		return nil, fmt.Errorf("building practice service: %w", err)
	}

	layout := inkmark.DefaultLayout()
	detector := inkmark.NewDetector(layout, cfg.Grading.InkRatioThreshold, appLogger)
	heuristic := inkmark.NewGrader(detector, layout, appLogger)

	// The vision grader is optional: without an API key the provider chain
	// starts and ends at the ink-mark heuristic.
	var vision grading.Grader
	if cfg.LLM.GeminiAPIKey != "" {
		visionGrader, err := gemini.NewVisionGrader(context.Background(), appLogger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("building vision grader: %w", err)
		}
		vision = visionGrader
	} else {
		appLogger.Warn("no vision API key configured, grading runs on the ink-mark heuristic only")
	}

	gradingService, err := gradingsvc.NewService(
		db,
		sessionStore,
		submissionStore,
		statsStore,
		settingsStore,
		vision,
		heuristic,
		cfg.Grading.Mode,
		appLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("building grading service: %w", err)
	}

	sweeper, err := task.NewRetentionSweeper(sessionStore, task.RetentionConfig{
		ArchiveAfter:  time.Duration(cfg.Retention.ArchiveAfterDays) * 24 * time.Hour,
		SweepInterval: time.Duration(cfg.Retention.SweepIntervalMinutes) * time.Minute,
	}, appLogger)
	if err != nil {
		return nil, fmt.Errorf("building retention sweeper: %w", err)
	}

	return &application{
		config:          cfg,
		logger:          appLogger,
		db:              db,
		studentStore:    studentStore,
		itemStore:       itemStore,
		sessionStore:    sessionStore,
		settingsStore:   settingsStore,
		practiceService: practiceService,
		gradingService:  gradingService,
		renderer:        &service.TextRenderer{},
		sweeper:         sweeper,
	}, nil
}

// serve runs the HTTP server with graceful shutdown on SIGINT/SIGTERM.
func (app *application) serve() error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-shutdownCh:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server stopped")
	return nil
}
