package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/crewlog/crewlog/internal/api"
	"github.com/crewlog/crewlog/internal/api/middleware"
	"github.com/crewlog/crewlog/internal/config"
	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/platform/postgres"
	"github.com/crewlog/crewlog/internal/platform/s3"
	"github.com/crewlog/crewlog/internal/service"
)

// application holds the initialized dependencies of the API server.
type application struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	router chi.Router
}

// initializeApp loads configuration and sets up application components.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		return nil, err
	}

	ctx := context.Background()
	storage, err := s3.NewStorage(ctx, cfg.Storage.Region, cfg.Storage.Bucket,
		time.Duration(cfg.Storage.PresignExpiryMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	jobStore := postgres.NewPostgresJobStore(db)
	updateStore := postgres.NewPostgresUpdateStore(db)

	jobService, err := service.NewJobService(db, jobStore, updateStore, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize job service: %w", err)
	}

	router := buildRouter(api.NewJobHandler(jobService), api.NewUploadHandler(storage))

	return &application{
		cfg:    cfg,
		logger: appLogger,
		db:     db,
		router: router,
	}, nil
}

// buildRouter assembles the HTTP routes and middleware chain.
func buildRouter(jobHandler *api.JobHandler, uploadHandler *api.UploadHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/transcribe", jobHandler.EnqueueTranscribe)
			r.Post("/optimize", jobHandler.EnqueueOptimize)
			r.Get("/{id}", jobHandler.GetJob)
		})
		r.Post("/uploads", uploadHandler.PresignUpload)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run() error {
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		app.logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	app.logger.Info("server stopped")
	return nil
}
