// Package main implements the entry point for the crewlog background
// worker. The worker claims jobs from the queue, runs the registered
// handler for each job type, and applies the retry policy to failures.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crewlog/crewlog/internal/config"
	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/platform/gemini"
	"github.com/crewlog/crewlog/internal/platform/images"
	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/platform/postgres"
	"github.com/crewlog/crewlog/internal/platform/s3"
	"github.com/crewlog/crewlog/internal/platform/whisper"
	"github.com/crewlog/crewlog/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Worker exited with error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	workerLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	workerLogger.Info("worker configuration loaded",
		"loops", cfg.Worker.Loops,
		"poll_interval_seconds", cfg.Worker.PollIntervalSeconds,
		"max_attempts", cfg.Worker.MaxAttempts)

	db, err := setupDatabase(cfg, workerLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			workerLogger.Error("failed to close database connection", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner, err := buildRunner(ctx, cfg, workerLogger, db)
	if err != nil {
		return err
	}

	go serveMetrics(cfg.Worker.MetricsPort, workerLogger)

	workerLogger.Info("worker started")
	runner.Start(ctx)
	workerLogger.Info("worker stopped")
	return nil
}

// buildRunner wires the providers, stores, and handlers into a Runner.
func buildRunner(
	ctx context.Context,
	cfg *config.Config,
	workerLogger *slog.Logger,
	db *sql.DB,
) (*worker.Runner, error) {
	storage, err := s3.NewStorage(ctx, cfg.Storage.Region, cfg.Storage.Bucket,
		time.Duration(cfg.Storage.PresignExpiryMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	transcriber, err := whisper.NewTranscriber(cfg.Providers.OpenAIAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transcriber: %w", err)
	}

	summarizer, err := gemini.NewSummarizer(ctx, workerLogger, gemini.Config{
		APIKey:    cfg.Providers.GeminiAPIKey,
		ModelName: cfg.Providers.GeminiModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}

	jobStore := postgres.NewPostgresJobStore(db)
	updateStore := postgres.NewPostgresUpdateStore(db)
	imageStore := postgres.NewPostgresImageStore(db)

	runnerCfg := worker.RunnerConfig{
		Loops:          cfg.Worker.Loops,
		PollInterval:   time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second,
		ErrorPause:     time.Duration(cfg.Worker.ErrorPauseSeconds) * time.Second,
		HandlerTimeout: time.Duration(cfg.Worker.HandlerTimeoutMinutes) * time.Minute,
	}
	policy := worker.RetryPolicy{
		MaxAttempts: cfg.Worker.MaxAttempts,
		BaseDelay:   time.Minute,
	}

	runner := worker.NewRunner(jobStore, runnerCfg, policy, workerLogger)

	transcribe := worker.NewTranscribeHandler(storage, transcriber, summarizer, updateStore)
	optimize := worker.NewOptimizeHandler(storage, images.NewProcessor(), imageStore)

	runner.Register(domain.JobTypeTranscription, transcribe.Handle)
	runner.Register(domain.JobTypeImageOptimize, optimize.Handle)

	return runner, nil
}

// setupDatabase connects to the database. Schema migrations are owned by
// the API server; the worker only verifies connectivity.
func setupDatabase(cfg *config.Config, workerLogger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workerLogger.Info("database connection established")
	return db, nil
}

// serveMetrics exposes Prometheus metrics for scraping.
func serveMetrics(port int, workerLogger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	workerLogger.Info("metrics server listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		workerLogger.Error("metrics server stopped", "error", err)
	}
}
