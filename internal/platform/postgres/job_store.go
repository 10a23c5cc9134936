package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/store"
)

// jobColumns is the column list shared by every query returning job rows.
const jobColumns = "id, type, status, payload, attempts, run_at, last_error, created_at, updated_at"

// claimQuery atomically selects the oldest eligible PENDING row and marks it
// RUNNING in one statement. FOR UPDATE SKIP LOCKED makes concurrent
// claimants skip rows another transaction has already locked instead of
// queueing behind them, which is what gives single-claimant-at-a-time
// delivery without a separate lock manager.
const claimQuery = `
	UPDATE jobs
	SET status = $1, attempts = attempts + 1, updated_at = $3
	WHERE id = (
		SELECT id FROM jobs
		WHERE status = $2 AND run_at <= $3
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	RETURNING ` + jobColumns

// PostgresJobStore implements the store.JobStore interface using PostgreSQL.
type PostgresJobStore struct {
	db store.DBTX
}

// NewPostgresJobStore creates a new PostgresJobStore.
func NewPostgresJobStore(db store.DBTX) *PostgresJobStore {
	return &PostgresJobStore{
		db: db,
	}
}

// WithTx returns a new JobStore instance that uses the provided transaction.
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db: tx,
	}
}

// Enqueue inserts a new job row in PENDING state.
func (s *PostgresJobStore) Enqueue(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO jobs (id, type, status, payload, attempts, run_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Type,
		job.Status,
		job.Payload,
		job.Attempts,
		job.RunAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to enqueue job",
			"job_id", job.ID,
			"job_type", job.Type,
			"error", err)
		return MapError(fmt.Errorf("failed to enqueue job: %w", err))
	}

	return nil
}

// Claim atomically claims the oldest eligible PENDING job, transitioning it
// to RUNNING and incrementing its attempt count. Returns (nil, nil) when no
// eligible job exists.
func (s *PostgresJobStore) Claim(ctx context.Context) (*domain.Job, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, claimQuery,
		domain.JobStatusRunning,
		domain.JobStatusPending,
		now,
	)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error("failed to claim job", "error", err)
		return nil, MapError(fmt.Errorf("failed to claim job: %w", err))
	}

	return job, nil
}

// MarkSucceeded transitions a job to SUCCEEDED. last_error and run_at are
// deliberately left as-is.
func (s *PostgresJobStore) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE jobs
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	return s.execJobUpdate(ctx, "mark succeeded", query,
		domain.JobStatusSucceeded, time.Now().UTC(), id)
}

// MarkFailed transitions a job to its terminal FAILED state.
func (s *PostgresJobStore) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE jobs
		SET status = $1, last_error = $2, updated_at = $3
		WHERE id = $4
	`
	return s.execJobUpdate(ctx, "mark failed", query,
		domain.JobStatusFailed, lastError, time.Now().UTC(), id)
}

// Reschedule re-queues a failed job with a pushed-forward run_at.
func (s *PostgresJobStore) Reschedule(ctx context.Context, id uuid.UUID, lastError string, runAt time.Time) error {
	query := `
		UPDATE jobs
		SET status = $1, last_error = $2, run_at = $3, updated_at = $4
		WHERE id = $5
	`
	return s.execJobUpdate(ctx, "reschedule", query,
		domain.JobStatusPending, lastError, runAt.UTC(), time.Now().UTC(), id)
}

// GetByID retrieves a job by its unique ID.
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		return nil, MapError(fmt.Errorf("failed to get job: %w", err))
	}

	return job, nil
}

// execJobUpdate runs a job state-transition statement and reports a missing
// row as ErrJobNotFound so callers can distinguish it from store failures.
func (s *PostgresJobStore) execJobUpdate(ctx context.Context, operation, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("job update failed", "operation", operation, "error", err)
		return MapError(store.NewStoreError("job", operation, "exec failed", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(store.NewStoreError("job", operation, "rows affected", err))
	}
	if rowsAffected == 0 {
		return store.ErrJobNotFound
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob reads one job row into a domain.Job.
func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var lastError sql.NullString

	err := row.Scan(
		&job.ID,
		&job.Type,
		&job.Status,
		&job.Payload,
		&job.Attempts,
		&job.RunAt,
		&lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.LastError = lastError.String
	return &job, nil
}
