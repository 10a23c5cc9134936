package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain"
)

// JobStore defines the interface for the durable job queue. It is the
// single source of truth for job existence, state, and history.
//
// The implementation must make Claim atomic with respect to concurrent
// claimants: no two Claim calls may return the same PENDING job, and a
// claimant must skip rows locked by another claimant rather than block
// behind them.
type JobStore interface {
	// Enqueue inserts a new job row. The job must already be validated
	// and in PENDING state with attempts = 0.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Claim atomically selects the oldest-by-creation PENDING job whose
	// run_at is not in the future, marks it RUNNING, increments attempts,
	// and returns the updated row. Returns (nil, nil) when no eligible
	// job is currently available.
	Claim(ctx context.Context) (*domain.Job, error)

	// MarkSucceeded transitions a job to SUCCEEDED. last_error and run_at
	// are left untouched.
	MarkSucceeded(ctx context.Context, id uuid.UUID) error

	// MarkFailed transitions a job to FAILED, recording the final error.
	// FAILED is terminal; no further automatic action is taken.
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error

	// Reschedule re-queues a failed job: status back to PENDING, the
	// failure recorded in last_error, and run_at pushed to the given time.
	Reschedule(ctx context.Context, id uuid.UUID, lastError string, runAt time.Time) error

	// GetByID retrieves a job by its unique ID for status reporting.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// WithTx returns a new JobStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) JobStore
}
