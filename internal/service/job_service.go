package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/store"
)

// Common sentinel errors for JobService
var (
	// ErrJobNotFound indicates that the requested job does not exist
	ErrJobNotFound = errors.New("job not found")
)

// JobService provides enqueue and lookup operations for background jobs.
type JobService interface {
	// EnqueueTranscription creates a TRANSCRIPTION job for an existing
	// update and its uploaded audio object.
	EnqueueTranscription(
		ctx context.Context,
		payload domain.TranscriptionPayload,
	) (*domain.Job, error)

	// CreateUpdateAndEnqueueTranscription creates a new update record and
	// its TRANSCRIPTION job in a single transaction, so a job never points
	// at an update that failed to persist.
	CreateUpdateAndEnqueueTranscription(
		ctx context.Context,
		projectID uuid.UUID,
		projectName string,
		sourceKey string,
	) (*domain.Job, error)

	// EnqueueImageOptimize creates an IMAGE_OPTIMIZE job for an uploaded
	// image object.
	EnqueueImageOptimize(ctx context.Context, sourceKey string) (*domain.Job, error)

	// GetJob retrieves a job by its ID.
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)
}

// JobServiceError wraps errors from the job service with context.
type JobServiceError struct {
	// Operation is the operation that failed (e.g., "enqueue_transcription")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for JobServiceError.
func (e *JobServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("job service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("job service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *JobServiceError) Unwrap() error {
	return e.Err
}

// NewJobServiceError creates a new JobServiceError.
// It returns known sentinel errors directly without wrapping.
func NewJobServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrJobNotFound) || errors.Is(err, store.ErrJobNotFound) {
		return ErrJobNotFound
	}

	return &JobServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// jobServiceImpl implements the JobService interface
type jobServiceImpl struct {
	db      *sql.DB
	jobs    store.JobStore
	updates store.UpdateStore
	logger  *slog.Logger
}

// NewJobService creates a new JobService.
// It returns an error if any of the required dependencies are nil.
func NewJobService(
	db *sql.DB,
	jobs store.JobStore,
	updates store.UpdateStore,
	logger *slog.Logger,
) (JobService, error) {
	if db == nil {
		return nil, &JobServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if jobs == nil {
		return nil, &JobServiceError{
			Operation: "create_service",
			Message:   "jobs cannot be nil",
		}
	}
	if updates == nil {
		return nil, &JobServiceError{
			Operation: "create_service",
			Message:   "updates cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &jobServiceImpl{
		db:      db,
		jobs:    jobs,
		updates: updates,
		logger:  logger.With("component", "job_service"),
	}, nil
}

// EnqueueTranscription creates a pending TRANSCRIPTION job for an existing
// update record.
func (s *jobServiceImpl) EnqueueTranscription(
	ctx context.Context,
	payload domain.TranscriptionPayload,
) (*domain.Job, error) {
	job, err := domain.NewTranscriptionJob(payload)
	if err != nil {
		s.logger.Error("failed to build transcription job",
			"error", err,
			"update_id", payload.UpdateID)
		return nil, NewJobServiceError("enqueue_transcription", "invalid job payload", err)
	}

	if err := s.jobs.Enqueue(ctx, job); err != nil {
		s.logger.Error("failed to enqueue transcription job",
			"error", err,
			"job_id", job.ID,
			"update_id", payload.UpdateID)
		return nil, NewJobServiceError("enqueue_transcription", "failed to save job", err)
	}

	s.logger.Info("transcription job enqueued",
		"job_id", job.ID,
		"update_id", payload.UpdateID,
		"source_key", payload.SourceKey)
	return job, nil
}

// CreateUpdateAndEnqueueTranscription creates the update record and its job
// atomically. If either write fails, neither is visible.
func (s *jobServiceImpl) CreateUpdateAndEnqueueTranscription(
	ctx context.Context,
	projectID uuid.UUID,
	projectName string,
	sourceKey string,
) (*domain.Job, error) {
	update := domain.NewUpdate(projectID)

	job, err := domain.NewTranscriptionJob(domain.TranscriptionPayload{
		UpdateID:    update.ID,
		SourceKey:   sourceKey,
		ProjectName: projectName,
	})
	if err != nil {
		s.logger.Error("failed to build transcription job",
			"error", err,
			"project_id", projectID)
		return nil, NewJobServiceError("create_update", "invalid job payload", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.updates.WithTx(tx).Create(ctx, update); err != nil {
			return NewJobServiceError("create_update", "failed to save update", err)
		}
		if err := s.jobs.WithTx(tx).Enqueue(ctx, job); err != nil {
			return NewJobServiceError("create_update", "failed to save job", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create update and enqueue job",
			"error", err,
			"project_id", projectID,
			"update_id", update.ID)
		return nil, err
	}

	s.logger.Info("update created and transcription job enqueued",
		"job_id", job.ID,
		"update_id", update.ID,
		"project_id", projectID)
	return job, nil
}

// EnqueueImageOptimize creates a pending IMAGE_OPTIMIZE job.
func (s *jobServiceImpl) EnqueueImageOptimize(
	ctx context.Context,
	sourceKey string,
) (*domain.Job, error) {
	job, err := domain.NewImageOptimizeJob(domain.ImageOptimizePayload{SourceKey: sourceKey})
	if err != nil {
		s.logger.Error("failed to build image optimization job",
			"error", err,
			"source_key", sourceKey)
		return nil, NewJobServiceError("enqueue_image_optimize", "invalid job payload", err)
	}

	if err := s.jobs.Enqueue(ctx, job); err != nil {
		s.logger.Error("failed to enqueue image optimization job",
			"error", err,
			"job_id", job.ID,
			"source_key", sourceKey)
		return nil, NewJobServiceError("enqueue_image_optimize", "failed to save job", err)
	}

	s.logger.Info("image optimization job enqueued",
		"job_id", job.ID,
		"source_key", sourceKey)
	return job, nil
}

// GetJob retrieves a job by its ID.
func (s *jobServiceImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) || store.IsNotFoundError(err) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("failed to retrieve job",
			"error", err,
			"job_id", jobID)
		return nil, NewJobServiceError("get_job", "failed to retrieve job", err)
	}

	return job, nil
}
