package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/store"
	"github.com/crewlog/crewlog/internal/worker"
)

type stubUpdateStore struct {
	created   []*domain.Update
	createErr error
}

func (s *stubUpdateStore) Create(ctx context.Context, update *domain.Update) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, update)
	return nil
}

func (s *stubUpdateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Update, error) {
	return nil, store.ErrUpdateNotFound
}

func (s *stubUpdateStore) SetTranscriptionResult(ctx context.Context, id uuid.UUID, result domain.TranscriptionResult) error {
	return nil
}

func (s *stubUpdateStore) WithTx(_ *sql.Tx) store.UpdateStore { return s }

func newTestService(t *testing.T, jobs store.JobStore, updates store.UpdateStore) (JobService, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := NewJobService(db, jobs, updates, nil)
	require.NoError(t, err)
	return svc, db, mock
}

func TestNewJobServiceValidatesDependencies(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	jobs := worker.NewMockJobStore()
	updates := &stubUpdateStore{}

	_, err = NewJobService(nil, jobs, updates, nil)
	assert.Error(t, err)

	_, err = NewJobService(db, nil, updates, nil)
	assert.Error(t, err)

	_, err = NewJobService(db, jobs, nil, nil)
	assert.Error(t, err)

	_, err = NewJobService(db, jobs, updates, nil)
	assert.NoError(t, err)
}

func TestEnqueueTranscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	jobs := worker.NewMockJobStore()
	svc, _, _ := newTestService(t, jobs, &stubUpdateStore{})

	payload := domain.TranscriptionPayload{
		UpdateID:    uuid.New(),
		SourceKey:   "uploads/audio.webm",
		ProjectName: "Kitchen Reno",
	}

	job, err := svc.EnqueueTranscription(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, domain.JobTypeTranscription, job.Type)
	assert.Equal(t, domain.JobStatusPending, job.Status)

	saved, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, saved.ID)
}

func TestEnqueueTranscriptionRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	jobs := worker.NewMockJobStore()
	svc, _, _ := newTestService(t, jobs, &stubUpdateStore{})

	_, err := svc.EnqueueTranscription(context.Background(), domain.TranscriptionPayload{
		SourceKey: "uploads/audio.webm",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestCreateUpdateAndEnqueueTranscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	jobs := worker.NewMockJobStore()
	updates := &stubUpdateStore{}
	svc, _, mock := newTestService(t, jobs, updates)

	mock.ExpectBegin()
	mock.ExpectCommit()

	projectID := uuid.New()
	job, err := svc.CreateUpdateAndEnqueueTranscription(ctx, projectID, "Kitchen Reno", "uploads/audio.webm")
	require.NoError(t, err)

	require.Len(t, updates.created, 1)
	update := updates.created[0]
	assert.Equal(t, projectID, update.ProjectID)

	payload, err := job.TranscriptionPayload()
	require.NoError(t, err)
	assert.Equal(t, update.ID, payload.UpdateID, "job must point at the created update")
	assert.Equal(t, "Kitchen Reno", payload.ProjectName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUpdateAndEnqueueTranscriptionRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	jobs := worker.NewMockJobStore()
	updates := &stubUpdateStore{createErr: errors.New("disk full")}
	svc, _, mock := newTestService(t, jobs, updates)

	mock.ExpectBegin()
	mock.ExpectRollback()

	job, err := svc.CreateUpdateAndEnqueueTranscription(
		context.Background(), uuid.New(), "Kitchen Reno", "uploads/audio.webm")
	require.Error(t, err)
	assert.Nil(t, job)

	claimed, err := jobs.Claim(context.Background())
	require.NoError(t, err)
	assert.Nil(t, claimed, "no job must be visible after rollback")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueImageOptimize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	jobs := worker.NewMockJobStore()
	svc, _, _ := newTestService(t, jobs, &stubUpdateStore{})

	job, err := svc.EnqueueImageOptimize(ctx, "uploads/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.JobTypeImageOptimize, job.Type)

	_, err = svc.EnqueueImageOptimize(ctx, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	jobs := worker.NewMockJobStore()
	svc, _, _ := newTestService(t, jobs, &stubUpdateStore{})

	created, err := svc.EnqueueImageOptimize(ctx, "uploads/photo.jpg")
	require.NoError(t, err)

	got, err := svc.GetJob(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetJob(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
}
