package worker

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/store"
)

// MockJobStore is an in-memory implementation of store.JobStore for tests.
// Each method can be overridden by setting the corresponding function field;
// otherwise the built-in map-backed behavior applies, including the real
// claim semantics: oldest eligible PENDING job wins, at most one claimant.
type MockJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.Job

	EnqueueFn       func(ctx context.Context, job *domain.Job) error
	ClaimFn         func(ctx context.Context) (*domain.Job, error)
	MarkSucceededFn func(ctx context.Context, id uuid.UUID) error
	MarkFailedFn    func(ctx context.Context, id uuid.UUID, lastError string) error
	RescheduleFn    func(ctx context.Context, id uuid.UUID, lastError string, runAt time.Time) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Job, error)
}

var _ store.JobStore = (*MockJobStore)(nil)

// NewMockJobStore creates an empty MockJobStore.
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{jobs: make(map[uuid.UUID]*domain.Job)}
}

// Enqueue implements store.JobStore.
func (m *MockJobStore) Enqueue(ctx context.Context, job *domain.Job) error {
	if m.EnqueueFn != nil {
		return m.EnqueueFn(ctx, job)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

// Claim implements store.JobStore. It atomically selects the oldest
// PENDING job whose run_at has passed, marks it RUNNING, and increments
// its attempt counter. Returns (nil, nil) when no job is eligible.
func (m *MockJobStore) Claim(ctx context.Context) (*domain.Job, error) {
	if m.ClaimFn != nil {
		return m.ClaimFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	var eligible []*domain.Job
	for _, job := range m.jobs {
		if job.Status == domain.JobStatusPending && !job.RunAt.After(now) {
			eligible = append(eligible, job)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	job := eligible[0]
	job.Status = domain.JobStatusRunning
	job.Attempts++
	job.UpdatedAt = now

	cp := *job
	return &cp, nil
}

// MarkSucceeded implements store.JobStore.
func (m *MockJobStore) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	if m.MarkSucceededFn != nil {
		return m.MarkSucceededFn(ctx, id)
	}

	return m.transition(id, func(job *domain.Job) {
		job.Status = domain.JobStatusSucceeded
	})
}

// MarkFailed implements store.JobStore.
func (m *MockJobStore) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	if m.MarkFailedFn != nil {
		return m.MarkFailedFn(ctx, id, lastError)
	}

	return m.transition(id, func(job *domain.Job) {
		job.Status = domain.JobStatusFailed
		job.LastError = lastError
	})
}

// Reschedule implements store.JobStore.
func (m *MockJobStore) Reschedule(ctx context.Context, id uuid.UUID, lastError string, runAt time.Time) error {
	if m.RescheduleFn != nil {
		return m.RescheduleFn(ctx, id, lastError, runAt)
	}

	return m.transition(id, func(job *domain.Job) {
		job.Status = domain.JobStatusPending
		job.LastError = lastError
		job.RunAt = runAt
	})
}

// GetByID implements store.JobStore.
func (m *MockJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

// WithTx implements store.JobStore. Transactions are a no-op in memory.
func (m *MockJobStore) WithTx(_ *sql.Tx) store.JobStore {
	return m
}

func (m *MockJobStore) transition(id uuid.UUID, apply func(*domain.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	apply(job)
	job.UpdatedAt = time.Now().UTC()
	return nil
}
