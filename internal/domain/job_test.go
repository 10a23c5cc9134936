package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain"
)

func TestNewTranscriptionJob(t *testing.T) {
	t.Parallel()

	t.Run("valid payload", func(t *testing.T) {
		t.Parallel()

		updateID := uuid.New()
		job, err := domain.NewTranscriptionJob(domain.TranscriptionPayload{
			UpdateID:    updateID,
			SourceKey:   "uploads/site-visit.m4a",
			ProjectName: "Kitchen Remodel",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, job.ID)
		assert.Equal(t, domain.JobTypeTranscription, job.Type)
		assert.Equal(t, domain.JobStatusPending, job.Status)
		assert.Equal(t, 0, job.Attempts)
		assert.False(t, job.RunAt.IsZero())
		assert.False(t, job.Terminal())

		parsed, err := job.TranscriptionPayload()
		require.NoError(t, err)
		assert.Equal(t, updateID, parsed.UpdateID)
		assert.Equal(t, "uploads/site-visit.m4a", parsed.SourceKey)
		assert.Equal(t, "Kitchen Remodel", parsed.ProjectName)
	})

	t.Run("missing updateId", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTranscriptionJob(domain.TranscriptionPayload{
			SourceKey: "uploads/site-visit.m4a",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("missing sourceKey", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTranscriptionJob(domain.TranscriptionPayload{
			UpdateID: uuid.New(),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("projectName is optional", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTranscriptionJob(domain.TranscriptionPayload{
			UpdateID:  uuid.New(),
			SourceKey: "uploads/site-visit.m4a",
		})
		assert.NoError(t, err)
	})
}

func TestNewImageOptimizeJob(t *testing.T) {
	t.Parallel()

	t.Run("valid payload", func(t *testing.T) {
		t.Parallel()

		job, err := domain.NewImageOptimizeJob(domain.ImageOptimizePayload{
			SourceKey: "uploads/progress-photo.jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.JobTypeImageOptimize, job.Type)
		assert.Equal(t, domain.JobStatusPending, job.Status)
	})

	t.Run("missing sourceKey", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewImageOptimizeJob(domain.ImageOptimizePayload{})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})
}

func TestJobPayloadParsing(t *testing.T) {
	t.Parallel()

	t.Run("malformed payload document", func(t *testing.T) {
		t.Parallel()

		job := &domain.Job{
			ID:      uuid.New(),
			Type:    domain.JobTypeTranscription,
			Status:  domain.JobStatusPending,
			Payload: json.RawMessage(`not json`),
		}

		_, err := job.TranscriptionPayload()
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("payload missing required keys", func(t *testing.T) {
		t.Parallel()

		job := &domain.Job{
			ID:      uuid.New(),
			Type:    domain.JobTypeImageOptimize,
			Status:  domain.JobStatusPending,
			Payload: json.RawMessage(`{}`),
		}

		_, err := job.ImageOptimizePayload()
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})
}

func TestJobTerminal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status   domain.JobStatus
		terminal bool
	}{
		{domain.JobStatusPending, false},
		{domain.JobStatusRunning, false},
		{domain.JobStatusSucceeded, true},
		{domain.JobStatusFailed, true},
	}

	for _, tc := range cases {
		job := &domain.Job{Status: tc.status}
		assert.Equal(t, tc.terminal, job.Terminal(), "status %s", tc.status)
	}
}
