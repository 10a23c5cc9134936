package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType identifies the kind of background work a job performs.
type JobType string

// Possible job type values
const (
	JobTypeTranscription JobType = "TRANSCRIPTION"
	JobTypeImageOptimize JobType = "IMAGE_OPTIMIZE"
)

// JobStatus represents a job's position in its lifecycle.
type JobStatus string

// Possible job status values
const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Common validation errors for Job
var (
	ErrEmptyJobID     = errors.New("job ID cannot be empty")
	ErrInvalidJobType = errors.New("invalid job type")
)

// Job represents a unit of deferred, retryable background work.
// Attempts counts claim tries, not handler failures: it is incremented
// when a worker claims the job, before the handler runs.
type Job struct {
	ID        uuid.UUID       `json:"id"`
	Type      JobType         `json:"type"`
	Status    JobStatus       `json:"status"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	RunAt     time.Time       `json:"run_at"`
	LastError string          `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TranscriptionPayload is the typed payload for TRANSCRIPTION jobs.
// It names everything the handler needs: the update record to write
// results to and the object-storage key of the uploaded audio.
type TranscriptionPayload struct {
	UpdateID    uuid.UUID `json:"updateId"`
	SourceKey   string    `json:"sourceKey"`
	ProjectName string    `json:"projectName,omitempty"`
}

// Validate checks that all required payload fields are present.
func (p TranscriptionPayload) Validate() error {
	if p.UpdateID == uuid.Nil {
		return fmt.Errorf("%w: missing updateId", ErrInvalidPayload)
	}
	if p.SourceKey == "" {
		return fmt.Errorf("%w: missing sourceKey", ErrInvalidPayload)
	}
	return nil
}

// ImageOptimizePayload is the typed payload for IMAGE_OPTIMIZE jobs.
type ImageOptimizePayload struct {
	SourceKey string `json:"sourceKey"`
}

// Validate checks that all required payload fields are present.
func (p ImageOptimizePayload) Validate() error {
	if p.SourceKey == "" {
		return fmt.Errorf("%w: missing sourceKey", ErrInvalidPayload)
	}
	return nil
}

// NewTranscriptionJob creates a pending TRANSCRIPTION job with the given
// payload. Payload validation happens here, at the union's construction
// boundary, so an invalid payload never reaches the queue.
func NewTranscriptionJob(payload TranscriptionPayload) (*Job, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return newJob(JobTypeTranscription, payload)
}

// NewImageOptimizeJob creates a pending IMAGE_OPTIMIZE job with the given payload.
func NewImageOptimizeJob(payload ImageOptimizePayload) (*Job, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return newJob(JobTypeImageOptimize, payload)
}

func newJob(jobType JobType, payload any) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.New(),
		Type:      jobType,
		Status:    JobStatusPending,
		Payload:   raw,
		Attempts:  0,
		RunAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if !isValidJobType(j.Type) {
		return ErrInvalidJobType
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	return nil
}

// Terminal reports whether the job is in a terminal state. Terminal jobs
// are never claimed or transitioned again.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}

// TranscriptionPayload parses the job's payload as a TranscriptionPayload.
func (j *Job) TranscriptionPayload() (TranscriptionPayload, error) {
	var p TranscriptionPayload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, p.Validate()
}

// ImageOptimizePayload parses the job's payload as an ImageOptimizePayload.
func (j *Job) ImageOptimizePayload() (ImageOptimizePayload, error) {
	var p ImageOptimizePayload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, p.Validate()
}

// isValidJobType checks if the given type is a known JobType.
func isValidJobType(t JobType) bool {
	switch t {
	case JobTypeTranscription, JobTypeImageOptimize:
		return true
	default:
		return false
	}
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusRunning, JobStatusSucceeded, JobStatusFailed:
		return true
	default:
		return false
	}
}
