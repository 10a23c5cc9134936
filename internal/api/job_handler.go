package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/api/shared"
	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/service"
)

// EnqueueTranscribeRequest is the request body for enqueuing a
// transcription job against an existing update.
type EnqueueTranscribeRequest struct {
	UpdateID    string `json:"updateId" validate:"required,uuid"`
	SourceKey   string `json:"sourceKey" validate:"required"`
	ProjectName string `json:"projectName"`
}

// EnqueueOptimizeRequest is the request body for enqueuing an image
// optimization job.
type EnqueueOptimizeRequest struct {
	SourceKey string `json:"sourceKey" validate:"required"`
}

// EnqueueResponse is returned for all enqueue requests.
type EnqueueResponse struct {
	JobID string `json:"jobId"`
}

// JobResponse represents a job's state for status polling.
type JobResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	RunAt     time.Time `json:"run_at"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	jobService service.JobService
	validator  *validator.Validate
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		validator:  validator.New(),
	}
}

// EnqueueTranscribe handles POST /api/jobs/transcribe requests
func (h *JobHandler) EnqueueTranscribe(w http.ResponseWriter, r *http.Request) {
	var req EnqueueTranscribeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing updateId or sourceKey")
		return
	}

	updateID, err := uuid.Parse(req.UpdateID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid updateId")
		return
	}

	job, err := h.jobService.EnqueueTranscription(r.Context(), domain.TranscriptionPayload{
		UpdateID:    updateID,
		SourceKey:   req.SourceKey,
		ProjectName: req.ProjectName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job payload")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to enqueue transcription job", err)
		return
	}

	// Processing happens asynchronously, so 202 rather than 201.
	shared.RespondWithJSON(w, r, http.StatusAccepted, EnqueueResponse{JobID: job.ID.String()})
}

// EnqueueOptimize handles POST /api/jobs/optimize requests
func (h *JobHandler) EnqueueOptimize(w http.ResponseWriter, r *http.Request) {
	var req EnqueueOptimizeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing sourceKey")
		return
	}

	job, err := h.jobService.EnqueueImageOptimize(r.Context(), req.SourceKey)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job payload")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to enqueue image optimization job", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, EnqueueResponse{JobID: job.ID.String()})
}

// GetJob handles GET /api/jobs/{id} requests
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.jobService.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to retrieve job", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}

// jobToResponse converts a domain.Job to a JobResponse
func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:        job.ID.String(),
		Type:      string(job.Type),
		Status:    string(job.Status),
		Attempts:  job.Attempts,
		RunAt:     job.RunAt,
		LastError: job.LastError,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}
