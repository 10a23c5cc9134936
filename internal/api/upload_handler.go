package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/crewlog/crewlog/internal/api/shared"
	"github.com/crewlog/crewlog/internal/platform/s3"
)

// UploadPresigner mints presigned upload URLs. Satisfied by *s3.Storage.
type UploadPresigner interface {
	PresignUpload(ctx context.Context, filename, contentType string) (*s3.PresignedUpload, error)
}

// PresignUploadRequest is the request body for requesting an upload URL.
type PresignUploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

// PresignUploadResponse carries the presigned PUT URL and the object key
// the client should reference when enqueuing jobs afterwards.
type PresignUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadHandler handles upload presigning HTTP requests
type UploadHandler struct {
	presigner UploadPresigner
	validator *validator.Validate
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(presigner UploadPresigner) *UploadHandler {
	return &UploadHandler{
		presigner: presigner,
		validator: validator.New(),
	}
}

// PresignUpload handles POST /api/uploads requests
func (h *UploadHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req PresignUploadRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing filename or contentType")
		return
	}

	upload, err := h.presigner.PresignUpload(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create upload URL", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PresignUploadResponse{
		URL: upload.URL,
		Key: upload.Key,
	})
}
