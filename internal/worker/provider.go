package worker

import (
	"context"
	"errors"
	"io"

	"github.com/crewlog/crewlog/internal/domain"
)

// Provider errors shared by handler implementations.
var (
	// ErrUnknownJobType is recorded when a claimed job has no registered
	// handler. The job still flows through the normal retry policy.
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrMalformedCompletion is returned by a Summarizer when the
	// completion provider's output cannot be parsed as the expected JSON
	// shape. Handlers treat this as a fallback-to-defaults case, not a
	// failure.
	ErrMalformedCompletion = errors.New("malformed completion response")
)

// Handler is the function executed for each claimed job. A non-nil return
// value triggers the retry/backoff policy; a nil return marks the job
// succeeded.
type Handler func(ctx context.Context, job *domain.Job) error

// ObjectStorage is the object-storage collaborator handlers read uploaded
// media from and write optimized renditions back to.
type ObjectStorage interface {
	// Fetch returns a reader over the object stored under key.
	// The caller must close it.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)

	// Put stores body under key with the given content type.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Transcriber is the speech-to-text collaborator. name carries the source
// object key so implementations can derive the audio format.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, name string) (string, error)
}

// Summarizer is the structured-completion collaborator. It turns a raw
// transcript into the fixed update-summary shape, optionally using the
// project name as context. Implementations return ErrMalformedCompletion
// when the provider's output does not parse as that shape.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, projectName string) (domain.UpdateSummary, error)
}

// ImageProcessor resizes and re-encodes an uploaded image. It returns the
// optimized bytes and their content type.
type ImageProcessor interface {
	Optimize(r io.Reader) ([]byte, string, error)
}
