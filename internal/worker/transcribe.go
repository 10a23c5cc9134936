package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/store"
)

// TranscribeHandler turns an uploaded audio object into a transcript and a
// structured summary, then writes the result onto the owning update record.
type TranscribeHandler struct {
	storage     ObjectStorage
	transcriber Transcriber
	summarizer  Summarizer
	updates     store.UpdateStore
}

// NewTranscribeHandler creates a TranscribeHandler with its provider
// dependencies.
func NewTranscribeHandler(
	storage ObjectStorage,
	transcriber Transcriber,
	summarizer Summarizer,
	updates store.UpdateStore,
) *TranscribeHandler {
	return &TranscribeHandler{
		storage:     storage,
		transcriber: transcriber,
		summarizer:  summarizer,
		updates:     updates,
	}
}

// Handle processes a TRANSCRIPTION job. A payload that fails validation is
// rejected before any provider is contacted. A malformed completion from
// the summarizer is not a failure: the handler falls back to the raw
// transcript and the default title rather than burning a retry on it.
func (h *TranscribeHandler) Handle(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx)

	payload, err := job.TranscriptionPayload()
	if err != nil {
		return err
	}

	audio, err := h.storage.Fetch(ctx, payload.SourceKey)
	if err != nil {
		return fmt.Errorf("failed to fetch audio object %q: %w", payload.SourceKey, err)
	}
	defer func() { _ = audio.Close() }()

	transcript, err := h.transcriber.Transcribe(ctx, audio, payload.SourceKey)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	log.Debug("audio transcribed", "transcript_length", len(transcript))

	summary, err := h.summarizer.Summarize(ctx, transcript, payload.ProjectName)
	if err != nil {
		if !errors.Is(err, ErrMalformedCompletion) {
			return fmt.Errorf("summarization failed: %w", err)
		}
		log.Warn("discarding malformed completion", "error", err)
		summary = domain.UpdateSummary{}
	}

	result := domain.NewTranscriptionResult(transcript, summary)
	if err := h.updates.SetTranscriptionResult(ctx, payload.UpdateID, result); err != nil {
		return fmt.Errorf("failed to save transcription result: %w", err)
	}

	log.Info("transcription result saved", "update_id", payload.UpdateID, "title", result.Title)
	return nil
}
