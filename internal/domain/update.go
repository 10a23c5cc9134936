package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Update represents a project status update record. The transcription
// worker owns only a narrow write contract against it: transcript,
// summary, progress, next steps, and title.
type Update struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Transcript string    `json:"transcript"`
	Summary    string    `json:"summary"`
	Progress   string    `json:"progress"`
	NextSteps  string    `json:"next_steps"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUpdate creates an empty update record for the given project. The
// transcription worker fills in the content fields once the audio is
// processed.
func NewUpdate(projectID uuid.UUID) *Update {
	now := time.Now().UTC()
	return &Update{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     DefaultUpdateTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultUpdateTitle is used when the completion provider returns no title.
const DefaultUpdateTitle = "Project Update"

// UpdateSummary is the fixed JSON shape requested from the structured
// completion provider. The provider's output is untrusted: any of these
// fields may be missing or malformed, and callers fall back to defaults.
type UpdateSummary struct {
	Title          string   `json:"title"`
	SummaryBullets []string `json:"summaryBullets"`
	Progress       string   `json:"progress"`
	NextSteps      string   `json:"nextSteps"`
}

// TranscriptionResult is the set of fields the transcription handler
// writes back onto an update record.
type TranscriptionResult struct {
	Transcript string
	Summary    string
	Progress   string
	NextSteps  string
	Title      string
}

// NewTranscriptionResult combines a raw transcript with a parsed summary,
// applying the documented fallbacks: the joined bullets become the summary
// unless they are absent, in which case the raw transcript is used, and a
// missing title falls back to DefaultUpdateTitle.
func NewTranscriptionResult(transcript string, summary UpdateSummary) TranscriptionResult {
	result := TranscriptionResult{
		Transcript: transcript,
		Summary:    transcript,
		Progress:   summary.Progress,
		NextSteps:  summary.NextSteps,
		Title:      summary.Title,
	}

	if len(summary.SummaryBullets) > 0 {
		result.Summary = strings.Join(summary.SummaryBullets, "\n")
	}

	if result.Title == "" {
		result.Title = DefaultUpdateTitle
	}

	return result
}
