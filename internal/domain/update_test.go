package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crewlog/crewlog/internal/domain"
)

func TestNewTranscriptionResult(t *testing.T) {
	t.Parallel()

	t.Run("joins bullets with newlines", func(t *testing.T) {
		t.Parallel()

		result := domain.NewTranscriptionResult("replaced the tap", domain.UpdateSummary{
			Title:          "Plumbing",
			SummaryBullets: []string{"Replaced tap", "Checked seals"},
			Progress:       "50%",
			NextSteps:      "Test water pressure",
		})

		assert.Equal(t, "replaced the tap", result.Transcript)
		assert.Equal(t, "Replaced tap\nChecked seals", result.Summary)
		assert.Equal(t, "50%", result.Progress)
		assert.Equal(t, "Test water pressure", result.NextSteps)
		assert.Equal(t, "Plumbing", result.Title)
	})

	t.Run("falls back to transcript when bullets absent", func(t *testing.T) {
		t.Parallel()

		result := domain.NewTranscriptionResult("replaced the tap", domain.UpdateSummary{})

		assert.Equal(t, "replaced the tap", result.Summary)
		assert.Equal(t, domain.DefaultUpdateTitle, result.Title)
		assert.Empty(t, result.Progress)
		assert.Empty(t, result.NextSteps)
	})
}
