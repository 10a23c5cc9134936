package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/worker"
)

// Sentinel errors for the summarizer
var (
	// ErrInvalidConfig indicates the summarizer was created with invalid
	// configuration.
	ErrInvalidConfig = errors.New("invalid summarizer configuration")

	// ErrEmptyTranscript indicates an empty transcript was submitted for
	// summarization.
	ErrEmptyTranscript = errors.New("transcript cannot be empty")

	// ErrTransientFailure indicates a retryable API failure that persisted
	// through all retry attempts.
	ErrTransientFailure = errors.New("transient API failure")
)

// Config holds the settings for the Gemini summarizer.
type Config struct {
	// APIKey is the Gemini API key.
	APIKey string

	// ModelName is the Gemini model to use.
	ModelName string

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// RetryBaseDelay is the base delay for exponential backoff between
	// retries.
	RetryBaseDelay time.Duration
}

// promptTemplate asks for exactly the JSON shape domain.UpdateSummary
// unmarshals. The response schema constrains output further, but the model
// can still return junk, so parsing treats the output as untrusted.
const promptTemplate = `You are summarizing a spoken project update from a field worker.
{{if .ProjectName}}The update is for the project "{{.ProjectName}}".
{{end}}Produce a JSON object with these fields:
- "title": a short title for the update
- "summaryBullets": an array of short bullet strings covering the work done
- "progress": a one-line statement of overall progress
- "nextSteps": a one-line statement of what happens next

Transcript:
{{.Transcript}}`

type promptData struct {
	Transcript  string
	ProjectName string
}

// summarySchema constrains the model's output to the UpdateSummary shape.
var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":    {Type: genai.TypeString},
		"progress": {Type: genai.TypeString},
		"nextSteps": {
			Type: genai.TypeString,
		},
		"summaryBullets": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
}

// Summarizer implements structured transcript summarization using the
// Gemini API.
type Summarizer struct {
	logger   *slog.Logger
	config   Config
	client   *genai.Client
	template *template.Template
}

// NewSummarizer creates a Summarizer with the provided configuration.
func NewSummarizer(ctx context.Context, logger *slog.Logger, config Config) (*Summarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrInvalidConfig)
	}
	if config.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 3
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = 2 * time.Second
	}

	tmpl, err := template.New("summary").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &Summarizer{
		logger:   logger,
		config:   config,
		client:   client,
		template: tmpl,
	}, nil
}

// Summarize sends the transcript to the Gemini API and returns the parsed
// structured summary. A completion that cannot be parsed as the expected
// JSON shape yields worker.ErrMalformedCompletion so callers can fall back
// to defaults instead of retrying the job.
func (s *Summarizer) Summarize(ctx context.Context, transcript, projectName string) (domain.UpdateSummary, error) {
	prompt, err := s.buildPrompt(transcript, projectName)
	if err != nil {
		return domain.UpdateSummary{}, err
	}

	text, err := s.callWithRetry(ctx, prompt)
	if err != nil {
		return domain.UpdateSummary{}, err
	}

	return parseSummary(text)
}

// buildPrompt renders the prompt template with the transcript and optional
// project name.
func (s *Summarizer) buildPrompt(transcript, projectName string) (string, error) {
	if transcript == "" {
		return "", ErrEmptyTranscript
	}

	var buf bytes.Buffer
	err := s.template.Execute(&buf, promptData{
		Transcript:  transcript,
		ProjectName: projectName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callWithRetry makes the API call with exponential backoff and jitter.
// API transport failures are retried; an empty completion is permanent.
func (s *Summarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema,
	}

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		attemptNum := attempt + 1
		s.logger.DebugContext(ctx, "calling Gemini API",
			"attempt", attemptNum,
			"max_attempts", s.config.MaxRetries+1)

		resp, err := s.client.Models.GenerateContent(
			ctx, s.config.ModelName, genai.Text(prompt), genConfig)
		if err == nil {
			text := resp.Text()
			if text == "" {
				return "", fmt.Errorf("%w: empty completion", worker.ErrMalformedCompletion)
			}
			return text, nil
		}

		lastErr = err
		s.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if attempt >= s.config.MaxRetries {
			break
		}

		// delay = base * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(s.config.RetryBaseDelay) * math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitter)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}

	return "", fmt.Errorf("%w: exceeded %d attempts: %v",
		ErrTransientFailure, s.config.MaxRetries+1, lastErr)
}

// parseSummary decodes the completion text into an UpdateSummary. Any
// decode failure is reported as a malformed completion.
func parseSummary(text string) (domain.UpdateSummary, error) {
	var summary domain.UpdateSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return domain.UpdateSummary{}, fmt.Errorf(
			"%w: failed to parse JSON completion: %v", worker.ErrMalformedCompletion, err)
	}
	return summary, nil
}
