// Package whisper provides speech-to-text via the OpenAI audio
// transcription API.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber converts audio streams into text using the whisper-1 model.
type Transcriber struct {
	client *openai.Client
}

// NewTranscriber creates a Transcriber with the given API key.
func NewTranscriber(apiKey string) (*Transcriber, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return &Transcriber{client: openai.NewClient(apiKey)}, nil
}

// Transcribe sends the audio stream to the transcription API and returns
// the transcript text. The name is the original object key; its base name
// lets the API infer the audio container format.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, name string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   audio,
		FilePath: path.Base(name),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return resp.Text, nil
}
