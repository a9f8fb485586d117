package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agrosub/agrosub-backend/internal/logger"
)

// ErrEmptyTranscript is returned when the provider answered but produced no
// usable text.
var ErrEmptyTranscript = errors.New("transcription produced no text")

// SpeechProvider is the narrow surface a transcription backend must offer.
type SpeechProvider interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error)
}

type TranscriptionService interface {
	Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (string, error)
}

type transcriptionService struct {
	log      *logger.Logger
	ai       OpenAIClient
	gcp      SpeechProvider
	provider string
	language string
}

// NewTranscriptionService selects the provider at boot: "openai" (default)
// uses the whisper endpoint, "gcp" uses Cloud Speech. A nil gcp provider with
// provider=gcp falls back to openai with a warning.
func NewTranscriptionService(log *logger.Logger, ai OpenAIClient, gcp SpeechProvider, provider, language string) TranscriptionService {
	log = log.With("service", "TranscriptionService")
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = "openai"
	}
	if provider == "gcp" && gcp == nil {
		log.Warn("GCP speech provider selected but not configured, falling back to openai")
		provider = "openai"
	}
	if language == "" {
		language = "fr"
	}
	return &transcriptionService{log: log, ai: ai, gcp: gcp, provider: provider, language: language}
}

func (ts *transcriptionService) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	var (
		text string
		err  error
	)
	switch ts.provider {
	case "gcp":
		text, err = ts.gcp.Transcribe(ctx, audio, mimeType, "fr-FR")
	default:
		text, err = ts.ai.TranscribeAudio(ctx, audio, filename, ts.language)
	}
	if err != nil {
		return "", fmt.Errorf("Failed to transcribe audio: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
