package services

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/agrosub/agrosub-backend/internal/logger"
)

type gcpSpeechProvider struct {
	log    *logger.Logger
	client *speech.Client
}

// NewGCPSpeechProvider wires Cloud Speech as an alternative transcription
// backend. Credentials come from the ambient service account.
func NewGCPSpeechProvider(ctx context.Context, log *logger.Logger) (SpeechProvider, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failed to create speech client: %w", err)
	}
	return &gcpSpeechProvider{log: log.With("service", "GCPSpeechProvider"), client: client}, nil
}

func encodingForMime(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(mimeType, "webm"), strings.Contains(mimeType, "ogg"), strings.Contains(mimeType, "opus"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(mimeType, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(mimeType, "wav"), strings.Contains(mimeType, "x-wav"):
		return speechpb.RecognitionConfig_LINEAR16
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func (gp *gcpSpeechProvider) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	if language == "" {
		language = "fr-FR"
	}
	resp, err := gp.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     encodingForMime(mimeType),
			LanguageCode: language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("Failed to recognize speech: %w", err)
	}

	var builder strings.Builder
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(alternatives[0].GetTranscript())
	}
	return builder.String(), nil
}
