package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/services"
)

// maxAudioBytes caps voice uploads; the recorder stops at thirty seconds and
// this is the server-side equivalent of that cap.
const maxAudioBytes = 10 << 20 // 10 MiB

type TranscribeHandler struct {
	log           *logger.Logger
	transcription services.TranscriptionService
}

func NewTranscribeHandler(log *logger.Logger, transcription services.TranscriptionService) *TranscribeHandler {
	return &TranscribeHandler{
		log:           log.With("handler", "TranscribeHandler"),
		transcription: transcription,
	}
}

func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	filename, contentType, data, ok := readUpload(c, maxAudioBytes)
	if !ok {
		return
	}
	text, err := h.transcription.Transcribe(c.Request.Context(), data, filename, contentType)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTranscript) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no speech detected"})
			return
		}
		h.log.Error("Failed to transcribe audio", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transcription failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
