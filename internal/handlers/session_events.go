package handlers

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/sse"
)

type SessionEventsHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewSessionEventsHandler(log *logger.Logger, hub *sse.Hub) *SessionEventsHandler {
	return &SessionEventsHandler{log: log.With("handler", "SessionEventsHandler"), hub: hub}
}

// Stream holds an SSE connection open and forwards the caller's session
// events, so the client re-checks authorization on SignedIn/SignedOut
// instead of polling.
func (h *SessionEventsHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	client := h.hub.Subscribe(rd.UserID)
	defer h.hub.Unsubscribe(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client.Outbound:
			if !ok {
				return false
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("Failed to marshal session event", "error", err)
				return true
			}
			c.SSEvent("session", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
