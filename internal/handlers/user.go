package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/services"
)

type UserHandler struct {
	log   *logger.Logger
	users services.UserService
}

func NewUserHandler(log *logger.Logger, users services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), users: users}
}

// GetMe doubles as the session probe: a 200 means the caller holds a live
// session, and the payload carries the elevation flag the client gates on.
func (h *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), rd.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
			return
		}
		h.log.Error("Failed to load current user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "is_admin": rd.IsAdmin})
}
