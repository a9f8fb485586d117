package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/services"
	"github.com/agrosub/agrosub-backend/internal/types"
)

type ProfileHandler struct {
	log      *logger.Logger
	profiles services.ProfileService
}

func NewProfileHandler(log *logger.Logger, profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), profiles: profiles}
}

func (h *ProfileHandler) Upsert(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var profile types.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The profile row is always keyed by the session user.
	profile.ID = rd.UserID
	saved, err := h.profiles.UpsertProfile(c.Request.Context(), &profile)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProfileType) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown profile type"})
			return
		}
		h.log.Error("Failed to upsert profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": saved})
}

func (h *ProfileHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	profile, err := h.profiles.GetProfile(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("Failed to load profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *ProfileHandler) UpsertCooperative(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var cooperative types.Cooperative
	if err := c.ShouldBindJSON(&cooperative); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cooperative.ID = rd.UserID
	saved, err := h.profiles.UpsertCooperative(c.Request.Context(), &cooperative)
	if err != nil {
		h.log.Error("Failed to upsert cooperative", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cooperative"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cooperative": saved})
}

func (h *ProfileHandler) GetCooperative(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	cooperative, err := h.profiles.GetCooperative(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("Failed to load cooperative", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cooperative"})
		return
	}
	if cooperative == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cooperative not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cooperative": cooperative})
}

func (h *ProfileHandler) UpsertInvestor(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var investor types.Investor
	if err := c.ShouldBindJSON(&investor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	investor.ID = rd.UserID
	saved, err := h.profiles.UpsertInvestor(c.Request.Context(), &investor)
	if err != nil {
		h.log.Error("Failed to upsert investor", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save investor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"investor": saved})
}

func (h *ProfileHandler) GetInvestor(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	investor, err := h.profiles.GetInvestor(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("Failed to load investor", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load investor"})
		return
	}
	if investor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "investor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"investor": investor})
}
