package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/services"
	"github.com/agrosub/agrosub-backend/internal/types"
)

type ApplicationHandler struct {
	log          *logger.Logger
	applications services.ApplicationService
}

func NewApplicationHandler(log *logger.Logger, applications services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		log:          log.With("handler", "ApplicationHandler"),
		applications: applications,
	}
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var application types.Application
	if err := c.ShouldBindJSON(&application); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	application.UserID = rd.UserID
	created, err := h.applications.Submit(c.Request.Context(), &application)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyApplied):
			c.JSON(http.StatusConflict, gin.H{"error": "already applied to this opportunity"})
		case errors.Is(err, services.ErrOpportunityNotOpen):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "opportunity is not open for applications"})
		case errors.Is(err, services.ErrInvalidApplicationStep):
			c.JSON(http.StatusBadRequest, gin.H{"error": "motivation and project description are required"})
		default:
			h.log.Error("Failed to submit application", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit application"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": created})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	applications, err := h.applications.ListForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("Failed to list applications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

func (h *ApplicationHandler) ListForOpportunity(c *gin.Context) {
	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	applications, err := h.applications.ListForOpportunity(c.Request.Context(), opportunityID)
	if err != nil {
		h.log.Error("Failed to list applications for opportunity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

type applicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ApplicationHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}
	var req applicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.applications.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		h.log.Error("Failed to set application status", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to set status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
