package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: chat}
}

type chatRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ChatHandler) SendCatalogMessage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	turn, err := h.chat.SendCatalogMessage(c.Request.Context(), rd.UserID, req.Content)
	if err != nil {
		h.log.Error("Failed to process catalog chat message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (h *ChatHandler) CatalogHistory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	history, err := h.chat.CatalogHistory(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("Failed to load catalog chat history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *ChatHandler) SendOpportunityMessage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	turn, err := h.chat.SendOpportunityMessage(c.Request.Context(), rd.UserID, opportunityID, req.Content)
	if err != nil {
		h.log.Error("Failed to process opportunity chat message", "opportunityID", opportunityID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (h *ChatHandler) OpportunityHistory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return
	}
	history, err := h.chat.OpportunityHistory(c.Request.Context(), rd.UserID, opportunityID)
	if err != nil {
		h.log.Error("Failed to load opportunity chat history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
