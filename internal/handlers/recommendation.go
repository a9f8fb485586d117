package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/services"
)

type RecommendationHandler struct {
	log             *logger.Logger
	recommendations services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recommendations services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:             log.With("handler", "RecommendationHandler"),
		recommendations: recommendations,
	}
}

// Get always answers 200: the pipeline degrades to the deterministic matcher
// or an empty list, never to an error the client has to handle.
func (h *RecommendationHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recommendations, err := h.recommendations.RecommendForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Warn("Recommendation pipeline returned an error, sending empty list", "error", err)
		recommendations = []services.RecommendedOpportunity{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}
