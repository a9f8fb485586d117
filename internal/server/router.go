package server

import (
	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/handlers"
	"github.com/agrosub/agrosub-backend/internal/middleware"
	"github.com/agrosub/agrosub-backend/internal/observability"
)

type Handlers struct {
	Auth           *handlers.AuthHandler
	User           *handlers.UserHandler
	Profile        *handlers.ProfileHandler
	Opportunity    *handlers.OpportunityHandler
	Recommendation *handlers.RecommendationHandler
	Chat           *handlers.ChatHandler
	Transcribe     *handlers.TranscribeHandler
	Application    *handlers.ApplicationHandler
	SessionEvents  *handlers.SessionEventsHandler
}

// NewRouter wires the three access tiers: public routes, session-gated
// routes, and the admin group behind the elevated guard.
func NewRouter(mode string, allowedOrigins string, auth *middleware.AuthMiddleware, h *Handlers) *gin.Engine {
	if mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.GinMiddleware())
	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/healthcheck", handlers.Healthcheck)

	api := router.Group("/api")
	{
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)
		api.POST("/refresh", h.Auth.Refresh)
	}

	authed := api.Group("")
	authed.Use(auth.RequireAuth())
	{
		authed.POST("/logout", h.Auth.Logout)
		authed.GET("/me", h.User.GetMe)
		authed.GET("/session/events", h.SessionEvents.Stream)

		authed.GET("/profile", h.Profile.Get)
		authed.PUT("/profile", h.Profile.Upsert)
		authed.GET("/profile/cooperative", h.Profile.GetCooperative)
		authed.PUT("/profile/cooperative", h.Profile.UpsertCooperative)
		authed.GET("/profile/investor", h.Profile.GetInvestor)
		authed.PUT("/profile/investor", h.Profile.UpsertInvestor)

		authed.GET("/opportunities", h.Opportunity.ListPublished)
		authed.GET("/opportunities/:id", h.Opportunity.Get)
		authed.GET("/recommendations", h.Recommendation.Get)

		authed.GET("/chat", h.Chat.CatalogHistory)
		authed.POST("/chat", h.Chat.SendCatalogMessage)
		authed.GET("/opportunities/:id/chat", h.Chat.OpportunityHistory)
		authed.POST("/opportunities/:id/chat", h.Chat.SendOpportunityMessage)

		authed.POST("/transcribe", h.Transcribe.Transcribe)

		authed.GET("/applications", h.Application.ListMine)
		authed.POST("/applications", h.Application.Submit)
	}

	admin := api.Group("/admin")
	admin.Use(auth.RequireAdmin())
	{
		admin.GET("/opportunities", h.Opportunity.ListAll)
		admin.POST("/opportunities", h.Opportunity.Create)
		admin.PUT("/opportunities/:id", h.Opportunity.Update)
		admin.PATCH("/opportunities/:id/status", h.Opportunity.SetStatus)
		admin.POST("/opportunities/:id/document", h.Opportunity.AttachDocument)
		admin.POST("/opportunities/ingest", h.Opportunity.IngestPDF)
		admin.GET("/opportunities/:id/applications", h.Application.ListForOpportunity)
		admin.PATCH("/applications/:id/status", h.Application.SetStatus)
	}

	return router
}
