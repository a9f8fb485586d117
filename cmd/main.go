package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrosub/agrosub-backend/internal/config"
	"github.com/agrosub/agrosub-backend/internal/db"
	"github.com/agrosub/agrosub-backend/internal/handlers"
	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/middleware"
	"github.com/agrosub/agrosub-backend/internal/observability"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/server"
	"github.com/agrosub/agrosub-backend/internal/services"
	"github.com/agrosub/agrosub-backend/internal/sse"
	"github.com/agrosub/agrosub-backend/internal/utils"
)

func main() {
	ctx := context.Background()

	mode := utils.GetEnv("MODE", "dev", nil)
	log, err := logger.New(mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := config.Apply(utils.GetEnv("CONFIG_PATH", "config.yaml", log), log); err != nil {
		log.Warn("Failed to apply config file, relying on environment", "error", err)
	}

	shutdownTracing, err := observability.Setup(ctx, log, utils.GetEnv("OTLP_ENDPOINT", "", log), mode)
	if err != nil {
		log.Warn("Failed to configure tracing", "error", err)
	} else {
		defer shutdownTracing(ctx)
	}

	postgres, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Failed to connect to postgres", "error", err)
	}
	if err := postgres.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	gdb := postgres.DB()

	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	adminRepo := repos.NewAdminRepo(gdb, log)
	profileRepo := repos.NewProfileRepo(gdb, log)
	opportunityRepo := repos.NewOpportunityRepo(gdb, log)
	applicationRepo := repos.NewApplicationRepo(gdb, log)
	cooperativeRepo := repos.NewCooperativeRepo(gdb, log)
	investorRepo := repos.NewInvestorRepo(gdb, log)

	hub := sse.NewHub(log)

	conversationTTL := time.Duration(utils.GetEnvAsInt("CONVERSATION_TTL_MINUTES", 120, log)) * time.Minute
	var conversations services.ConversationStore
	if redisAddr := utils.GetEnv("REDIS_ADDR", "", log); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: utils.GetEnv("REDIS_PASSWORD", "", log),
		})
		conversations = services.NewRedisConversationStore(log, redisClient, conversationTTL)
	} else {
		log.Warn("REDIS_ADDR not set, conversations are held in memory")
		conversations = services.NewMemoryConversationStore(log, conversationTTL)
	}

	ai := services.NewOpenAIClient(
		log,
		utils.GetEnv("OPENAI_API_KEY", "", nil),
		utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log),
		utils.GetEnv("OPENAI_TRANSCRIBE_MODEL", "whisper-1", log),
		utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 30, log),
		utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 2, log),
	)

	var bucket services.BucketService
	if bucketName := utils.GetEnv("GCS_BUCKET", "", log); bucketName != "" {
		bucket, err = services.NewBucketService(ctx, log, bucketName)
		if err != nil {
			log.Warn("Failed to configure bucket storage, uploads disabled", "error", err)
		}
	}

	var speechProvider services.SpeechProvider
	if utils.GetEnv("TRANSCRIBE_PROVIDER", "openai", log) == "gcp" {
		speechProvider, err = services.NewGCPSpeechProvider(ctx, log)
		if err != nil {
			log.Warn("Failed to configure GCP speech, falling back to openai", "error", err)
		}
	}

	avatar := services.NewAvatarService(log, bucket, utils.GetEnv("AVATAR_FONT_PATH", "", log))

	catalog := services.NewCatalogService(gdb, log, opportunityRepo)
	auth := services.NewAuthService(gdb, log, userRepo, userTokenRepo, adminRepo, avatar, hub, utils.GetEnv("JWT_SECRET", "", nil))
	users := services.NewUserService(gdb, log, userRepo)
	profiles := services.NewProfileService(gdb, log, profileRepo, cooperativeRepo, investorRepo)
	opportunities := services.NewOpportunityService(gdb, log, opportunityRepo, bucket)
	applications := services.NewApplicationService(gdb, log, applicationRepo, opportunityRepo)
	recommendations := services.NewRecommendationService(gdb, log, profileRepo, catalog, ai, utils.GetEnv("OPENAI_RECO_MODEL", "", log))
	chat := services.NewChatService(gdb, log, profileRepo, opportunityRepo, catalog, conversations, ai,
		utils.GetEnv("OPENAI_CHAT_MODEL", "", log), utils.GetEnv("OPENAI_CONTEXT_MODEL", "", log))
	transcription := services.NewTranscriptionService(log, ai, speechProvider,
		utils.GetEnv("TRANSCRIBE_PROVIDER", "openai", log), utils.GetEnv("TRANSCRIBE_LANGUAGE", "fr", log))
	ingestion := services.NewIngestionService(gdb, log, opportunityRepo, bucket, ai, utils.GetEnv("OPENAI_INGEST_MODEL", "", log))

	authMiddleware := middleware.NewAuthMiddleware(log, auth)
	router := server.NewRouter(mode, utils.GetEnv("ALLOWED_ORIGINS", "", log), authMiddleware, &server.Handlers{
		Auth:           handlers.NewAuthHandler(log, auth),
		User:           handlers.NewUserHandler(log, users),
		Profile:        handlers.NewProfileHandler(log, profiles),
		Opportunity:    handlers.NewOpportunityHandler(log, catalog, opportunities, ingestion),
		Recommendation: handlers.NewRecommendationHandler(log, recommendations),
		Chat:           handlers.NewChatHandler(log, chat),
		Transcribe:     handlers.NewTranscribeHandler(log, transcription),
		Application:    handlers.NewApplicationHandler(log, applications),
		SessionEvents:  handlers.NewSessionEventsHandler(log, hub),
	})

	addr := ":" + utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "addr", addr, "mode", mode)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
