package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portalar/api/config"
	"portalar/api/handlers"
	"portalar/api/middleware"
	"portalar/api/services"
	"portalar/api/store"
	"portalar/api/utils"
)

func main() {
	// Load .env file at the very start; real deployments set the environment
	// directly and have no .env.
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// --- Storage ---
	st, err := store.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unknown storage backend")
	}
	if err := st.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Str("backend", st.Name()).Msg("storage initialization failed")
	}
	defer st.Close()
	log.Info().Str("backend", st.Name()).Msg("storage ready")

	// --- Services ---
	contentService := services.NewContentService(st)
	analyticsService := services.NewAnalyticsService(st)
	summarizer := services.NewSummarizer(cfg.PerplexityAPIKey, cfg.PerplexityMock)
	tokens := utils.NewTokenManager(cfg.JWTSecretKey, cfg.TokenTTL())

	// --- Handlers ---
	contentHandlers := handlers.NewContentHandlers(contentService)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsService)
	authHandlers := handlers.NewAuthHandlers(cfg.AdminPasswordHash, tokens)
	summaryHandlers := handlers.NewSummaryHandlers(summarizer, contentService)

	generalLimiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow())
	loginLimiter := middleware.NewLoginRateLimiter(cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.FrontendOrigin))

	r.GET("/health", handlers.Health(st))

	api := r.Group("/api")
	{
		// Public: the AR client resolves markers and reports engagement
		// without authenticating.
		api.GET("/content/:markerId", contentHandlers.GetContent)

		ingest := api.Group("/analytics")
		ingest.Use(generalLimiter.Handler())
		{
			ingest.POST("", analyticsHandlers.TrackEvent)
			ingest.POST("/batch", analyticsHandlers.TrackBatch)
		}

		api.POST("/auth/login", loginLimiter.Handler(), authHandlers.Login)

		// Admin routes behind the bearer token.
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(tokens))
		{
			protected.GET("/auth/verify", authHandlers.Verify)

			protected.GET("/content", contentHandlers.ListContent)
			protected.POST("/content/:markerId", contentHandlers.UpsertContent)
			protected.DELETE("/content/:markerId", contentHandlers.DeleteContent)

			protected.GET("/analytics", analyticsHandlers.GetAllSummaries)
			protected.GET("/analytics/:markerId", analyticsHandlers.GetMarkerEvents)
			protected.GET("/analytics/:markerId/summary", analyticsHandlers.GetMarkerSummary)

			protected.POST("/perplexity/summary", summaryHandlers.Summarize)
			protected.POST("/perplexity/summarize-and-save", summaryHandlers.SummarizeAndSave)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
