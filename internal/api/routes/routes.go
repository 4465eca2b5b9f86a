package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/wealthpulse/wealthpulse_service/internal/api/handlers"
	"github.com/wealthpulse/wealthpulse_service/internal/api/middleware"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/di"
	"github.com/wealthpulse/wealthpulse_service/pkg/tracing"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()
	cfg := container.Config

	// Global middleware - order matters
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(container.Limiter, container.ZapLog))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.Session(container.SessionService))

	healthHandlers := handlers.NewHealthHandlers(container.HealthChecker, presence(container), container.ZapLog)
	authHandlers := handlers.NewAuthHandlers(container.IdentityClient, container.SessionService, cfg.IsProduction(), container.ZapLog)
	portfolioHandlers := handlers.NewPortfolioHandlers(container.PortfolioService, container.ZapLog)
	aiHandlers := handlers.NewAIHandlers(container.RelayService, container.ZapLog)
	marketHandlers := handlers.NewMarketHandlers(container.MarketService, container.ZapLog)
	educationHandlers := handlers.NewEducationHandlers(container.VideoClient, container.ZapLog)

	// Health checks (no auth required)
	router.GET("/health", healthHandlers.Health)
	router.GET("/ready", healthHandlers.Ready)
	router.GET("/live", healthHandlers.Live)
	router.GET("/version", healthHandlers.Version)
	router.GET("/metrics", healthHandlers.Metrics())

	// Swagger documentation (development only)
	if !cfg.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := router.Group("/api")
	{
		api.GET("/debug", healthHandlers.Debug)

		api.GET("/auth/:action", authHandlers.Handle)

		pf := api.Group("/portfolio")
		pf.Use(middleware.RequireOwner("userId"))
		{
			pf.GET("/:userId", portfolioHandlers.List)
			pf.POST("/add/:userId", portfolioHandlers.Add)
			pf.DELETE("/:userId/:itemId", portfolioHandlers.Remove)
			pf.GET("/:userId/dashboard", portfolioHandlers.Dashboard)
		}

		api.POST("/chat", aiHandlers.Chat)
		ai := api.Group("/ai")
		{
			ai.POST("/summarize", aiHandlers.Summarize)
			ai.POST("/generate-report", aiHandlers.GenerateReport)
		}

		mk := api.Group("/market")
		{
			mk.GET("/snapshot/:kind/:id", marketHandlers.Snapshot)
			mk.GET("/search/:kind", marketHandlers.Search)
			mk.GET("/famous", marketHandlers.Famous)
			mk.GET("/compare", marketHandlers.Compare)
		}

		api.GET("/education/videos", educationHandlers.Videos)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})

	return router
}

func presence(c *di.Container) handlers.ConfigPresence {
	cfg := c.Config
	return handlers.ConfigPresence{
		HasBaseURL:         cfg.Identity.BaseURL != "",
		HasIssuerURL:       cfg.Identity.IssuerBaseURL != "",
		HasClientID:        cfg.Identity.ClientID != "",
		HasClientSecret:    cfg.Identity.ClientSecret != "",
		HasSessionSecret:   cfg.Identity.CookieSecret != "",
		HasAnalyticsURL:    cfg.Analytics.Configured(),
		HasOpenRouterKey:   cfg.LLM.OpenRouterAPIKey != "",
		HasGeminiKey:       cfg.LLM.GeminiAPIKey != "",
		HasYouTubeKey:      cfg.Video.YouTubeAPIKey != "",
		HasRedis:           c.Redis != nil,
		TracingEnabled:     cfg.Tracing.Enabled,
		ClientSecretLength: len(cfg.Identity.ClientSecret),
	}
}
