package di

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/adapters/analytics"
	"github.com/wealthpulse/wealthpulse_service/internal/adapters/identity"
	"github.com/wealthpulse/wealthpulse_service/internal/adapters/videos"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/market"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/portfolio"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/prompt"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/relay"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/session"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/ai"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/cache"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/config"
	"github.com/wealthpulse/wealthpulse_service/pkg/health"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
	"github.com/wealthpulse/wealthpulse_service/pkg/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	ZapLog *zap.Logger

	// External Services
	AnalyticsClient *analytics.Client
	IdentityClient  *identity.Client
	VideoClient     *videos.Client
	Redis           *redis.Client
	Cache           cache.Cache
	Providers       *ai.ProviderManager

	// Domain Services
	SessionService   *session.Service
	PortfolioService *portfolio.Service
	MarketService    *market.Service
	RelayService     *relay.Service

	HealthChecker *health.HealthChecker
	Limiter       *ratelimit.LocalLimiter
}

// NewContainer creates a new dependency injection container. Missing
// collaborator credentials never fail construction; the affected endpoints
// answer with their own errors instead.
func NewContainer(cfg *config.Config, log *logger.Logger) (*Container, error) {
	zapLog := log.Zap()

	analyticsClient := analytics.NewClient(analytics.Config{
		BaseURL:      cfg.Analytics.BaseURL,
		Timeout:      time.Duration(cfg.Analytics.Timeout) * time.Second,
		MaxAttempts:  cfg.Analytics.MaxRetries,
		RateLimitRPM: cfg.Analytics.RateLimitRPM,
	}, zapLog)

	identityClient := identity.NewClient(identity.Config{
		IssuerBaseURL: cfg.Identity.IssuerBaseURL,
		BaseURL:       cfg.Identity.BaseURL,
		ClientID:      cfg.Identity.ClientID,
		ClientSecret:  cfg.Identity.ClientSecret,
		Timeout:       time.Duration(cfg.Identity.Timeout) * time.Second,
	}, zapLog)

	videoClient := videos.NewClient(videos.Config{
		APIKey:     cfg.Video.YouTubeAPIKey,
		BaseURL:    cfg.Video.BaseURL,
		MaxResults: cfg.Video.MaxResults,
	}, zapLog)

	redisClient, err := cache.NewRedisClient(cache.RedisConfig{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}
	var searchCache cache.Cache = cache.NoopCache{}
	if redisClient != nil {
		searchCache = cache.NewRedisCache(redisClient, cfg.Search.CacheTTLDuration(), zapLog)
	}

	providers := ai.NewProviderManager(
		ai.NewOpenRouterProvider(&ai.ProviderConfig{
			APIKey:       cfg.LLM.OpenRouterAPIKey,
			BaseURL:      cfg.LLM.OpenRouterBaseURL,
			Model:        cfg.LLM.Model,
			Referer:      cfg.LLM.Referer,
			Title:        cfg.LLM.Title,
			Timeout:      time.Duration(cfg.LLM.ConnectTimeout) * time.Second,
			RateLimitRPM: cfg.LLM.RateLimitRPM,
		}, zapLog),
		ai.NewGeminiProvider(&ai.ProviderConfig{
			APIKey:       cfg.LLM.GeminiAPIKey,
			Model:        cfg.LLM.GeminiModel,
			Timeout:      time.Duration(cfg.LLM.ConnectTimeout) * time.Second,
			RateLimitRPM: cfg.LLM.RateLimitRPM,
		}, zapLog),
		zapLog,
	)

	container := &Container{
		Config: cfg,
		Logger: log,
		ZapLog: zapLog,

		AnalyticsClient: analyticsClient,
		IdentityClient:  identityClient,
		VideoClient:     videoClient,
		Redis:           redisClient,
		Cache:           searchCache,
		Providers:       providers,

		Limiter: ratelimit.NewLocalLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.Server.RateLimitPerMin,
		}),
	}

	container.initializeDomainServices()
	container.initializeHealthChecks()

	return container, nil
}

func (c *Container) initializeDomainServices() {
	c.SessionService = session.NewService(session.Config{
		CookieName: c.Config.Identity.CookieName,
		Secret:     c.Config.Identity.CookieSecret,
	}, c.Logger)

	c.PortfolioService = portfolio.NewService(c.AnalyticsClient, portfolio.Config{
		RiskFreeRate: c.Config.Analytics.RiskFreeRate,
		Parallel:     c.Config.Analytics.FanOutParallel,
	}, c.Logger)

	c.MarketService = market.NewService(c.AnalyticsClient, c.Cache, market.Config{
		SuggestionLimit: c.Config.Search.SuggestionLimit,
		CacheTTL:        c.Config.Search.CacheTTLDuration(),
	}, c.Logger)

	c.RelayService = relay.NewService(c.Providers, prompt.NewTemplateManager(), relay.Config{
		MaxAttempts:    c.Config.LLM.MaxAttempts,
		InitialBackoff: c.Config.LLM.InitialBackoff(),
	}, c.Logger)
}

func (c *Container) initializeHealthChecks() {
	c.HealthChecker = health.NewHealthChecker(5 * time.Second)

	if c.AnalyticsClient.Configured() {
		c.HealthChecker.Register(health.NewCircuitBreakerChecker("analytics", c.AnalyticsClient.Breaker()))
	} else {
		c.HealthChecker.Register(notConfigured("analytics"))
	}
	if c.IdentityClient.Configured() {
		c.HealthChecker.Register(health.NewCircuitBreakerChecker("identity", c.IdentityClient.Breaker()))
	} else {
		c.HealthChecker.Register(notConfigured("identity"))
	}
	if !c.RelayService.Configured() {
		c.HealthChecker.Register(notConfigured("llm"))
	}
	if c.Redis != nil {
		c.HealthChecker.Register(health.NewRedisChecker(c.Redis, 2*time.Second))
	}
}

func notConfigured(name string) health.Checker {
	return health.NewCheckerFunc(name, func(context.Context) health.CheckResult {
		return health.NewDegradedResult(name, "not configured")
	})
}

// Close releases pooled connections.
func (c *Container) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
