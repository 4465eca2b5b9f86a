package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Analytics   AnalyticsConfig `mapstructure:"analytics"`
	Identity    IdentityConfig  `mapstructure:"identity"`
	LLM         LLMConfig       `mapstructure:"llm"`
	Video       VideoConfig     `mapstructure:"video"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Search      SearchConfig    `mapstructure:"search"`
	Tracing     TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
}

// AnalyticsConfig points at the external backend that owns portfolio storage
// and every financial computation.
type AnalyticsConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	Timeout        int     `mapstructure:"timeout"`
	MaxRetries     int     `mapstructure:"max_retries"`
	RateLimitRPM   int     `mapstructure:"rate_limit_rpm"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"`
	FanOutParallel int     `mapstructure:"fan_out_parallel"`
}

type IdentityConfig struct {
	IssuerBaseURL string `mapstructure:"issuer_base_url"`
	BaseURL       string `mapstructure:"base_url"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	CookieName    string `mapstructure:"cookie_name"`
	CookieSecret  string `mapstructure:"cookie_secret"`
	Timeout       int    `mapstructure:"timeout"`
}

type LLMConfig struct {
	OpenRouterAPIKey  string `mapstructure:"openrouter_api_key"`
	OpenRouterBaseURL string `mapstructure:"openrouter_base_url"`
	Model             string `mapstructure:"model"`
	Referer           string `mapstructure:"referer"`
	Title             string `mapstructure:"title"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	GeminiModel       string `mapstructure:"gemini_model"`
	MaxAttempts       int    `mapstructure:"max_attempts"`
	InitialBackoffMS  int    `mapstructure:"initial_backoff_ms"`
	ConnectTimeout    int    `mapstructure:"connect_timeout"`
	RateLimitRPM      int    `mapstructure:"rate_limit_rpm"`
}

type VideoConfig struct {
	YouTubeAPIKey string `mapstructure:"youtube_api_key"`
	BaseURL       string `mapstructure:"base_url"`
	MaxResults    int    `mapstructure:"max_results"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SearchConfig struct {
	SuggestionLimit int `mapstructure:"suggestion_limit"`
	CacheTTL        int `mapstructure:"cache_ttl"`
	DebounceMS      int `mapstructure:"debounce_ms"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// Load reads .env, defaults, an optional config.yaml and the environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Analytics.BaseURL = strings.TrimRight(cfg.Analytics.BaseURL, "/")
	cfg.Identity.BaseURL = strings.TrimRight(cfg.Identity.BaseURL, "/")
	cfg.Identity.IssuerBaseURL = strings.TrimRight(cfg.Identity.IssuerBaseURL, "/")

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30)
	// Streams can outlive a short write timeout; 0 disables it.
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.shutdown_timeout", 15)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_per_min", 120)

	v.SetDefault("analytics.timeout", 30)
	v.SetDefault("analytics.max_retries", 3)
	v.SetDefault("analytics.rate_limit_rpm", 600)
	v.SetDefault("analytics.risk_free_rate", 0.05)
	v.SetDefault("analytics.fan_out_parallel", 8)

	v.SetDefault("identity.base_url", "http://localhost:8080")
	v.SetDefault("identity.cookie_name", "appSession")
	v.SetDefault("identity.timeout", 10)

	v.SetDefault("llm.openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.referer", "https://newealth.com")
	v.SetDefault("llm.title", "NewWealth AI")
	v.SetDefault("llm.gemini_model", "gemini-2.5-flash")
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.initial_backoff_ms", 500)
	v.SetDefault("llm.connect_timeout", 30)
	v.SetDefault("llm.rate_limit_rpm", 120)

	v.SetDefault("video.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("video.max_results", 6)

	v.SetDefault("redis.port", 6379)

	v.SetDefault("search.suggestion_limit", 8)
	v.SetDefault("search.cache_ttl", 300)
	v.SetDefault("search.debounce_ms", 300)

	v.SetDefault("tracing.otlp_endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// overrideFromEnv maps the deployment's historical variable names onto config keys.
func overrideFromEnv(v *viper.Viper) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("server.port", p)
		}
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		v.Set("server.allowed_origins", strings.Split(origins, ","))
	}

	setFirst(v, "analytics.base_url", "ANALYTICS_API_URL", "NEXT_PUBLIC_API_URL")

	setFirst(v, "identity.issuer_base_url", "AUTH0_ISSUER_BASE_URL")
	setFirst(v, "identity.base_url", "AUTH0_BASE_URL")
	setFirst(v, "identity.client_id", "AUTH0_CLIENT_ID")
	setFirst(v, "identity.client_secret", "AUTH0_CLIENT_SECRET")
	setFirst(v, "identity.cookie_secret", "AUTH0_SECRET", "SESSION_SECRET")

	setFirst(v, "llm.openrouter_api_key", "OPENROUTER_API_KEY")
	setFirst(v, "llm.gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	setFirst(v, "video.youtube_api_key", "YOUTUBE_API_KEY", "NEXT_PUBLIC_YOUTUBE_API_KEY")

	setFirst(v, "redis.url", "REDIS_URL")
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		v.Set("tracing.enabled", true)
		v.Set("tracing.otlp_endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	}
}

func setFirst(v *viper.Viper, key string, envs ...string) {
	for _, e := range envs {
		if val := os.Getenv(e); val != "" {
			v.Set(key, val)
			return
		}
	}
}

// validate only rejects configurations the server cannot run with. Missing
// collaborator credentials are reported per request instead.
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Analytics.RiskFreeRate < 0 || cfg.Analytics.RiskFreeRate >= 1 {
		return fmt.Errorf("risk free rate must be in [0, 1)")
	}
	if cfg.IsProduction() && len(cfg.Identity.CookieSecret) < 32 {
		return fmt.Errorf("cookie secret of at least 32 bytes is required in production")
	}
	if cfg.Search.SuggestionLimit <= 0 {
		return fmt.Errorf("search suggestion limit must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

func (c ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

func (c AnalyticsConfig) Configured() bool {
	return c.BaseURL != ""
}

func (c IdentityConfig) Configured() bool {
	return c.IssuerBaseURL != "" && c.ClientID != "" && c.ClientSecret != ""
}

func (c LLMConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffMS) * time.Millisecond
}

func (c SearchConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c SearchConfig) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c RedisConfig) RedisAddr() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
