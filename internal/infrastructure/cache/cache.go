package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
)

// Cache stores JSON-encodable values. Lookups report a miss rather than an
// error when the backing store is unavailable: the cache is an optimisation.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// RedisCache is the go-redis implementation of Cache.
type RedisCache struct {
	client     redis.UniversalClient
	logger     *zap.Logger
	prefix     string
	defaultTTL time.Duration
}

type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// NewRedisClient builds a client from a URL or an address. It returns nil
// when neither is set.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	switch {
	case cfg.URL != "":
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	case cfg.Addr != "":
		return redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}), nil
	default:
		return nil, nil
	}
}

func NewRedisCache(client redis.UniversalClient, defaultTTL time.Duration, logger *zap.Logger) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &RedisCache{
		client:     client,
		logger:     logger,
		prefix:     "wealthpulse:",
		defaultTTL: defaultTTL,
	}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		c.logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn("Cache entry undecodable", zap.String("key", key), zap.Error(err))
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return false
	}
	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return true
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache value unencodable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) GetJSON(context.Context, string, interface{}) bool           { return false }
func (NoopCache) SetJSON(context.Context, string, interface{}, time.Duration) {}

// Key joins parts into a cache key, normalising case and whitespace.
func Key(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(norm, ":")
}
