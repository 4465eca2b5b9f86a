package health

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisChecker checks Redis connectivity. The suggestion cache is optional,
// so a failed ping reports degraded rather than unhealthy.
type RedisChecker struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewRedisChecker(client redis.UniversalClient, timeout time.Duration) *RedisChecker {
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &RedisChecker{client: client, timeout: timeout}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		r := NewDegradedResult("redis", "ping failed")
		r.Error = err.Error()
		return r.WithDuration(time.Since(start))
	}
	return NewHealthyResult("redis", "connected").WithDuration(time.Since(start))
}

func (c *RedisChecker) Name() string {
	return "redis"
}
