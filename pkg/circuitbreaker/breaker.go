package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
)

type Config struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// OnStateChange is called in addition to the state change log line.
	OnStateChange func(name string, from, to gobreaker.State)
}

func DefaultConfig() Config {
	return Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
	}
}

// New builds a breaker that trips on a 60% failure ratio over at least three
// requests. Only collaborator-side failures count: a 4xx answered by the
// upstream is a healthy upstream.
func New(name string, cfg Config, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !apperrors.IsCircuitBreakerError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from, to)
			}
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// Counts flattens breaker counters for health reporting.
func Counts(cb *gobreaker.CircuitBreaker) map[string]interface{} {
	c := cb.Counts()
	return map[string]interface{}{
		"requests":              c.Requests,
		"total_successes":       c.TotalSuccesses,
		"total_failures":        c.TotalFailures,
		"consecutive_failures":  c.ConsecutiveFailures,
		"consecutive_successes": c.ConsecutiveSuccesses,
	}
}
