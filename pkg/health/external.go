package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// ExternalAPIChecker probes a collaborator's base URL. Any HTTP answer below
// 500 counts as reachable.
type ExternalAPIChecker struct {
	name       string
	healthURL  string
	httpClient *http.Client
	timeout    time.Duration
}

func NewExternalAPIChecker(name, healthURL string, timeout time.Duration) *ExternalAPIChecker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &ExternalAPIChecker{
		name:       name,
		healthURL:  healthURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

func (c *ExternalAPIChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if c.healthURL == "" {
		return NewDegradedResult(c.name, "not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return NewUnhealthyResult(c.name, err).WithDuration(time.Since(start))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewUnhealthyResult(c.name, err).WithDuration(time.Since(start))
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	var result CheckResult
	switch {
	case resp.StatusCode >= 500:
		result = NewCheckResult(c.name, StatusUnhealthy, fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	case duration > 3*time.Second:
		result = NewDegradedResult(c.name, "slow response time")
	default:
		result = NewHealthyResult(c.name, "api reachable")
	}
	return result.
		WithDuration(duration).
		WithMetadata("status_code", resp.StatusCode)
}

func (c *ExternalAPIChecker) Name() string {
	return c.name
}

// CircuitBreakerChecker reports a breaker's state.
type CircuitBreakerChecker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

func NewCircuitBreakerChecker(name string, cb *gobreaker.CircuitBreaker) *CircuitBreakerChecker {
	return &CircuitBreakerChecker{name: name, cb: cb}
}

func (c *CircuitBreakerChecker) Check(ctx context.Context) CheckResult {
	state := c.cb.State()
	var result CheckResult
	switch state {
	case gobreaker.StateClosed:
		result = NewHealthyResult(c.name, "circuit closed")
	case gobreaker.StateHalfOpen:
		result = NewDegradedResult(c.name, "circuit half-open")
	default:
		result = NewCheckResult(c.name, StatusUnhealthy, "circuit open", nil)
	}
	counts := c.cb.Counts()
	return result.
		WithMetadata("circuit_state", state.String()).
		WithMetadata("total_failures", counts.TotalFailures)
}

func (c *CircuitBreakerChecker) Name() string {
	return c.name
}
