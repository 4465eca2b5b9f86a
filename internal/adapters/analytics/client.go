package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wealthpulse/wealthpulse_service/pkg/circuitbreaker"
	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
	"github.com/wealthpulse/wealthpulse_service/pkg/retry"
	"github.com/wealthpulse/wealthpulse_service/pkg/tracing"
	"github.com/wealthpulse/wealthpulse_service/pkg/version"
)

const (
	serviceName     = "analytics"
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 8 << 20
)

// Config represents analytics backend configuration
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxAttempts  int
	RateLimitRPM int
}

// Client talks to the external analytics backend, which owns portfolio
// storage and every financial computation.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	policy     retry.Policy
	logger     *zap.Logger
}

// RawResponse is an upstream answer relayed as-is.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// NewClient creates a new analytics backend client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = retry.PolicyUpstream.MaxAttempts
	}
	if config.RateLimitRPM <= 0 {
		config.RateLimitRPM = 600
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	cbCfg := circuitbreaker.DefaultConfig()
	cbCfg.Timeout = 30 * time.Second
	cbCfg.OnStateChange = metrics.UpdateCircuitBreakerState

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: circuitbreaker.New("AnalyticsAPI", cbCfg, logger),
		limiter: rate.NewLimiter(rate.Limit(float64(config.RateLimitRPM)/60.0), config.RateLimitRPM/10+1),
		logger:  logger,
	}
	c.policy = retry.PolicyUpstream.
		WithMaxAttempts(config.MaxAttempts).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			c.logger.Info("Retrying analytics request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(err))
		})
	return c
}

// Configured reports whether a backend URL is set.
func (c *Client) Configured() bool {
	return c.config.BaseURL != ""
}

// BaseURL is exposed for health probing.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) Breaker() *gobreaker.CircuitBreaker {
	return c.breaker
}

// getJSON performs an idempotent GET with retry and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	if !c.Configured() {
		return apperrors.ErrNotConfigured
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) error {
			raw, err := c.send(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return err
			}
			if raw.StatusCode < 200 || raw.StatusCode >= 300 {
				return apperrors.FromStatus(serviceName, raw.StatusCode, detailOf(raw.Body))
			}
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(raw.Body, out); err != nil {
				appErr := apperrors.WrapWithType(err, apperrors.ErrorTypeExternal, "INVALID_RESPONSE", "invalid response from analytics backend")
				appErr.Retryable = false
				return appErr
			}
			return nil
		})
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return apperrors.WrapWithType(err, apperrors.ErrorTypeTransient, "CIRCUIT_OPEN", "analytics backend unavailable")
	}
	return err
}

// Forward relays a request and returns the upstream status and body without
// interpreting them. Only transport failures are errors. Forwarded calls are
// not retried because adds are not idempotent.
func (c *Client) Forward(ctx context.Context, method, endpoint string, body []byte) (*RawResponse, error) {
	if !c.Configured() {
		return nil, apperrors.ErrNotConfigured
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		raw, err := c.send(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}
		if raw.StatusCode >= 500 {
			return raw, apperrors.FromStatus(serviceName, raw.StatusCode, detailOf(raw.Body))
		}
		return raw, nil
	})
	if raw, ok := res.(*RawResponse); ok && raw != nil {
		return raw, nil
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperrors.WrapWithType(err, apperrors.ErrorTypeTransient, "CIRCUIT_OPEN", "analytics backend unavailable")
	}
	return nil, err
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte) (*RawResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.InjectTraceContext(ctx, req.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordExternalAPICall(serviceName, metricEndpoint(endpoint), 0, time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	metrics.RecordExternalAPICall(serviceName, metricEndpoint(endpoint), resp.StatusCode, time.Since(start))

	c.logger.Debug("Analytics response",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("body_size", len(respBody)))

	return &RawResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// detailOf extracts FastAPI's {"detail": ...} message when present.
func detailOf(body []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil && len(e.Detail) > 0 {
		var s string
		if json.Unmarshal(e.Detail, &s) == nil {
			return s
		}
		return string(e.Detail)
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// metricEndpoint drops path identifiers so metric cardinality stays bounded.
func metricEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "/" + strings.Join(parts, "/")
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}
