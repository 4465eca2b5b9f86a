package identity

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

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/pkg/circuitbreaker"
	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
	"github.com/wealthpulse/wealthpulse_service/pkg/version"
)

const (
	serviceName      = "identity"
	callbackPath     = "/api/auth/callback"
	defaultScope     = "openid profile email"
	defaultExpiresIn = 3600
)

// Config represents identity provider configuration
type Config struct {
	IssuerBaseURL string
	BaseURL       string
	ClientID      string
	ClientSecret  string
	Timeout       time.Duration
}

// TokenResponse is the authorization-code exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Client drives the hosted OAuth2/OIDC login flow.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	config.IssuerBaseURL = strings.TrimRight(config.IssuerBaseURL, "/")
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	cbCfg := circuitbreaker.DefaultConfig()
	cbCfg.OnStateChange = metrics.UpdateCircuitBreakerState

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    circuitbreaker.New("IdentityProvider", cbCfg, logger),
		logger:     logger,
	}
}

// Configured reports whether issuer and client credentials are present.
func (c *Client) Configured() bool {
	return c.config.IssuerBaseURL != "" && c.config.ClientID != "" && c.config.ClientSecret != ""
}

// BaseURL is the application's public origin.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) Breaker() *gobreaker.CircuitBreaker {
	return c.breaker
}

// RedirectURI is the callback registered with the provider.
func (c *Client) RedirectURI() string {
	return c.config.BaseURL + callbackPath
}

// AuthorizeURL builds the hosted login page URL. screenHint "signup" opens
// the registration form.
func (c *Client) AuthorizeURL(screenHint string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.config.ClientID)
	q.Set("redirect_uri", c.RedirectURI())
	q.Set("scope", defaultScope)
	if screenHint != "" {
		q.Set("screen_hint", screenHint)
	}
	return c.config.IssuerBaseURL + "/authorize?" + q.Encode()
}

// LogoutURL ends the provider session and returns the browser to the app.
func (c *Client) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", c.config.ClientID)
	q.Set("returnTo", c.config.BaseURL)
	return c.config.IssuerBaseURL + "/v2/logout?" + q.Encode()
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenResponse, error) {
	if !c.Configured() {
		return nil, apperrors.ErrNotConfigured
	}
	body, err := json.Marshal(map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     c.config.ClientID,
		"client_secret": c.config.ClientSecret,
		"code":          code,
		"redirect_uri":  c.RedirectURI(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	var tokens TokenResponse
	if err := c.do(ctx, http.MethodPost, "/oauth/token", "", body, &tokens); err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, apperrors.New(apperrors.ErrorTypeExternal, "INVALID_TOKEN_RESPONSE", "token response has no access token")
	}
	if tokens.ExpiresIn <= 0 {
		tokens.ExpiresIn = defaultExpiresIn
	}
	return &tokens, nil
}

// UserInfo fetches the profile claims for an access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*entities.Claims, error) {
	if !c.Configured() {
		return nil, apperrors.ErrNotConfigured
	}
	var claims entities.Claims
	if err := c.do(ctx, http.MethodGet, "/userinfo", accessToken, nil, &claims); err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	return &claims, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, bearer string, body []byte, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.config.IssuerBaseURL+endpoint, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordExternalAPICall(serviceName, endpoint, 0, time.Since(start))
			return nil, apperrors.WrapExternal(err, serviceName, "identity provider unreachable")
		}
		defer resp.Body.Close()
		metrics.RecordExternalAPICall(serviceName, endpoint, resp.StatusCode, time.Since(start))

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("Identity provider returned error",
				zap.String("endpoint", endpoint),
				zap.Int("status_code", resp.StatusCode))
			return nil, apperrors.FromStatus(serviceName, resp.StatusCode, providerMessage(respBody))
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, nil
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return apperrors.WrapWithType(err, apperrors.ErrorTypeTransient, "CIRCUIT_OPEN", "identity provider unavailable")
	}
	return err
}

// providerMessage prefers the OAuth error_description field.
func providerMessage(body []byte) string {
	var e struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Description != "" {
			return e.Description
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(body))
}
