package videos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/pkg/circuitbreaker"
	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
)

const serviceName = "youtube"

// ErrInvalidKey is returned when the key is absent or rejected by the provider.
var ErrInvalidKey = apperrors.New(apperrors.ErrorTypeConfiguration, "INVALID_VIDEO_KEY", "Invalid or missing YouTube API key.")

type Config struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

// Client searches the YouTube Data API for educational videos.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.MaxResults <= 0 {
		config.MaxResults = 6
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	cbCfg := circuitbreaker.DefaultConfig()
	cbCfg.OnStateChange = metrics.UpdateCircuitBreakerState

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    circuitbreaker.New("YouTubeAPI", cbCfg, logger),
		logger:     logger,
	}
}

func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

// Search returns videos matching query.
func (c *Client) Search(ctx context.Context, query string) ([]entities.Video, error) {
	if !c.Configured() {
		return nil, ErrInvalidKey
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("maxResults", strconv.Itoa(c.config.MaxResults))
	q.Set("q", query)
	q.Set("key", c.config.APIKey)

	res, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/search?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordExternalAPICall(serviceName, "/search", 0, time.Since(start))
			return nil, apperrors.WrapExternal(err, serviceName, "video search failed")
		}
		defer resp.Body.Close()
		metrics.RecordExternalAPICall(serviceName, "/search", resp.StatusCode, time.Since(start))

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		switch {
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden:
			return nil, ErrInvalidKey
		case resp.StatusCode != http.StatusOK:
			return nil, apperrors.FromStatus(serviceName, resp.StatusCode, "video search failed")
		}

		var payload struct {
			Items []struct {
				ID struct {
					VideoID string `json:"videoId"`
				} `json:"id"`
				Snippet struct {
					Title string `json:"title"`
				} `json:"snippet"`
			} `json:"items"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		out := make([]entities.Video, 0, len(payload.Items))
		for _, it := range payload.Items {
			if it.ID.VideoID == "" {
				continue
			}
			out = append(out, entities.Video{Title: it.Snippet.Title, VideoID: it.ID.VideoID})
		}
		return out, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.WrapWithType(err, apperrors.ErrorTypeTransient, "CIRCUIT_OPEN", "video search unavailable")
		}
		c.logger.Warn("Video search failed", zap.Error(err))
		return nil, err
	}
	return res.([]entities.Video), nil
}
