package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
)

const (
	defaultOpenRouterURL = "https://openrouter.ai/api/v1"
	sseDataPrefix        = "data:"
	sseDone              = "[DONE]"
)

// OpenRouterProvider streams OpenAI-compatible chat completions from OpenRouter.
type OpenRouterProvider struct {
	config  *ProviderConfig
	client  *http.Client
	logger  *zap.Logger
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewOpenRouterProvider creates a new OpenRouter provider
func NewOpenRouterProvider(config *ProviderConfig, logger *zap.Logger) *OpenRouterProvider {
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenRouterURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.RateLimitRPM <= 0 {
		config.RateLimitRPM = 120
	}
	rps := float64(config.RateLimitRPM) / 60.0 // Convert requests per minute to per second

	return &OpenRouterProvider{
		config: config,
		// No client timeout: it would cut long reports mid-stream. The
		// connect phase is bounded by the transport instead.
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: config.Timeout,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		logger:  logger,
		tracer:  otel.Tracer("openrouter-provider"),
		limiter: rate.NewLimiter(rate.Limit(rps), 5),
	}
}

// Name returns the provider name
func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

func (p *OpenRouterProvider) Configured() bool {
	return p.config.APIKey != ""
}

// OpenStream posts the completion request and returns once response headers
// arrive.
func (p *OpenRouterProvider) OpenStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	ctx, span := p.tracer.Start(ctx, "openrouter.open_stream", trace.WithAttributes(
		attribute.String("model", p.config.Model),
		attribute.Int("message_count", len(req.Messages)),
		attribute.Int("max_tokens", req.MaxTokens),
	))
	defer span.End()

	// Wait for rate limiter
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, waitError(ctx, p.Name())
	}

	reqBody, err := json.Marshal(p.buildRequest(req))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	if p.config.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", p.config.Referer)
	}
	if p.config.Title != "" {
		httpReq.Header.Set("X-Title", p.config.Title)
	}

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		metrics.RecordExternalAPICall(p.Name(), "/chat/completions", 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{
			Provider:  p.Name(),
			Code:      ErrorCodeUnavailable,
			Message:   err.Error(),
			Retryable: true,
		}
	}
	metrics.RecordExternalAPICall(p.Name(), "/chat/completions", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		pe := p.handleHTTPError(resp.StatusCode, body)
		span.RecordError(pe)
		return nil, pe
	}

	p.logger.Debug("OpenRouter stream opened",
		zap.String("model", p.config.Model),
		zap.Duration("duration", time.Since(start)))

	return newSSEStream(p.Name(), resp.Body), nil
}

func (p *OpenRouterProvider) buildRequest(req *ChatRequest) map[string]interface{} {
	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	body := map[string]interface{}{
		"model":       p.config.Model,
		"messages":    messages,
		"stream":      true,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	return body
}

// handleHTTPError converts HTTP error responses to ProviderError
func (p *OpenRouterProvider) handleHTTPError(statusCode int, body []byte) error {
	var errorResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &errorResp)
	return errorForStatus(p.Name(), statusCode, errorResp.Error.Message)
}

// sseStream decodes an OpenAI-style server-sent event body.
type sseStream struct {
	provider string
	body     io.ReadCloser
	scanner  *bufio.Scanner
	done     bool
}

func newSSEStream(provider string, body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &sseStream{provider: provider, body: body, scanner: scanner}
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Recv returns the next non-empty text delta.
func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		// Blank separators and ": OPENROUTER PROCESSING" keep-alives.
		if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if data == sseDone {
			s.done = true
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", fmt.Errorf("%s: malformed stream chunk: %w", s.provider, err)
		}
		if chunk.Error != nil {
			return "", &ProviderError{
				Provider:   s.provider,
				Code:       ErrorCodeServerError,
				Message:    chunk.Error.Message,
				StatusCode: chunk.Error.Code,
			}
		}
		var text strings.Builder
		for _, c := range chunk.Choices {
			text.WriteString(c.Delta.Content)
		}
		if text.Len() > 0 {
			return text.String(), nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", &ProviderError{Provider: s.provider, Code: ErrorCodeUnavailable, Message: err.Error()}
	}
	s.done = true
	return "", io.EOF
}

func (s *sseStream) Close() error {
	return s.body.Close()
}
