package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// StreamProvider opens streaming chat completions against a hosted model.
type StreamProvider interface {
	// Name returns the provider name (e.g., "openrouter", "gemini")
	Name() string

	// Configured reports whether credentials are present. Callers must not
	// open a stream on an unconfigured provider.
	Configured() bool

	// OpenStream starts a completion. Errors returned here happen before any
	// text was produced and may be retried.
	OpenStream(ctx context.Context, req *ChatRequest) (Stream, error)
}

// Stream yields text fragments in arrival order. Recv returns io.EOF once the
// model has finished.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Messages     []Message `json:"messages"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  float64   `json:"temperature"`
	WebSearch    bool      `json:"web_search,omitempty"`
	UserID       string    `json:"user_id,omitempty"` // For tracing only
}

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ProviderConfig holds configuration for AI providers
type ProviderConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Referer      string
	Title        string
	Timeout      time.Duration
	RateLimitRPM int // Requests per minute
}

// ProviderError represents an error from an AI provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// Common error codes
const (
	ErrorCodeRateLimit      = "rate_limit"
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeAuthentication = "authentication"
	ErrorCodeServerError    = "server_error"
	ErrorCodeTimeout        = "timeout"
	ErrorCodeUnavailable    = "unavailable"
)

// IsRetryable reports whether opening the stream again may succeed.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// StatusCode maps a provider failure onto the HTTP status surfaced to callers.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.Code {
		case ErrorCodeAuthentication:
			return http.StatusUnauthorized
		case ErrorCodeRateLimit:
			return http.StatusTooManyRequests
		}
	}
	return http.StatusInternalServerError
}

// waitError reports a failed limiter wait. A done context is returned as is
// so that cancelled requests are not counted as rate limited.
func waitError(ctx context.Context, provider string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return &ProviderError{
		Provider: provider,
		Code:     ErrorCodeRateLimit,
		Message:  "rate limit exceeded",
	}
}

// errorForStatus classifies an HTTP failure from a provider.
func errorForStatus(provider string, status int, message string) *ProviderError {
	pe := &ProviderError{Provider: provider, Message: message, StatusCode: status}
	switch {
	case status == http.StatusUnauthorized:
		pe.Code = ErrorCodeAuthentication
	case status == http.StatusTooManyRequests:
		pe.Code = ErrorCodeRateLimit
		pe.Retryable = true
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		pe.Code = ErrorCodeTimeout
		pe.Retryable = true
	case status >= 500:
		pe.Code = ErrorCodeServerError
		pe.Retryable = true
	default:
		pe.Code = ErrorCodeInvalidRequest
	}
	if pe.Message == "" {
		pe.Message = http.StatusText(status)
	}
	return pe
}

// Collect drains a stream into a single string.
func Collect(s Stream) (string, error) {
	defer s.Close()
	var out []byte
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return string(out), nil
		}
		if err != nil {
			return string(out), err
		}
		out = append(out, chunk...)
	}
}
