package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/prompt"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/ai"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
	"github.com/wealthpulse/wealthpulse_service/pkg/retry"
	"github.com/wealthpulse/wealthpulse_service/pkg/sanitize"
)

var (
	// ErrNotConfigured means no model provider has credentials.
	ErrNotConfigured = errors.New("no model provider is configured")
	// ErrEmptyPrompt means the request carried nothing to send.
	ErrEmptyPrompt = errors.New("no prompt provided")
)

// Flusher is the downstream side of a relay: an http.ResponseWriter that can
// push buffered bytes to the client.
type Flusher interface {
	io.Writer
	Flush()
}

type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Service turns chat questions and fund payloads into model streams.
type Service struct {
	providers *ai.ProviderManager
	prompts   *prompt.TemplateManager
	policy    retry.Policy
	logger    *logger.Logger
}

func NewService(providers *ai.ProviderManager, prompts *prompt.TemplateManager, cfg Config, log *logger.Logger) *Service {
	policy := retry.PolicyStreamOpen.WithRetryable(ai.IsRetryable)
	if cfg.MaxAttempts > 0 {
		policy = policy.WithMaxAttempts(cfg.MaxAttempts)
	}
	if cfg.InitialBackoff > 0 {
		policy.InitialBackoff = cfg.InitialBackoff
		if policy.MaxBackoff < policy.InitialBackoff {
			policy.MaxBackoff = policy.InitialBackoff
		}
	}
	return &Service{
		providers: providers,
		prompts:   prompts,
		policy:    policy,
		logger:    log,
	}
}

// Configured reports whether any provider can serve a stream.
func (s *Service) Configured() bool {
	return s.providers.Configured()
}

// OpenChat opens a stream answering a free-text question.
func (s *Service) OpenChat(ctx context.Context, question string, webSearch bool) (*Stream, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	p, err := s.prompts.Chat(question)
	if err != nil {
		return nil, ErrEmptyPrompt
	}
	s.logger.CtxInfo(ctx, "Opening chat stream",
		"prompt", sanitize.LogString(logger.Truncate(question, 100)),
		"web_search", webSearch)
	return s.open(ctx, prompt.UseCaseChat, p, webSearch)
}

// OpenFund opens a summary or report stream over a fund or portfolio payload.
func (s *Service) OpenFund(ctx context.Context, useCase prompt.UseCase, data *entities.FundData) (*Stream, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if data == nil {
		return nil, ErrEmptyPrompt
	}
	p, err := s.prompts.Fund(useCase, data)
	if err != nil {
		return nil, fmt.Errorf("build %s prompt: %w", useCase, err)
	}
	s.logger.CtxInfo(ctx, "Opening fund stream",
		"use_case", useCase,
		"template", p.Name,
		"holdings", len(data.PortfolioItems))
	return s.open(ctx, useCase, p, false)
}

// open retries until the first fragment has been read. Nothing has been sent
// downstream at that point, so a retry cannot duplicate output.
func (s *Service) open(ctx context.Context, useCase prompt.UseCase, p *prompt.Prompt, webSearch bool) (*Stream, error) {
	req := &ai.ChatRequest{
		SystemPrompt: p.System,
		Messages:     []ai.Message{{Role: "user", Content: p.User}},
		Temperature:  p.Temperature,
		MaxTokens:    p.MaxTokens,
		WebSearch:    webSearch,
	}
	provider := s.providers.Select(req)
	if provider == nil {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	policy := s.policy.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		metrics.StreamOpenRetriesTotal.WithLabelValues(provider.Name()).Inc()
		s.logger.CtxWarn(ctx, "Retrying stream open",
			"provider", provider.Name(),
			"attempt", attempt,
			"backoff", delay,
			"error", err)
	})

	var out *Stream
	err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		upstream, err := provider.OpenStream(ctx, req)
		if err != nil {
			return err
		}
		first, err := upstream.Recv()
		if err != nil && !errors.Is(err, io.EOF) {
			upstream.Close()
			return err
		}
		out = &Stream{
			upstream: upstream,
			head:     first,
			eof:      errors.Is(err, io.EOF),
			useCase:  useCase,
			provider: provider.Name(),
			started:  start,
			logger:   s.logger,
		}
		return nil
	})
	if err != nil {
		metrics.RecordStream(string(useCase), provider.Name(), "open_failed")
		s.logger.CtxError(ctx, "Failed to open stream",
			"provider", provider.Name(),
			"use_case", useCase,
			"error", err)
		return nil, err
	}
	metrics.StreamTimeToFirstChunk.WithLabelValues(string(useCase)).Observe(time.Since(start).Seconds())
	return out, nil
}

// Stream is an opened model stream whose first fragment is already buffered.
type Stream struct {
	upstream ai.Stream
	head     string
	eof      bool
	useCase  prompt.UseCase
	provider string
	started  time.Time
	logger   *logger.Logger
}

func (s *Stream) Provider() string {
	return s.provider
}

// Pipe writes every fragment to w and flushes after each one. It does not
// retry: once bytes have reached the client a failure ends the response.
func (s *Stream) Pipe(ctx context.Context, w Flusher) (int64, error) {
	defer s.upstream.Close()

	var written int64
	emit := func(chunk string) error {
		if chunk == "" {
			return nil
		}
		n, err := io.WriteString(w, chunk)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("write downstream: %w", err)
		}
		w.Flush()
		return nil
	}

	err := emit(s.head)
	for err == nil && !s.eof {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		var chunk string
		chunk, err = s.upstream.Recv()
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err == nil {
			err = emit(chunk)
		}
	}

	metrics.StreamBytesTotal.WithLabelValues(string(s.useCase)).Add(float64(written))
	outcome := "completed"
	if err != nil {
		outcome = "aborted"
		s.logger.CtxWarn(ctx, "Stream aborted after first chunk",
			"provider", s.provider,
			"use_case", s.useCase,
			"bytes", written,
			"error", err)
	} else {
		s.logger.CtxInfo(ctx, "Stream completed",
			"provider", s.provider,
			"use_case", s.useCase,
			"bytes", written,
			"duration", time.Since(s.started))
	}
	metrics.RecordStream(string(s.useCase), s.provider, outcome)
	return written, err
}

// Close releases the upstream without piping it.
func (s *Stream) Close() error {
	return s.upstream.Close()
}

// StatusFor maps an open failure onto the HTTP status for the response.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrEmptyPrompt):
		return http.StatusBadRequest
	}
	return ai.StatusCode(err)
}

// Message is the client-facing text for an open failure.
func Message(err error) string {
	var pe *ai.ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
