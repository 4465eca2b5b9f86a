package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiProvider streams completions from Gemini with Google Search
// grounding enabled when a request asks for web search.
type GeminiProvider struct {
	config  *ProviderConfig
	logger  *zap.Logger
	tracer  trace.Tracer
	limiter *rate.Limiter

	once      sync.Once
	client    *genai.Client
	clientErr error
}

// NewGeminiProvider creates a new Gemini provider. The SDK client is built
// lazily on first use.
func NewGeminiProvider(config *ProviderConfig, logger *zap.Logger) *GeminiProvider {
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.RateLimitRPM <= 0 {
		config.RateLimitRPM = 60
	}
	rps := float64(config.RateLimitRPM) / 60.0

	return &GeminiProvider{
		config:  config,
		logger:  logger,
		tracer:  otel.Tracer("gemini-provider"),
		limiter: rate.NewLimiter(rate.Limit(rps), 5),
	}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Configured() bool {
	return p.config.APIKey != ""
}

func (p *GeminiProvider) genaiClient(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		cc := &genai.ClientConfig{
			APIKey:  p.config.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if p.config.BaseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.config.BaseURL}
		}
		p.client, p.clientErr = genai.NewClient(ctx, cc)
	})
	return p.client, p.clientErr
}

// OpenStream starts a streamed generation and waits for the first response
// so that connection and quota failures surface here rather than mid-stream.
func (p *GeminiProvider) OpenStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	ctx, span := p.tracer.Start(ctx, "gemini.open_stream", trace.WithAttributes(
		attribute.String("model", p.config.Model),
		attribute.Bool("web_search", req.WebSearch),
		attribute.Int("message_count", len(req.Messages)),
	))
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, waitError(ctx, p.Name())
	}

	client, err := p.genaiClient(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrorCodeAuthentication,
			Message:  fmt.Sprintf("failed to create client: %v", err),
		}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	seq := client.Models.GenerateContentStream(streamCtx, p.config.Model, p.buildContents(req), p.buildConfig(req))
	next, stop := iter.Pull2(seq)
	s := &geminiStream{provider: p.Name(), next: next, stop: stop, cancel: cancel}

	first, err := s.Recv()
	if err != nil && !errors.Is(err, io.EOF) {
		s.Close()
		span.RecordError(err)
		return nil, err
	}
	s.head, s.headErr, s.hasHead = first, err, true

	p.logger.Debug("Gemini stream opened",
		zap.String("model", p.config.Model),
		zap.Bool("web_search", req.WebSearch))
	return s, nil
}

func (p *GeminiProvider) buildContents(req *ChatRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return contents
}

func (p *GeminiProvider) buildConfig(req *ChatRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	}
	return cfg
}

type geminiStream struct {
	provider string
	next     func() (*genai.GenerateContentResponse, error, bool)
	stop     func()
	cancel   context.CancelFunc

	// First fragment, read eagerly by OpenStream.
	head    string
	headErr error
	hasHead bool
}

func (s *geminiStream) Recv() (string, error) {
	if s.hasHead {
		s.hasHead = false
		return s.head, s.headErr
	}
	for {
		resp, err, ok := s.next()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", geminiError(s.provider, err)
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
	}
}

func (s *geminiStream) Close() error {
	s.stop()
	s.cancel()
	return nil
}

func geminiError(provider string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return errorForStatus(provider, apiErr.Code, apiErr.Message)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ProviderError{Provider: provider, Code: ErrorCodeUnavailable, Message: err.Error(), Retryable: true}
}
