package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newOpenRouter(t *testing.T, url string) *OpenRouterProvider {
	return NewOpenRouterProvider(&ProviderConfig{
		APIKey:  "key",
		BaseURL: url,
		Model:   "google/gemini-2.5-flash",
		Referer: "https://newealth.com",
		Title:   "NewWealth AI",
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestOpenRouterProvider_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://newealth.com", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "NewWealth AI", r.Header.Get("X-Title"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])
		assert.Equal(t, float64(1024), body["max_tokens"])
		msgs := body["messages"].([]interface{})
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, ": OPENROUTER PROCESSING\n\n")
		_, _ = io.WriteString(w, `data: {"choices":[{"delta":{"role":"assistant"}}]}`+"\n\n")
		_, _ = io.WriteString(w, `data: {"choices":[{"delta":{"content":"1. Start "}}]}`+"\n\n")
		_, _ = io.WriteString(w, `data: {"choices":[{"delta":{"content":"early"}}]}`+"\n\n")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := newOpenRouter(t, srv.URL)
	s, err := p.OpenStream(context.Background(), &ChatRequest{
		SystemPrompt: "sys",
		Messages:     []Message{{Role: "user", Content: "how to save?"}},
		Temperature:  1,
		MaxTokens:    1024,
	})
	require.NoError(t, err)

	text, err := Collect(s)
	require.NoError(t, err)
	assert.Equal(t, "1. Start early", text)
}

func TestOpenRouterProvider_HTTPErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantCode   string
		wantStatus int
		retryable  bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: ErrorCodeAuthentication, wantStatus: http.StatusUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, wantCode: ErrorCodeInvalidRequest, wantStatus: http.StatusInternalServerError},
		{name: "rate limited", status: http.StatusTooManyRequests, wantCode: ErrorCodeRateLimit, wantStatus: http.StatusTooManyRequests, retryable: true},
		{name: "server error", status: http.StatusBadGateway, wantCode: ErrorCodeServerError, wantStatus: http.StatusInternalServerError, retryable: true},
		{name: "bad request", status: http.StatusBadRequest, wantCode: ErrorCodeInvalidRequest, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"upstream says no"}}`))
			}))
			defer srv.Close()

			_, err := newOpenRouter(t, srv.URL).OpenStream(context.Background(), &ChatRequest{
				Messages: []Message{{Role: "user", Content: "hi"}},
			})
			require.Error(t, err)
			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, "upstream says no", pe.Message)
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Equal(t, tt.wantStatus, StatusCode(err))
		})
	}
}

func TestOpenRouterProvider_CancelledBeforeOpen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newOpenRouter(t, "http://unused").OpenStream(ctx, &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestSSEStream_MidStreamError(t *testing.T) {
	body := io.NopCloser(strings.NewReader(
		`data: {"choices":[{"delta":{"content":"partial"}}]}` + "\n" +
			`data: {"error":{"message":"model overloaded","code":502}}` + "\n"))
	s := newSSEStream("openrouter", body)

	chunk, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", chunk)

	_, err = s.Recv()
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "model overloaded", pe.Message)
}

func TestSSEStream_EndsWithoutDone(t *testing.T) {
	s := newSSEStream("openrouter", io.NopCloser(strings.NewReader(`data: {"choices":[{"delta":{"content":"x"}}]}`)))
	text, err := Collect(s)
	require.NoError(t, err)
	assert.Equal(t, "x", text)
}

type stubProvider struct {
	name       string
	configured bool
}

func (s *stubProvider) Name() string     { return s.name }
func (s *stubProvider) Configured() bool { return s.configured }
func (s *stubProvider) OpenStream(context.Context, *ChatRequest) (Stream, error) {
	return nil, nil
}

func TestProviderManager_Select(t *testing.T) {
	primary := &stubProvider{name: "openrouter", configured: true}
	search := &stubProvider{name: "gemini", configured: true}

	m := NewProviderManager(primary, search, zaptest.NewLogger(t))
	assert.Equal(t, search, m.Select(&ChatRequest{WebSearch: true}))
	assert.Equal(t, primary, m.Select(&ChatRequest{}))

	search.configured = false
	req := &ChatRequest{WebSearch: true}
	assert.Equal(t, primary, m.Select(req))
	assert.False(t, req.WebSearch)

	primary.configured = false
	assert.Nil(t, m.Select(&ChatRequest{}))
	assert.False(t, m.Configured())
}

func TestGeminiProvider_BuildConfig(t *testing.T) {
	p := NewGeminiProvider(&ProviderConfig{APIKey: "k"}, zaptest.NewLogger(t))
	cfg := p.buildConfig(&ChatRequest{SystemPrompt: "sys", Temperature: 0.7, MaxTokens: 2048, WebSearch: true})
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, *cfg.Temperature, 1e-6)
	assert.Equal(t, int32(2048), cfg.MaxOutputTokens)
	require.Len(t, cfg.Tools, 1)
	assert.NotNil(t, cfg.Tools[0].GoogleSearch)
	assert.Equal(t, "sys", cfg.SystemInstruction.Parts[0].Text)

	contents := p.buildContents(&ChatRequest{Messages: []Message{{Role: "user", Content: "q"}, {Role: "assistant", Content: "a"}}})
	require.Len(t, contents, 2)
	assert.Equal(t, "model", contents[1].Role)
}
