package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/prompt"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/ai"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
)

type MockProvider struct {
	mock.Mock
	configured bool
}

func (m *MockProvider) Name() string     { return "mock" }
func (m *MockProvider) Configured() bool { return m.configured }
func (m *MockProvider) OpenStream(ctx context.Context, req *ai.ChatRequest) (ai.Stream, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(ai.Stream), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeStream yields chunks, then err (io.EOF when nil).
type fakeStream struct {
	chunks []string
	err    error
	closed bool
}

func (f *fakeStream) Recv() (string, error) {
	if len(f.chunks) > 0 {
		c := f.chunks[0]
		f.chunks = f.chunks[1:]
		return c, nil
	}
	if f.err != nil {
		return "", f.err
	}
	return "", io.EOF
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

type recorder struct {
	bytes.Buffer
	flushes int
}

func (r *recorder) Flush() { r.flushes++ }

func newTestService(t *testing.T, p ai.StreamProvider) *Service {
	log := logger.NewLogger(zaptest.NewLogger(t))
	mgr := ai.NewProviderManager(p, nil, zaptest.NewLogger(t))
	return NewService(mgr, prompt.NewTemplateManager(), Config{MaxAttempts: 3, InitialBackoff: time.Millisecond}, log)
}

func serverError() error {
	return &ai.ProviderError{Provider: "mock", Code: ai.ErrorCodeServerError, Message: "upstream 502", Retryable: true}
}

func TestOpenChat_NotConfiguredBeforeUpstream(t *testing.T) {
	p := &MockProvider{configured: false}
	svc := newTestService(t, p)

	_, err := svc.OpenChat(context.Background(), "hello", false)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(err))
	p.AssertNotCalled(t, "OpenStream", mock.Anything, mock.Anything)
}

func TestOpenChat_EmptyPrompt(t *testing.T) {
	p := &MockProvider{configured: true}
	svc := newTestService(t, p)

	_, err := svc.OpenChat(context.Background(), "", false)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, http.StatusBadRequest, StatusFor(err))
	p.AssertNotCalled(t, "OpenStream", mock.Anything, mock.Anything)
}

func TestOpenChat_PipesChunksInOrder(t *testing.T) {
	p := &MockProvider{configured: true}
	upstream := &fakeStream{chunks: []string{"1. ", "Save ", "first"}}
	p.On("OpenStream", mock.Anything, mock.MatchedBy(func(req *ai.ChatRequest) bool {
		return req.Temperature == 1 && req.MaxTokens == 1024 && req.Messages[0].Content == "how do I save?"
	})).Return(upstream, nil).Once()

	svc := newTestService(t, p)
	s, err := svc.OpenChat(context.Background(), "how do I save?", false)
	require.NoError(t, err)

	var rec recorder
	n, err := s.Pipe(context.Background(), &rec)
	require.NoError(t, err)
	assert.Equal(t, "1. Save first", rec.String())
	assert.Equal(t, int64(len("1. Save first")), n)
	assert.Equal(t, 3, rec.flushes)
	assert.True(t, upstream.closed)
	p.AssertExpectations(t)
}

func TestOpen_RetriesBeforeFirstChunk(t *testing.T) {
	p := &MockProvider{configured: true}
	failing := &fakeStream{err: serverError()}
	good := &fakeStream{chunks: []string{"ok"}}
	p.On("OpenStream", mock.Anything, mock.Anything).Return(nil, serverError()).Once()
	p.On("OpenStream", mock.Anything, mock.Anything).Return(failing, nil).Once()
	p.On("OpenStream", mock.Anything, mock.Anything).Return(good, nil).Once()

	svc := newTestService(t, p)
	s, err := svc.OpenFund(context.Background(), prompt.UseCaseSummary, &entities.FundData{})
	require.NoError(t, err)
	assert.True(t, failing.closed)

	var rec recorder
	_, err = s.Pipe(context.Background(), &rec)
	require.NoError(t, err)
	assert.Equal(t, "ok", rec.String())
	p.AssertNumberOfCalls(t, "OpenStream", 3)
}

func TestOpen_DoesNotRetryAuthFailure(t *testing.T) {
	p := &MockProvider{configured: true}
	authErr := &ai.ProviderError{Provider: "mock", Code: ai.ErrorCodeAuthentication, Message: "bad key"}
	p.On("OpenStream", mock.Anything, mock.Anything).Return(nil, authErr).Once()

	svc := newTestService(t, p)
	_, err := svc.OpenChat(context.Background(), "hi", false)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusFor(err))
	assert.Equal(t, "bad key", Message(err))
	p.AssertNumberOfCalls(t, "OpenStream", 1)
}

func TestOpen_GivesUpAfterMaxAttempts(t *testing.T) {
	p := &MockProvider{configured: true}
	p.On("OpenStream", mock.Anything, mock.Anything).Return(nil, serverError())

	svc := newTestService(t, p)
	_, err := svc.OpenChat(context.Background(), "hi", false)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusFor(err))
	p.AssertNumberOfCalls(t, "OpenStream", 3)
}

func TestPipe_NoRetryAfterFirstChunk(t *testing.T) {
	p := &MockProvider{configured: true}
	upstream := &fakeStream{chunks: []string{"partial "}, err: serverError()}
	p.On("OpenStream", mock.Anything, mock.Anything).Return(upstream, nil).Once()

	svc := newTestService(t, p)
	s, err := svc.OpenChat(context.Background(), "hi", false)
	require.NoError(t, err)

	var rec recorder
	_, err = s.Pipe(context.Background(), &rec)
	require.Error(t, err)
	assert.Equal(t, "partial ", rec.String())
	p.AssertNumberOfCalls(t, "OpenStream", 1)
}

func TestPipe_EmptyCompletion(t *testing.T) {
	p := &MockProvider{configured: true}
	p.On("OpenStream", mock.Anything, mock.Anything).Return(&fakeStream{}, nil).Once()

	svc := newTestService(t, p)
	s, err := svc.OpenChat(context.Background(), "hi", false)
	require.NoError(t, err)

	var rec recorder
	n, err := s.Pipe(context.Background(), &rec)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, rec.flushes)
}

func TestStatusFor(t *testing.T) {
	rateErr := &ai.ProviderError{Code: ai.ErrorCodeRateLimit, Message: "slow down"}
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(rateErr))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
