package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestLocalLimiter_BurstThenReject(t *testing.T) {
	l := NewLocalLimiter(Config{RequestsPerMinute: 60, Burst: 2})
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")
}

func TestLocalLimiter_Sweep(t *testing.T) {
	now := time.Now()
	l := NewLocalLimiter(Config{RequestsPerMinute: 60, IdleTTL: time.Minute})
	l.now = func() time.Time { return now }
	_, _ = l.Allow(context.Background(), "a")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, l.Sweep())
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rejected := 0
	r := gin.New()
	r.Use(Middleware(NewLocalLimiter(Config{RequestsPerMinute: 60, Burst: 1}), IPKeyFunc,
		func(*gin.Context) { rejected++ }, zaptest.NewLogger(t)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, rejected)
}
