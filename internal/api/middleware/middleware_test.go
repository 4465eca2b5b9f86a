package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/session"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
	"github.com/wealthpulse/wealthpulse_service/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestRecovery(t *testing.T) {
	log := logger.NewLogger(zaptest.NewLogger(t))
	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })
	router.GET("/abort", func(c *gin.Context) { panic(http.ErrAbortHandler) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	})
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLocalLimiter(ratelimit.Config{RequestsPerMinute: 1, Burst: 1})
	router := gin.New()
	router.Use(RateLimit(limiter, zaptest.NewLogger(t)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func newSessionRouter(t *testing.T, svc *session.Service) *gin.Engine {
	router := gin.New()
	router.Use(Session(svc))
	router.GET("/whoami", func(c *gin.Context) {
		res := session.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"signed_in": res.SignedIn, "reason": res.Reason})
	})
	owned := router.Group("/portfolio/:userId", RequireOwner("userId"))
	owned.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestSessionAndRequireOwner(t *testing.T) {
	svc := session.NewService(session.Config{Secret: "0123456789abcdef0123456789abcdef"}, logger.NewLogger(zaptest.NewLogger(t)))
	sess := svc.NewSession(entities.Claims{Sub: "user-42"}, "at", "id", time.Hour)
	token, err := svc.Encode(sess)
	require.NoError(t, err)
	router := newSessionRouter(t, svc)

	tests := []struct {
		name   string
		path   string
		cookie string
		status int
	}{
		{"owner", "/portfolio/user-42", token, http.StatusOK},
		{"other user", "/portfolio/user-7", token, http.StatusForbidden},
		{"anonymous", "/portfolio/user-42", "", http.StatusUnauthorized},
		{"garbage cookie", "/portfolio/user-42", "garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: svc.CookieName(), Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSession_ResolvesIntoContext(t *testing.T) {
	svc := session.NewService(session.Config{Secret: "0123456789abcdef0123456789abcdef"}, logger.NewNop())
	router := newSessionRouter(t, svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.JSONEq(t, `{"signed_in":false,"reason":"absent"}`, w.Body.String())
}
