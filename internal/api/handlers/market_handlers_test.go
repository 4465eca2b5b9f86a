package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wealthpulse/wealthpulse_service/internal/adapters/analytics"
	"github.com/wealthpulse/wealthpulse_service/internal/adapters/videos"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/market"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/cache"
	"github.com/wealthpulse/wealthpulse_service/pkg/health"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
)

func setupMarketTest(t *testing.T, backend http.HandlerFunc) *gin.Engine {
	zl := zaptest.NewLogger(t)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := analytics.NewClient(analytics.Config{BaseURL: srv.URL, MaxAttempts: 1}, zl)
	svc := market.NewService(client, cache.NoopCache{}, market.Config{CacheTTL: time.Minute}, logger.NewLogger(zl))
	h := NewMarketHandlers(svc, zl)

	router := gin.New()
	router.GET("/api/market/snapshot/:kind/:id", h.Snapshot)
	router.GET("/api/market/search/:kind", h.Search)
	router.GET("/api/market/famous", h.Famous)
	router.GET("/api/market/compare", h.Compare)
	return router
}

func TestMarketHandlers_Search(t *testing.T) {
	router := setupMarketTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/crypto/coins", r.URL.Path)
		assert.Equal(t, "Bitcoin", r.URL.Query().Get("search"))
		w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},{"id":"bitcoin-cash","symbol":"bch","name":"Bitcoin Cash"}]`))
	})

	w := perform(router, httptest.NewRequest(http.MethodGet, "/api/market/search/crypto?q=Bitcoin&seq=12", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res entities.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, uint64(12), res.Seq)
	require.Len(t, res.Suggestions, 2)
	assert.Equal(t, "bitcoin", res.Suggestions[0].ID)
}

func TestMarketHandlers_BadInput(t *testing.T) {
	router := setupMarketTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, path := range []string{
		"/api/market/search/bonds?q=x",
		"/api/market/search/stock?q=x&seq=-1",
		"/api/market/snapshot/etf/SPY",
		"/api/market/compare?a=119551",
	} {
		w := perform(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestMarketHandlers_SnapshotDegrades(t *testing.T) {
	router := setupMarketTest(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/mutual/scheme-details/119551":
			w.Write([]byte(`{"scheme_name":"Axis Bluechip"}`))
		case "/api/mutual/historical-nav/119551":
			w.WriteHeader(http.StatusInternalServerError)
		case "/api/mutual/performance-heatmap/119551":
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`{"simulation_paths":[]}`))
		}
	})

	w := perform(router, httptest.NewRequest(http.MethodGet, "/api/market/snapshot/mutual/119551", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap entities.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.JSONEq(t, `{"scheme_name":"Axis Bluechip"}`, string(snap.Profile))
	assert.Equal(t, []string{"history"}, snap.Errors)
	assert.JSONEq(t, `[]`, string(snap.History))
	assert.Equal(t, entities.NoPredictionPlaceholder, snap.Prediction.Placeholder)
}

func TestEducationHandlers_Videos(t *testing.T) {
	zl := zaptest.NewLogger(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":{"videoId":"abc"},"snippet":{"title":"What is a SIP?"}}]}`))
	}))
	defer srv.Close()

	router := gin.New()
	router.GET("/ok", NewEducationHandlers(videos.NewClient(videos.Config{APIKey: "k", BaseURL: srv.URL}, zl), zl).Videos)
	router.GET("/nokey", NewEducationHandlers(videos.NewClient(videos.Config{BaseURL: srv.URL}, zl), zl).Videos)

	w := perform(router, httptest.NewRequest(http.MethodGet, "/ok?q=sip", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"title":"What is a SIP?","videoId":"abc"}]`, w.Body.String())

	w = perform(router, httptest.NewRequest(http.MethodGet, "/ok?q=", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Please enter a search term."}`, w.Body.String())

	w = perform(router, httptest.NewRequest(http.MethodGet, "/nokey?q=sip", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or missing YouTube API key."}`, w.Body.String())
}

func TestHealthHandlers(t *testing.T) {
	zl := zaptest.NewLogger(t)
	checker := health.NewHealthChecker(time.Second)
	checker.Register(health.NewCheckerFunc("analytics", func(ctx context.Context) health.CheckResult {
		return health.NewDegradedResult("analytics", "not configured")
	}))
	h := NewHealthHandlers(checker, ConfigPresence{HasAnalyticsURL: false, HasOpenRouterKey: true}, zl)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/version", h.Version)
	router.GET("/api/debug", h.Debug)

	w := perform(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)

	w = perform(router, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Contains(t, w.Body.String(), `"service":"wealthpulse"`)

	w = perform(router, httptest.NewRequest(http.MethodGet, "/api/debug", nil))
	var body struct {
		HasCookies bool           `json:"hasCookies"`
		Env        ConfigPresence `json:"env"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.HasCookies)
	assert.True(t, body.Env.HasOpenRouterKey)
	assert.False(t, body.Env.HasAnalyticsURL)
}
