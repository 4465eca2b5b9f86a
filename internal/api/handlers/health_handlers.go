package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/pkg/health"
	"github.com/wealthpulse/wealthpulse_service/pkg/version"
)

var startTime = time.Now()

// ConfigPresence reports which collaborator settings are present. It never
// carries the values themselves.
type ConfigPresence struct {
	HasBaseURL         bool `json:"hasBaseUrl"`
	HasIssuerURL       bool `json:"hasIssuerUrl"`
	HasClientID        bool `json:"hasClientId"`
	HasClientSecret    bool `json:"hasClientSecret"`
	HasSessionSecret   bool `json:"hasSessionSecret"`
	HasAnalyticsURL    bool `json:"hasAnalyticsUrl"`
	HasOpenRouterKey   bool `json:"hasOpenRouterKey"`
	HasGeminiKey       bool `json:"hasGeminiKey"`
	HasYouTubeKey      bool `json:"hasYouTubeKey"`
	HasRedis           bool `json:"hasRedis"`
	TracingEnabled     bool `json:"tracingEnabled"`
	ClientSecretLength int  `json:"clientSecretLength"`
}

// HealthHandlers serves the operational endpoints.
type HealthHandlers struct {
	checker  *health.HealthChecker
	presence ConfigPresence
	logger   *zap.Logger
}

func NewHealthHandlers(checker *health.HealthChecker, presence ConfigPresence, logger *zap.Logger) *HealthHandlers {
	return &HealthHandlers{
		checker:  checker,
		presence: presence,
		logger:   logger,
	}
}

// Health performs health checks on every collaborator
// @Summary Get application health status
// @Description Checks the analytics backend, circuit breakers and Redis
// @Tags health
// @Produce json
// @Success 200 {object} health.HealthResponse
// @Failure 503 {object} health.HealthResponse
// @Router /health [get]
func (h *HealthHandlers) Health(c *gin.Context) {
	status, checks := h.checker.Check(c.Request.Context())
	code := http.StatusOK
	if status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
		h.logger.Warn("Health check failed", zap.Any("checks", checks))
	}
	c.JSON(code, health.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   version.Version,
		Checks:    checks,
	})
}

// Ready reports whether the service can take traffic. Degraded collaborators
// do not make it unready: affected endpoints answer with their own errors.
// @Summary Get application readiness status
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandlers) Ready(c *gin.Context) {
	status, checks := h.checker.Check(c.Request.Context())
	ready := status != health.StatusUnhealthy
	state := "ready"
	code := http.StatusOK
	if !ready {
		state = "not_ready"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    state,
		"timestamp": time.Now(),
		"checks":    checks,
	})
}

// Live checks if the application is alive
// @Summary Get application liveness status
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}

// Version returns build information
// @Summary Build information
// @Tags health
// @Produce json
// @Success 200 {object} version.Info
// @Router /version [get]
func (h *HealthHandlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// Debug reports configuration presence flags
// @Summary Configuration presence
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/debug [get]
func (h *HealthHandlers) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"hasCookies": c.GetHeader("Cookie") != "",
		"env":        h.presence,
	})
}

// Metrics exposes Prometheus metrics.
func (h *HealthHandlers) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
