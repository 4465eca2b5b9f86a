package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/adapters/analytics"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/portfolio"
	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
)

// PortfolioHandlers relays portfolio CRUD to the analytics backend. Errors use
// the backend's {"detail": ...} shape so clients see one format.
type PortfolioHandlers struct {
	service   *portfolio.Service
	validator *validator.Validate
	logger    *zap.Logger
}

func NewPortfolioHandlers(service *portfolio.Service, logger *zap.Logger) *PortfolioHandlers {
	return &PortfolioHandlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// List returns the user's portfolio items
// @Summary List portfolio items
// @Tags portfolio
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} entities.PortfolioItem
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/portfolio/{userId} [get]
func (h *PortfolioHandlers) List(c *gin.Context) {
	res, err := h.service.List(c.Request.Context(), c.Param("userId"))
	h.relay(c, res, err, nil)
}

// Add adds an instrument to the user's portfolio
// @Summary Add portfolio item
// @Tags portfolio
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body entities.AddPortfolioItemRequest true "Item"
// @Success 200 {object} entities.PortfolioItem
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/portfolio/add/{userId} [post]
func (h *PortfolioHandlers) Add(c *gin.Context) {
	var req entities.AddPortfolioItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid portfolio item: " + err.Error()})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("Portfolio item validation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid portfolio item: " + err.Error()})
		return
	}
	res, err := h.service.Add(c.Request.Context(), c.Param("userId"), req)
	h.relay(c, res, err, nil)
}

// Remove deletes an item from the user's portfolio
// @Summary Remove portfolio item
// @Tags portfolio
// @Produce json
// @Param userId path string true "User ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/portfolio/{userId}/{itemId} [delete]
func (h *PortfolioHandlers) Remove(c *gin.Context) {
	res, err := h.service.Remove(c.Request.Context(), c.Param("userId"), c.Param("itemId"))
	h.relay(c, res, err, gin.H{"message": "Item removed successfully"})
}

// Dashboard returns holdings enriched with risk and price plus portfolio-level
// aggregates
// @Summary Portfolio dashboard
// @Tags portfolio
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} entities.PortfolioDashboard
// @Failure 500 {object} map[string]string
// @Router /api/portfolio/{userId}/dashboard [get]
func (h *PortfolioHandlers) Dashboard(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// relay writes the upstream answer with its status. An empty body is
// replaced by emptyBody when given.
func (h *PortfolioHandlers) relay(c *gin.Context, res *analytics.RawResponse, err error, emptyBody gin.H) {
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(res.Body) == 0 && emptyBody != nil {
		c.JSON(res.StatusCode, emptyBody)
		return
	}
	if !json.Valid(res.Body) {
		h.logger.Error("Invalid response from analytics backend",
			zap.Int("status_code", res.StatusCode),
			zap.Int("body_size", len(res.Body)),
			zap.String("request_id", getRequestID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Invalid response from API"})
		return
	}
	c.Data(res.StatusCode, "application/json; charset=utf-8", res.Body)
}

func (h *PortfolioHandlers) fail(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotConfigured) {
		h.logger.Error("Analytics API URL is not defined")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "API URL configuration error"})
		return
	}
	h.logger.Error("Portfolio request failed",
		zap.Error(err),
		zap.String("user_id", c.Param("userId")),
		zap.String("request_id", getRequestID(c)))
	status := apperrors.GetStatusCode(err)
	if status < http.StatusInternalServerError {
		c.JSON(status, gin.H{"detail": errorMessage(err)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}
