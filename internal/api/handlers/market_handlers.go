package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/market"
)

type MarketHandlers struct {
	service *market.Service
	logger  *zap.Logger
}

func NewMarketHandlers(service *market.Service, logger *zap.Logger) *MarketHandlers {
	return &MarketHandlers{
		service: service,
		logger:  logger,
	}
}

// Snapshot returns every dashboard part for one instrument
// @Summary Instrument snapshot
// @Description Profile, history, heatmap, risk and Monte Carlo fetched concurrently. Failed parts are empty and listed in errors.
// @Tags market
// @Produce json
// @Param kind path string true "stock, mutual or crypto"
// @Param id path string true "Symbol, scheme code or coin id"
// @Success 200 {object} entities.Snapshot
// @Failure 400 {object} entities.ErrorResponse
// @Router /api/market/snapshot/{kind}/{id} [get]
func (h *MarketHandlers) Snapshot(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	snap, err := h.service.Snapshot(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Search returns up to eight suggestions for a query
// @Summary Search instruments
// @Tags market
// @Produce json
// @Param kind path string true "stock, mutual or crypto"
// @Param q query string true "Query"
// @Param seq query int false "Client sequence number, echoed back"
// @Success 200 {object} entities.SearchResult
// @Failure 400 {object} entities.ErrorResponse
// @Failure 502 {object} entities.ErrorResponse
// @Router /api/market/search/{kind} [get]
func (h *MarketHandlers) Search(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var seq uint64
	if raw := c.Query("seq"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, "seq must be a non-negative integer", nil)
			return
		}
		seq = v
	}

	result, err := h.service.Search(c.Request.Context(), kind, c.Query("q"), seq)
	if err != nil {
		h.logger.Warn("Search failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Famous returns the curated list of well-known coins
// @Summary Famous coins
// @Tags market
// @Produce json
// @Success 200 {array} entities.Suggestion
// @Router /api/market/famous [get]
func (h *MarketHandlers) Famous(c *gin.Context) {
	coins, err := h.service.FamousCoins(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, coins)
}

// Compare describes two mutual fund schemes side by side
// @Summary Compare mutual funds
// @Tags market
// @Produce json
// @Param a query string true "First scheme code"
// @Param b query string true "Second scheme code"
// @Success 200 {object} entities.Comparison
// @Failure 400 {object} entities.ErrorResponse
// @Router /api/market/compare [get]
func (h *MarketHandlers) Compare(c *gin.Context) {
	a, b := strings.TrimSpace(c.Query("a")), strings.TrimSpace(c.Query("b"))
	if a == "" || b == "" {
		respondBadRequest(c, "Select two funds to compare", nil)
		return
	}
	cmp, err := h.service.Compare(c.Request.Context(), a, b)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (h *MarketHandlers) kind(c *gin.Context) (entities.AssetKind, bool) {
	kind, ok := entities.ParseAssetKind(c.Param("kind"))
	if !ok {
		respondBadRequest(c, "Unknown asset kind", map[string]interface{}{"kind": c.Param("kind")})
	}
	return kind, ok
}
