package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/adapters/videos"
	"github.com/wealthpulse/wealthpulse_service/pkg/sanitize"
)

type EducationHandlers struct {
	videos *videos.Client
	logger *zap.Logger
}

func NewEducationHandlers(videoClient *videos.Client, logger *zap.Logger) *EducationHandlers {
	return &EducationHandlers{
		videos: videoClient,
		logger: logger,
	}
}

// Videos searches educational videos
// @Summary Search education videos
// @Tags education
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} entities.Video
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/education/videos [get]
func (h *EducationHandlers) Videos(c *gin.Context) {
	q := sanitize.Query(c.Query("q"), 200)
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a search term."})
		return
	}

	results, err := h.videos.Search(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, videos.ErrInvalidKey) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": videos.ErrInvalidKey.Message})
			return
		}
		h.logger.Error("Video search failed", zap.Error(err), zap.String("query", sanitize.LogString(q)))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch videos. Please try again."})
		return
	}
	c.JSON(http.StatusOK, results)
}
