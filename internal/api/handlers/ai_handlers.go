package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/prompt"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/relay"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Prompt          string `json:"prompt"`
	EnableWebSearch bool   `json:"enableWebSearch"`
}

// FundRequest is the body of the summary and report endpoints.
type FundRequest struct {
	FundData *entities.FundData `json:"fundData"`
}

// AIHandlers streams model output back to the browser as plain text.
type AIHandlers struct {
	relay  *relay.Service
	logger *zap.Logger
}

func NewAIHandlers(relayService *relay.Service, logger *zap.Logger) *AIHandlers {
	return &AIHandlers{
		relay:  relayService,
		logger: logger,
	}
}

// Chat answers a free-text question
// @Summary Chat with the financial assistant
// @Description Streams the answer as text/plain chunks
// @Tags ai
// @Accept json
// @Produce plain
// @Param request body ChatRequest true "Question"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/chat [post]
func (h *AIHandlers) Chat(c *gin.Context) {
	var req ChatRequest
	// A malformed body is treated as an empty prompt.
	_ = c.ShouldBindJSON(&req)

	stream, err := h.relay.OpenChat(c.Request.Context(), req.Prompt, req.EnableWebSearch)
	if err != nil {
		h.logger.Error("Chat API error", zap.Error(err), zap.String("request_id", getRequestID(c)))
		status := relay.StatusFor(err)
		c.JSON(status, gin.H{"error": chatErrorMessage(status, err)})
		return
	}
	h.pipe(c, stream)
}

func chatErrorMessage(status int, err error) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "Chat service is not properly configured"
	case http.StatusBadRequest:
		return "Please provide a question or message"
	case http.StatusUnauthorized:
		return "Authentication failed with the chat service"
	case http.StatusTooManyRequests:
		return "Too many requests. Please try again later."
	}
	if msg := relay.Message(err); msg != "" {
		return msg
	}
	return "Failed to process chat request"
}

// Summarize produces a short conversational summary of a fund or portfolio
// @Summary Summarize fund data
// @Tags ai
// @Accept json
// @Produce plain
// @Param request body FundRequest true "Fund data"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/ai/summarize [post]
func (h *AIHandlers) Summarize(c *gin.Context) {
	h.fund(c, prompt.UseCaseSummary, "Failed to generate summary")
}

// GenerateReport produces a structured analysis report of a fund or portfolio
// @Summary Generate fund report
// @Tags ai
// @Accept json
// @Produce plain
// @Param request body FundRequest true "Fund data"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/ai/generate-report [post]
func (h *AIHandlers) GenerateReport(c *gin.Context) {
	h.fund(c, prompt.UseCaseReport, "Failed to generate report")
}

func (h *AIHandlers) fund(c *gin.Context, useCase prompt.UseCase, failure string) {
	var req FundRequest
	_ = c.ShouldBindJSON(&req)

	stream, err := h.relay.OpenFund(c.Request.Context(), useCase, req.FundData)
	if err != nil {
		h.logger.Error("Fund stream failed to open",
			zap.String("use_case", string(useCase)),
			zap.Error(err),
			zap.String("request_id", getRequestID(c)))
		switch status := relay.StatusFor(err); status {
		case http.StatusServiceUnavailable:
			c.JSON(status, gin.H{"error": "AI service is not properly configured"})
		case http.StatusBadRequest:
			c.JSON(status, gin.H{"error": "Fund data is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
		}
		return
	}
	h.pipe(c, stream)
}

// pipe commits the 200 and relays chunks. A failure after that point can no
// longer change the status, so the connection is aborted instead and the
// client sees a truncated body.
func (h *AIHandlers) pipe(c *gin.Context, stream *relay.Stream) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if _, err := stream.Pipe(c.Request.Context(), c.Writer); err != nil {
		panic(http.ErrAbortHandler)
	}
}
