package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
)

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	if reqID, exists := c.Get("request_id"); exists {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message, details)
}

// respondAppError maps a service error onto its status and code.
func respondAppError(c *gin.Context, err error) {
	status := apperrors.GetStatusCode(err)
	code := "INTERNAL_ERROR"
	message := "Internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	} else if status < http.StatusInternalServerError {
		message = err.Error()
	}
	respondError(c, status, code, message, map[string]interface{}{"request_id": getRequestID(c)})
}

// errorMessage prefers the AppError message over the wrapped chain.
func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
