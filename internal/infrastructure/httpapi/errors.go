package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"CampusFeed/internal/domain"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain sentinels to status codes. Internal errors are
// logged with the request and answered with a generic message.
func (h *handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		requestLogger(c, h.logger).Error("request failed", "error", err)
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: message, RequestID: c.GetString(requestIDKey)})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: message, RequestID: c.GetString(requestIDKey)})
}
