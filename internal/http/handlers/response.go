package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/policy-tracker-backend/internal/http/middleware"
)

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	// Echoes X-Request-ID so a failure can be found in the logs.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code, see errors.go.
	Code string `json:"code" example:"validation_failed"`
	// Safe to show to the agent.
	Message string `json:"message" example:"customer_name: is required"`
	// Offending input field for validation_failed.
	Field string `json:"field,omitempty" example:"customer_name"`
}

func fail(c *gin.Context, status int, code, msg string) {
	failField(c, status, code, "", msg)
}

func failField(c *gin.Context, status int, code, field, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
		Field:     field,
	})
}

// Fail writes the error envelope. The router uses it for 404/405 fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// gone reports whether the client went away while the service was working.
// A stale result must not be written, so the handler stops without a body.
func gone(c *gin.Context) bool {
	if c.Request.Context().Err() == nil {
		return false
	}
	c.Abort()
	return true
}
