package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/policy-tracker-backend/internal/http/middleware"
	"github.com/tbourn/policy-tracker-backend/internal/services"
)

// Error codes carried in ErrorResponse.Code. Clients branch on these, not on
// the message text.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// msgStoreUnavailable is shown instead of the driver error, which may carry
// connection details.
const msgStoreUnavailable = "policy store is unavailable, please try again"

// failErr maps a service error onto the response envelope.
func failErr(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
	case errors.As(err, &ve):
		failField(c, http.StatusBadRequest, ErrCodeValidation, ve.Field, ve.Error())
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
	case errors.Is(err, services.ErrAuthentication):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	case errors.Is(err, services.ErrPolicyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "policy not found")
	case errors.Is(err, services.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		middleware.StoreFailure(c)
		middleware.LoggerFrom(c).Error().Err(err).Msg("policy store failure")
		fail(c, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, msgStoreUnavailable)
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("unexpected service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
