package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/httputil"
	"github.com/metalbroker/metalbroker/internal/metrics"
	"github.com/metalbroker/metalbroker/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeForbidden       = "forbidden"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service-layer error to its HTTP response.
// Unrecognized errors are logged and hidden behind a 500.
func respondServiceError(c *gin.Context, log *logrus.Logger, err error, action string) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		respondError(c, http.StatusForbidden, ErrCodeForbidden, "operation not permitted")
	case errors.Is(err, models.ErrOfferNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "offer not found")
	case errors.Is(err, models.ErrLeaseNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "lease not found")
	case errors.Is(err, models.ErrOwnerChangeNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "owner change not found")
	case errors.Is(err, models.ErrResourceNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "resource not found")
	case errors.Is(err, models.ErrWindowConflict):
		respondError(c, http.StatusConflict, ErrCodeConflict, "requested window conflicts with an existing lease")
	case errors.Is(err, models.ErrInvalidTransition):
		respondError(c, http.StatusConflict, ErrCodeConflict, "entity status does not allow this operation")
	case errors.Is(err, models.ErrDuplicateKey):
		respondError(c, http.StatusConflict, ErrCodeConflict, "entity already exists")
	case errors.Is(err, models.ErrWindowOutsideOffer):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "requested window falls outside the offer window")
	case errors.Is(err, models.ErrInvalidWindow):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "start time must precede end time")
	default:
		log.WithError(err).WithField("action", action).Error("request failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
