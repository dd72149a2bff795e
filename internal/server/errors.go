package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	invoicedomain "github.com/gowander/waypost/internal/invoice/domain"
	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
	"github.com/gowander/waypost/internal/pricing"
	settlementdomain "github.com/gowander/waypost/internal/settlement/domain"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrInternal           = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Code:    err.Error(),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, settlementdomain.ErrSignatureInvalid):
		return http.StatusBadRequest, errorPayload{
			Type:    "signature_invalid",
			Message: "callback signature verification failed",
			Code:    errorCode(err),
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, settlementdomain.ErrPaymentConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
			Code:    errorCode(err),
		}
	case isStateError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_state",
			Message: "operation not allowed in current state",
			Code:    err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pricing.ErrInvalidPartySize),
		errors.Is(err, pricing.ErrTierRange),
		errors.Is(err, pricing.ErrTierOverlap),
		errors.Is(err, tourdomain.ErrInvalidSupplier),
		errors.Is(err, tourdomain.ErrInvalidTitle),
		errors.Is(err, tourdomain.ErrInvalidName),
		errors.Is(err, tourdomain.ErrInvalidEmail),
		errors.Is(err, tourdomain.ErrInvalidBasePrice),
		errors.Is(err, tourdomain.ErrInvalidID),
		errors.Is(err, tourdomain.ErrSlugTaken),
		errors.Is(err, bookingdomain.ErrInvalidID),
		errors.Is(err, bookingdomain.ErrInvalidOption),
		errors.Is(err, bookingdomain.ErrInvalidName),
		errors.Is(err, bookingdomain.ErrInvalidEmail),
		errors.Is(err, bookingdomain.ErrInvalidTravelDate),
		errors.Is(err, bookingdomain.ErrPartyTooLarge),
		errors.Is(err, settlementdomain.ErrInvalidCallback),
		errors.Is(err, notificationdomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isStateError(err error) bool {
	switch {
	case errors.Is(err, bookingdomain.ErrNotCancellable),
		errors.Is(err, bookingdomain.ErrNotRefundable),
		errors.Is(err, bookingdomain.ErrTourInactive),
		errors.Is(err, settlementdomain.ErrBookingNotPayable),
		errors.Is(err, notificationdomain.ErrBookingNotPaid),
		errors.Is(err, invoicedomain.ErrBookingNotSettled):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tourdomain.ErrTourNotFound),
		errors.Is(err, tourdomain.ErrOptionNotFound),
		errors.Is(err, tourdomain.ErrSupplierNotFound),
		errors.Is(err, bookingdomain.ErrBookingNotFound),
		errors.Is(err, bookingdomain.ErrOptionNotFound),
		errors.Is(err, settlementdomain.ErrBookingNotFound),
		errors.Is(err, notificationdomain.ErrBookingNotFound),
		errors.Is(err, invoicedomain.ErrBookingNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}

// classifyErrorForLog maps an error to (type, code) for the request log.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusTooManyRequests:
		return "rate_limited", payload.Type
	case status >= http.StatusBadRequest:
		return "client", payload.Type
	default:
		return "", ""
	}
}
