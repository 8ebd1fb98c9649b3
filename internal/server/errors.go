package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
	"github.com/sitekhata/sitekhata/internal/authorization"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	khatabookdomain "github.com/sitekhata/sitekhata/internal/khatabook/domain"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal_error")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
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
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, wageratedomain.ErrNoRateConfigured):
		// no configured rate covers the requested date; the caller must
		// configure one, a default of zero is never assumed
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_rate_configured",
			Message: "no wage rate configured for the requested date",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidDateRange),
		errors.Is(err, projectdomain.ErrInvalidID),
		errors.Is(err, wageratedomain.ErrInvalidRate),
		errors.Is(err, wageratedomain.ErrFutureEffectiveDate),
		errors.Is(err, wageratedomain.ErrInvalidID),
		errors.Is(err, attendancedomain.ErrInvalidLabourCount),
		errors.Is(err, attendancedomain.ErrInvalidDateRange),
		errors.Is(err, attendancedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidClientName),
		errors.Is(err, invoicedomain.ErrInvalidInvoiceItem),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrInvalidDueDate),
		errors.Is(err, invoicedomain.ErrInvalidPaymentAmount),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, persondomain.ErrInvalidName),
		errors.Is(err, persondomain.ErrInvalidPhone),
		errors.Is(err, persondomain.ErrInvalidID),
		errors.Is(err, khatabookdomain.ErrInvalidAmount),
		errors.Is(err, khatabookdomain.ErrInvalidEntryType),
		errors.Is(err, khatabookdomain.ErrInvalidPaymentMode),
		errors.Is(err, khatabookdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, projectdomain.ErrDuplicateCode),
		errors.Is(err, wageratedomain.ErrDuplicateEffectiveDate),
		errors.Is(err, wageratedomain.ErrRateInUse),
		errors.Is(err, attendancedomain.ErrAlreadyMarked),
		errors.Is(err, attendancedomain.ErrCalculationExists):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, wageratedomain.ErrNotFound),
		errors.Is(err, attendancedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrPaymentNotFound),
		errors.Is(err, persondomain.ErrNotFound),
		errors.Is(err, khatabookdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
