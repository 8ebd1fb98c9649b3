package server

import (
	"errors"
	"net/http"
	"testing"

	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
	"github.com/sitekhata/sitekhata/internal/authorization"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", wageratedomain.ErrInvalidRate, http.StatusBadRequest, "validation_error"},
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "validation_error"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"invalid actor", authorization.ErrInvalidActor, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"already marked", attendancedomain.ErrAlreadyMarked, http.StatusConflict, "conflict"},
		{"duplicate effective date", wageratedomain.ErrDuplicateEffectiveDate, http.StatusConflict, "conflict"},
		{"rate in use", wageratedomain.ErrRateInUse, http.StatusConflict, "conflict"},
		{"invoice not found", invoicedomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"payment not found", invoicedomain.ErrPaymentNotFound, http.StatusNotFound, "not_found"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"no rate configured", wageratedomain.ErrNoRateConfigured, http.StatusUnprocessableEntity, "no_rate_configured"},
		{"too many requests", ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestMapErrorCarriesValidationDetails(t *testing.T) {
	err := newValidationError("daily_rate", "invalid_rate", "invalid rate")
	status, payload := mapError(err)
	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	require.Equal(t, "daily_rate", payload.Errors[0].Field)
	require.Equal(t, "invalid_rate", payload.Errors[0].Code)
}
