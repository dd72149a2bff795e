package server

import (
	"net/http"
	"testing"

	bookingdomain "github.com/gowander/waypost/internal/booking/domain"
	"github.com/gowander/waypost/internal/pricing"
	settlementdomain "github.com/gowander/waypost/internal/settlement/domain"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"invalid party size", pricing.ErrInvalidPartySize, http.StatusBadRequest, "validation_error"},
		{"tier overlap", pricing.ErrTierOverlap, http.StatusBadRequest, "validation_error"},
		{"slug taken", tourdomain.ErrSlugTaken, http.StatusBadRequest, "validation_error"},
		{"invalid callback", settlementdomain.ErrInvalidCallback, http.StatusBadRequest, "validation_error"},
		{"bad signature", settlementdomain.ErrSignatureInvalid, http.StatusBadRequest, "signature_invalid"},
		{"payment conflict", settlementdomain.ErrPaymentConflict, http.StatusConflict, "conflict"},
		{"not payable", settlementdomain.ErrBookingNotPayable, http.StatusUnprocessableEntity, "invalid_state"},
		{"not cancellable", bookingdomain.ErrNotCancellable, http.StatusUnprocessableEntity, "invalid_state"},
		{"booking missing", bookingdomain.ErrBookingNotFound, http.StatusNotFound, "not_found"},
		{"tour missing", tourdomain.ErrTourNotFound, http.StatusNotFound, "not_found"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}
