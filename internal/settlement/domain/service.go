package domain

import (
	"context"
	"errors"

	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
)

// Gateway callback statuses.
const (
	CallbackCompleted = "completed"
	CallbackFailed    = "failed"
)

// Verifier authenticates gateway payment callbacks and settles the
// booking they belong to.
type Verifier interface {
	VerifyAndSettle(ctx context.Context, req CallbackRequest) (*Result, error)
}

// CallbackRequest is the payload the payment gateway posts after the
// customer completes (or abandons) checkout. BookingID is the id the
// gateway echoes back from checkout creation; when present it must
// match the booking the order id resolves to.
type CallbackRequest struct {
	BookingID        string `json:"booking_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Status           string `json:"status"`
	Signature        string `json:"signature"`
}

// Result describes the settlement outcome. AlreadySettled marks an
// idempotent replay: the booking was paid by an earlier callback with
// the same payment id, and nothing was changed or re-sent.
type Result struct {
	BookingID      string                        `json:"booking_id"`
	Reference      string                        `json:"reference"`
	Status         string                        `json:"status"`
	PaymentStatus  string                        `json:"payment_status"`
	AlreadySettled bool                          `json:"already_settled"`
	Notifications  []notificationdomain.Result   `json:"notifications,omitempty"`
}

var (
	ErrInvalidCallback   = errors.New("invalid_callback")
	ErrSignatureInvalid  = errors.New("signature_invalid")
	ErrBookingNotFound   = errors.New("booking_not_found")
	ErrPaymentConflict   = errors.New("payment_conflict")
	ErrBookingNotPayable = errors.New("booking_not_payable")
)
