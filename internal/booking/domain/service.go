package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Cancel(ctx context.Context, id string) (*Response, error)
	MarkRefunded(ctx context.Context, id string) (*Response, error)
}

// CreateRequest books an option directly by id, or by tour id alone,
// in which case the tour's default option is used.
type CreateRequest struct {
	TourID          string `json:"tour_id"`
	OptionID        string `json:"option_id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	SpecialRequests string `json:"special_requests"`
	TravelDate      string `json:"travel_date"`
	PartySize       int    `json:"party_size"`
}

type Response struct {
	ID               string     `json:"id"`
	Reference        string     `json:"reference"`
	TourID           string     `json:"tour_id"`
	OptionID         string     `json:"option_id"`
	CustomerName     string     `json:"customer_name"`
	CustomerEmail    string     `json:"customer_email"`
	CustomerPhone    string     `json:"customer_phone,omitempty"`
	SpecialRequests  string     `json:"special_requests,omitempty"`
	TravelDate       string     `json:"travel_date"`
	PartySize        int        `json:"party_size"`
	Currency         string     `json:"currency"`
	UnitAmount       int64      `json:"unit_amount"`
	TotalAmount      int64      `json:"total_amount"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	GatewayOrderID   string     `json:"gateway_order_id"`
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidOption      = errors.New("invalid_option")
	ErrInvalidName        = errors.New("invalid_customer_name")
	ErrInvalidEmail       = errors.New("invalid_customer_email")
	ErrInvalidTravelDate  = errors.New("invalid_travel_date")
	ErrPartyTooLarge      = errors.New("party_too_large")
	ErrBookingNotFound    = errors.New("booking_not_found")
	ErrOptionNotFound     = errors.New("option_not_found")
	ErrNotCancellable     = errors.New("booking_not_cancellable")
	ErrNotRefundable      = errors.New("booking_not_refundable")
	ErrTourInactive       = errors.New("tour_inactive")
)
