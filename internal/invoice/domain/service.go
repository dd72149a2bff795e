package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

type Service interface {
	Snapshot(ctx context.Context, bookingID string) (*Snapshot, error)
	RenderHTML(ctx context.Context, bookingID string) ([]byte, error)
	RenderPDF(ctx context.Context, bookingID string) (io.Reader, error)
}

// Snapshot is the fully resolved view an invoice is rendered from.
// Every field comes from data frozen at settlement time, so two
// snapshots of the same booking are always equal.
type Snapshot struct {
	Number           string    `json:"number"`
	BookingReference string    `json:"booking_reference"`
	IssuedAt         time.Time `json:"issued_at"`

	SupplierName  string `json:"supplier_name"`
	SupplierEmail string `json:"supplier_email"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`

	TourTitle  string `json:"tour_title"`
	OptionName string `json:"option_name"`
	TravelDate string `json:"travel_date"`

	Currency    string `json:"currency"`
	PartySize   int    `json:"party_size"`
	UnitAmount  int64  `json:"unit_amount"`
	TotalAmount int64  `json:"total_amount"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrBookingNotFound   = errors.New("booking_not_found")
	ErrBookingNotSettled = errors.New("booking_not_settled")
)
