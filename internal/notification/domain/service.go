package domain

import (
	"context"
	"errors"
	"time"
)

// Dispatcher fans a settled booking out to every notification channel.
// Channel failures are isolated: one channel failing never blocks the
// others, and never unwinds the settlement that triggered it.
type Dispatcher interface {
	DispatchBookingPaid(ctx context.Context, bookingID string) ([]Result, error)
	RetryFailed(ctx context.Context, bookingID string) ([]Result, error)
	List(ctx context.Context, bookingID string) ([]RecordResponse, error)
}

// Result reports one channel's delivery outcome for a dispatch call.
type Result struct {
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type RecordResponse struct {
	ID        string     `json:"id"`
	BookingID string     `json:"booking_id"`
	Channel   string     `json:"channel"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"last_error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrBookingNotFound = errors.New("booking_not_found")
	ErrBookingNotPaid  = errors.New("booking_not_paid")
)
