package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	FindByGatewayOrderID(ctx context.Context, db *gorm.DB, gatewayOrderID string) (*Booking, error)

	// SettleIfPending flips payment_status from pending to paid and
	// confirms the booking in a single conditional update. It reports
	// whether this call performed the transition.
	SettleIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, gatewayPaymentID string, paidAt time.Time) (bool, error)

	// MarkFailedIfPending records a failed payment attempt without
	// touching bookings that already settled.
	MarkFailedIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error)

	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status, paymentStatus string, now time.Time) error
}
