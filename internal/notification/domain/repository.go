package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *NotificationRecord) error
	Update(ctx context.Context, db *gorm.DB, record *NotificationRecord) error
	FindByBookingAndChannel(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, channel string) (*NotificationRecord, error)
	ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]NotificationRecord, error)
	ListFailedBookingIDs(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]snowflake.ID, error)
}
